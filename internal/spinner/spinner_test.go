package spinner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_DrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := start(&out, "evaluating 1/3", time.Millisecond)

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "evaluating 1/3")
	}, time.Second, time.Millisecond)

	s.Set("evaluating 2/3")
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "evaluating 2/3")
	}, time.Second, time.Millisecond)

	s.Stop()
	s.Stop()
	assert.True(t, strings.HasSuffix(out.String(), "\r"))
}

func TestEnabled_NonTerminal(t *testing.T) {
	assert.False(t, Enabled(&bytes.Buffer{}))
}
