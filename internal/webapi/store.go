package webapi

//go:generate mockgen -source store.go -destination store_mocks_test.go -package webapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aigents/quality-wheel/internal/models"
)

// ErrResultNotFound is returned when an ID does not match any stored result.
var ErrResultNotFound = errors.New("result not found")

// ResultStore persists and serves evaluation results.
type ResultStore interface {
	// List returns all results, sorted by the given field and order.
	List(sortField, order string) ([]ResultSummary, error)
	// Get returns a single stored result.
	Get(id string) (*models.ValidationResult, error)
	// Save records a result, replacing any earlier result with the same ID.
	Save(result *models.ValidationResult) error
	// Summary returns aggregate metrics across all results.
	Summary() (*SummaryResponse, error)
}

// FileStore keeps ValidationResult JSON files in a directory, one per
// practice. An empty dir keeps results in memory only.
type FileStore struct {
	dir string
	now func() time.Time

	mu      sync.RWMutex
	results map[string]*models.ValidationResult
	loaded  bool
}

// NewFileStore creates a FileStore that reads and writes results in dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:     dir,
		now:     time.Now,
		results: make(map[string]*models.ValidationResult),
	}
}

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ResultID returns the storage ID for r. File-name safe practice IDs are
// used as is. Other IDs are sanitized and get a short hash of the original
// appended, so distinct practice IDs never share a file. A result without a
// practice ID gets a time-based ID.
func ResultID(r *models.ValidationResult, now time.Time) string {
	if r.PracticeID == "" {
		return fmt.Sprintf("result-%d", now.UnixNano())
	}
	id := strings.Trim(unsafeIDChars.ReplaceAllString(r.PracticeID, "_"), "._")
	if id == r.PracticeID {
		return id
	}
	if id == "" {
		id = "result"
	}
	sum := sha256.Sum256([]byte(r.PracticeID))
	return id + "-" + hex.EncodeToString(sum[:4])
}

// load reads all result JSON files from the configured directory.
func (fs *FileStore) load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.results = make(map[string]*models.ValidationResult)

	if fs.dir == "" {
		fs.loaded = true
		return nil
	}

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			fs.loaded = true
			return nil
		}
		return err
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(fs.dir, e.Name()))
		if err != nil {
			continue
		}
		var result models.ValidationResult
		if err := json.Unmarshal(data, &result); err != nil {
			continue
		}
		fs.results[strings.TrimSuffix(e.Name(), ".json")] = &result
	}

	fs.loaded = true
	return nil
}

// ensureLoaded loads data if not already loaded.
func (fs *FileStore) ensureLoaded() error {
	fs.mu.RLock()
	if fs.loaded {
		fs.mu.RUnlock()
		return nil
	}
	fs.mu.RUnlock()
	return fs.load()
}

// Reload forces a fresh reload of all result files from disk.
func (fs *FileStore) Reload() error {
	return fs.load()
}

// Save writes result to <dir>/<id>.json and indexes it.
func (fs *FileStore) Save(result *models.ValidationResult) error {
	if result == nil {
		return errors.New("nil result")
	}
	if err := fs.ensureLoaded(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	id := ResultID(result, fs.now())
	if fs.dir != "" {
		if err := os.MkdirAll(fs.dir, 0755); err != nil {
			return fmt.Errorf("creating results directory: %w", err)
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		if err := os.WriteFile(filepath.Join(fs.dir, id+".json"), data, 0644); err != nil {
			return fmt.Errorf("writing result %s: %w", id, err)
		}
	}
	fs.results[id] = result
	return nil
}

func resultToSummary(id string, r *models.ValidationResult) ResultSummary {
	return ResultSummary{
		ID:            id,
		Title:         r.Title,
		FinalScore:    r.FinalScore,
		Decision:      r.Decision,
		MissingCount:  len(r.MissingRequired),
		InvalidCount:  r.InvalidCount(),
		RubricVersion: r.RubricVersion,
		EvaluatedAt:   r.EvaluatedAt,
	}
}

// List returns all results sorted by the given field and order.
func (fs *FileStore) List(sortField, order string) ([]ResultSummary, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]ResultSummary, 0, len(fs.results))
	for id, r := range fs.results {
		out = append(out, resultToSummary(id, r))
	}

	sortResults(out, sortField, order)
	return out, nil
}

// Get returns a single stored result.
func (fs *FileStore) Get(id string) (*models.ValidationResult, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	r, ok := fs.results[id]
	if !ok {
		return nil, ErrResultNotFound
	}
	return r, nil
}

// Summary returns aggregate metrics across all results.
func (fs *FileStore) Summary() (*SummaryResponse, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	resp := &SummaryResponse{}
	if len(fs.results) == 0 {
		return resp, nil
	}

	total := 0.0
	for _, r := range fs.results {
		resp.TotalResults++
		total += r.FinalScore
		switch r.Decision {
		case models.DecisionApprove:
			resp.Approved++
		case models.DecisionReview:
			resp.Review++
		case models.DecisionReject:
			resp.Rejected++
		case models.DecisionNeedsImprovement:
			resp.NeedsImprovement++
		}
	}
	resp.ApprovalRate = models.Round2(float64(resp.Approved) / float64(resp.TotalResults) * 100.0)
	resp.MeanScore = models.Round2(total / float64(resp.TotalResults))
	return resp, nil
}

func sortResults(results []ResultSummary, field, order string) {
	less := func(i, j int) bool {
		a, b := results[i], results[j]
		switch field {
		case "score":
			if a.FinalScore != b.FinalScore {
				return a.FinalScore < b.FinalScore
			}
		case "id":
		default: // "evaluatedAt" or empty
			if !a.EvaluatedAt.Equal(b.EvaluatedAt) {
				return a.EvaluatedAt.Before(b.EvaluatedAt)
			}
		}
		return a.ID < b.ID
	}

	if order == "asc" {
		sort.Slice(results, less)
	} else {
		sort.Slice(results, func(i, j int) bool { return less(j, i) })
	}
}

// Ensure FileStore satisfies ResultStore.
var _ ResultStore = (*FileStore)(nil)
