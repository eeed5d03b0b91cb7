package rubric

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDefault_WeightsSumToOne(t *testing.T) {
	cfg := Default()
	snap := cfg.Snapshot()

	require.Equal(t, []string{"Q", "R", "U", "A", "I", "Rel"}, snap.Codes())
	for _, c := range snap.Criteria {
		assert.InDelta(t, 1.0, c.WeightSum(), WeightTolerance, "criterion %s", c.Code)
		for _, s := range c.SubCriteria {
			assert.Equal(t, DefaultMinThreshold, s.MinThreshold, "%s.%s", c.Code, s.Name)
		}
	}
	assert.Equal(t, uint64(1), snap.Version)
}

func TestDefault_QualityTable(t *testing.T) {
	q, ok := Default().Snapshot().Criterion(CodeQuality)
	require.True(t, ok)

	want := []SubCriterionSpec{
		{Name: "fullness", Weight: 0.40, MinThreshold: 6, Required: true},
		{Name: "structure", Weight: 0.30, MinThreshold: 6, Required: true},
		{Name: "examples", Weight: 0.15, MinThreshold: 6, Required: false},
		{Name: "limitations", Weight: 0.15, MinThreshold: 6, Required: false},
	}
	assert.Equal(t, want, q.SubCriteria)
}

func TestAdjustThreshold_MinValueAndRequired(t *testing.T) {
	cfg := Default()

	err := cfg.AdjustThreshold("Q", "examples", ThresholdUpdate{MinValue: ptr(4.5), Required: ptr(true)})
	require.NoError(t, err)

	q, _ := cfg.Snapshot().Criterion("Q")
	s, ok := q.SubCriterion("examples")
	require.True(t, ok)
	assert.Equal(t, 4.5, s.MinThreshold)
	assert.True(t, s.Required)
	assert.Equal(t, 0.15, s.Weight, "omitted fields stay unchanged")
	assert.Equal(t, uint64(2), cfg.Version())
}

func TestAdjustThreshold_WeightBreakingSumIsRejected(t *testing.T) {
	cfg := Default()
	before := cfg.Snapshot()

	err := cfg.AdjustThreshold("Q", "fullness", ThresholdUpdate{Weight: ptr(0.5), MinValue: ptr(3.0)})
	require.Error(t, err)

	var cfgErr *models.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "Q", cfgErr.Criterion)
	assert.ErrorIs(t, err, models.ErrConfiguration)
	assert.Contains(t, err.Error(), "1.100000")

	after := cfg.Snapshot()
	assert.Same(t, before, after, "rejected mutation must not swap the snapshot")
	q, _ := after.Criterion("Q")
	s, _ := q.SubCriterion("fullness")
	assert.Equal(t, 0.40, s.Weight)
	assert.Equal(t, 6.0, s.MinThreshold, "no partial mutation")

	// Rejection is idempotent.
	require.Error(t, cfg.AdjustThreshold("Q", "fullness", ThresholdUpdate{Weight: ptr(0.5)}))
	assert.Same(t, before, cfg.Snapshot())
}

func TestAdjustThreshold_UnknownIdentifiers(t *testing.T) {
	cfg := Default()

	err := cfg.AdjustThreshold("X", "fullness", ThresholdUpdate{MinValue: ptr(5.0)})
	require.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Contains(t, err.Error(), "X")

	err = cfg.AdjustThreshold("Q", "nope", ThresholdUpdate{MinValue: ptr(5.0)})
	require.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Q.nope")
}

func TestAdjustThreshold_ThresholdOutOfRange(t *testing.T) {
	cfg := Default()

	err := cfg.AdjustThreshold("R", "resources", ThresholdUpdate{MinValue: ptr(11.0)})
	require.ErrorIs(t, err, models.ErrConfiguration)
	assert.Contains(t, err.Error(), "R.resources")
	assert.Contains(t, err.Error(), "11")
	assert.Equal(t, uint64(1), cfg.Version())
}

func TestAdjustThreshold_EmptyUpdateIsNoop(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.AdjustThreshold("Q", "fullness", ThresholdUpdate{}))
	assert.Equal(t, uint64(1), cfg.Version())
}

func TestSetWeights_Rebalance(t *testing.T) {
	cfg := Default()

	err := cfg.SetWeights("Q", map[string]float64{"fullness": 0.5, "structure": 0.2})
	require.NoError(t, err)

	q, _ := cfg.Snapshot().Criterion("Q")
	assert.InDelta(t, 1.0, q.WeightSum(), WeightTolerance)
	s, _ := q.SubCriterion("fullness")
	assert.Equal(t, 0.5, s.Weight)

	err = cfg.SetWeights("Q", map[string]float64{"fullness": 0.9})
	require.ErrorIs(t, err, models.ErrConfiguration)
	q, _ = cfg.Snapshot().Criterion("Q")
	s, _ = q.SubCriterion("fullness")
	assert.Equal(t, 0.5, s.Weight)
}

func TestPutCriterion_AddsAndReplaces(t *testing.T) {
	cfg := Default()

	ethics := CriterionSpec{
		Code: "E",
		Name: "Ethics",
		SubCriteria: []SubCriterionSpec{
			{Name: "privacy", Weight: 0.6, MinThreshold: 7, Required: true},
			{Name: "bias", Weight: 0.4, MinThreshold: 6},
		},
	}
	require.NoError(t, cfg.PutCriterion(ethics))
	assert.Equal(t, []string{"Q", "R", "U", "A", "I", "Rel", "E"}, cfg.Snapshot().Codes())

	ethics.SubCriteria[1].Weight = 0.5
	require.ErrorIs(t, cfg.PutCriterion(ethics), models.ErrConfiguration)

	ethics.SubCriteria[0].Weight = 0.5
	require.NoError(t, cfg.PutCriterion(ethics))
	e, _ := cfg.Snapshot().Criterion("E")
	assert.Equal(t, 0.5, e.SubCriteria[0].Weight)
	assert.Len(t, cfg.Snapshot().Criteria, 7)
}

func TestSetCriterionWeights(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.SetCriterionWeights(fullWeights(map[string]float64{"Q": 2})))
	assert.Equal(t, 2.0, cfg.Snapshot().CriterionWeights["Q"])
	assert.Equal(t, 1.0, cfg.Snapshot().CriterionWeights["Rel"])

	require.ErrorIs(t, cfg.SetCriterionWeights(fullWeights(map[string]float64{"Z": 1})), models.ErrConfiguration)
	require.ErrorIs(t, cfg.SetCriterionWeights(fullWeights(map[string]float64{"Q": -1})), models.ErrConfiguration)
	require.ErrorIs(t, cfg.SetCriterionWeights(map[string]float64{"Q": 0, "R": 0, "U": 0, "A": 0, "I": 0, "Rel": 0}), models.ErrConfiguration)

	require.NoError(t, cfg.SetCriterionWeights(nil))
	assert.Empty(t, cfg.Snapshot().CriterionWeights)
}

// fullWeights returns weight 1 for every default criterion, overridden by set.
func fullWeights(set map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for _, c := range DefaultCriteria() {
		out[c.Code] = 1
	}
	for k, v := range set {
		out[k] = v
	}
	return out
}

func TestSetCriterionWeights_MustCoverEveryCriterion(t *testing.T) {
	cfg := Default()

	err := cfg.SetCriterionWeights(map[string]float64{"Q": 1})
	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "R", cfgErr.Criterion)
	assert.Empty(t, cfg.Snapshot().CriterionWeights)
	assert.Equal(t, uint64(1), cfg.Version())

	_, err = New(DefaultCriteria(), map[string]float64{"Q": 2, "R": 1})
	require.ErrorIs(t, err, models.ErrConfiguration)
}

func TestPutCriterion_RequiresWeightWhenCriterionWeightsSet(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetCriterionWeights(fullWeights(nil)))
	version := cfg.Version()

	safety := CriterionSpec{Code: "S", Name: "Safety", SubCriteria: []SubCriterionSpec{
		{Name: "guardrails", Weight: 1, MinThreshold: DefaultMinThreshold},
	}}
	require.ErrorIs(t, cfg.PutCriterion(safety), models.ErrConfiguration)
	assert.Equal(t, version, cfg.Version())
	_, ok := cfg.Snapshot().Criterion("S")
	assert.False(t, ok)

	require.NoError(t, cfg.SetCriterionWeights(nil))
	require.NoError(t, cfg.PutCriterion(safety))
	_, ok = cfg.Snapshot().Criterion("S")
	assert.True(t, ok)
}

func TestNew_RejectsInvalidRubrics(t *testing.T) {
	tests := []struct {
		name     string
		criteria []CriterionSpec
		contains string
	}{
		{
			name:     "no criteria",
			criteria: nil,
			contains: "no criteria",
		},
		{
			name: "weights short of one",
			criteria: []CriterionSpec{{Code: "Q", SubCriteria: []SubCriterionSpec{
				{Name: "a", Weight: 0.5, MinThreshold: 6},
			}}},
			contains: "sum to 1.0",
		},
		{
			name: "duplicate sub-criterion",
			criteria: []CriterionSpec{{Code: "Q", SubCriteria: []SubCriterionSpec{
				{Name: "a", Weight: 0.5, MinThreshold: 6},
				{Name: "a", Weight: 0.5, MinThreshold: 6},
			}}},
			contains: "duplicate sub-criterion",
		},
		{
			name: "duplicate criterion",
			criteria: []CriterionSpec{
				{Code: "Q", SubCriteria: []SubCriterionSpec{{Name: "a", Weight: 1, MinThreshold: 6}}},
				{Code: "Q", SubCriteria: []SubCriterionSpec{{Name: "b", Weight: 1, MinThreshold: 6}}},
			},
			contains: "duplicate criterion",
		},
		{
			name: "NaN weight",
			criteria: []CriterionSpec{{Code: "Q", SubCriteria: []SubCriterionSpec{
				{Name: "a", Weight: math.NaN(), MinThreshold: 6},
			}}},
			contains: "weight must be within",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.criteria, nil)
			require.ErrorIs(t, err, models.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	snap := Default().Snapshot()
	c := snap.Clone()
	c.Criteria[0].SubCriteria[0].Weight = 0.99

	assert.Equal(t, 0.40, snap.Criteria[0].SubCriteria[0].Weight)
}

func TestConfig_ConcurrentReadsAndWrites(t *testing.T) {
	cfg := Default()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = cfg.AdjustThreshold("Q", "examples", ThresholdUpdate{MinValue: ptr(float64(i % 10))})
		}(i)
		go func() {
			defer wg.Done()
			for _, c := range cfg.Snapshot().Criteria {
				assert.InDelta(t, 1.0, c.WeightSum(), WeightTolerance)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(9), cfg.Version())
}
