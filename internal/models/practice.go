package models

// SubScoreInput is one raw sub-criterion score supplied by the extraction
// collaborator. A nil Score means the sub-criterion was not provided.
type SubScoreInput struct {
	Score   *float64       `json:"score,omitempty" yaml:"score,omitempty" mapstructure:"score"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty" mapstructure:"details"`
}

// PracticeInput holds the already-numeric sub-scores for one practice, keyed
// by criterion code and then by sub-criterion name.
type PracticeInput struct {
	ID     string                              `json:"id,omitempty" yaml:"id,omitempty"`
	Title  string                              `json:"title,omitempty" yaml:"title,omitempty"`
	Scores map[string]map[string]SubScoreInput `json:"scores" yaml:"scores"`
}

// NewPracticeInput returns an empty input ready for SetScore calls.
func NewPracticeInput(id string) *PracticeInput {
	return &PracticeInput{
		ID:     id,
		Scores: make(map[string]map[string]SubScoreInput),
	}
}

// SetScore records a score for criterion.subCriterion, replacing any previous value.
func (p *PracticeInput) SetScore(criterion, subCriterion string, score float64) *PracticeInput {
	return p.Set(criterion, subCriterion, SubScoreInput{Score: &score})
}

// Set records a full sub-score entry for criterion.subCriterion.
func (p *PracticeInput) Set(criterion, subCriterion string, in SubScoreInput) *PracticeInput {
	if p.Scores == nil {
		p.Scores = make(map[string]map[string]SubScoreInput)
	}
	subs, ok := p.Scores[criterion]
	if !ok {
		subs = make(map[string]SubScoreInput)
		p.Scores[criterion] = subs
	}
	subs[subCriterion] = in
	return p
}

// Lookup returns the entry for criterion.subCriterion and whether it carries a score.
func (p *PracticeInput) Lookup(criterion, subCriterion string) (SubScoreInput, bool) {
	if p == nil {
		return SubScoreInput{}, false
	}
	in, ok := p.Scores[criterion][subCriterion]
	if !ok || in.Score == nil {
		return in, false
	}
	return in, true
}
