package rubric

// Criterion codes of the six built-in axes.
const (
	CodeQuality         = "Q"
	CodeReproducibility = "R"
	CodeUtility         = "U"
	CodeApplicability   = "A"
	CodeInnovation      = "I"
	CodeReliability     = "Rel"
)

func sub(name string, weight float64, required bool) SubCriterionSpec {
	return SubCriterionSpec{Name: name, Weight: weight, MinThreshold: DefaultMinThreshold, Required: required}
}

// DefaultCriteria returns a fresh copy of the built-in rubric.
func DefaultCriteria() []CriterionSpec {
	return []CriterionSpec{
		{
			Code: CodeQuality,
			Name: "Quality",
			SubCriteria: []SubCriterionSpec{
				sub("fullness", 0.40, true),
				sub("structure", 0.30, true),
				sub("examples", 0.15, false),
				sub("limitations", 0.15, false),
			},
		},
		{
			Code: CodeReproducibility,
			Name: "Reproducibility",
			SubCriteria: []SubCriterionSpec{
				sub("steps_clarity", 0.40, true),
				sub("requirements", 0.30, true),
				sub("resources", 0.30, true),
			},
		},
		{
			Code: CodeUtility,
			Name: "Utility",
			SubCriteria: []SubCriterionSpec{
				sub("problem_clarity", 0.35, true),
				sub("benefits", 0.35, true),
				sub("efficiency", 0.30, false),
			},
		},
		{
			Code: CodeApplicability,
			Name: "Applicability",
			SubCriteria: []SubCriterionSpec{
				sub("universality", 0.35, true),
				sub("scalability", 0.35, true),
				sub("constraints", 0.30, false),
			},
		},
		{
			Code: CodeInnovation,
			Name: "Innovation",
			SubCriteria: []SubCriterionSpec{
				sub("novelty", 0.40, false),
				sub("tech_complexity", 0.30, false),
				sub("potential", 0.30, true),
			},
		},
		{
			Code: CodeReliability,
			Name: "Reliability",
			SubCriteria: []SubCriterionSpec{
				sub("empirical_validation", 0.35, true),
				sub("methodology", 0.25, true),
				sub("adaptability", 0.20, false),
				sub("external_validation", 0.20, false),
			},
		},
	}
}
