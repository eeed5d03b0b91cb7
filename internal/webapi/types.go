package webapi

import (
	"time"

	"github.com/aigents/quality-wheel/internal/models"
)

// ResultSummary is the API response for a single stored result in the list.
type ResultSummary struct {
	ID            string          `json:"id"`
	Title         string          `json:"title,omitempty"`
	FinalScore    float64         `json:"finalScore"`
	Decision      models.Decision `json:"decision"`
	MissingCount  int             `json:"missingCount"`
	InvalidCount  int             `json:"invalidCount"`
	RubricVersion uint64          `json:"rubricVersion"`
	EvaluatedAt   time.Time       `json:"evaluatedAt"`
}

// SummaryResponse is the aggregate KPI response across stored results.
type SummaryResponse struct {
	TotalResults     int     `json:"totalResults"`
	Approved         int     `json:"approved"`
	Review           int     `json:"review"`
	Rejected         int     `json:"rejected"`
	NeedsImprovement int     `json:"needsImprovement"`
	ApprovalRate     float64 `json:"approvalRate"`
	MeanScore        float64 `json:"meanScore"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	RubricVersion uint64 `json:"rubricVersion"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
