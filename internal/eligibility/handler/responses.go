package handler

import (
	"time"

	"tuition/internal/eligibility"
)

// EvaluateResponse is the HTTP response for POST /tuition/evaluate.
type EvaluateResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Tier        string          `json:"tier"`
	Eligible    bool            `json:"eligible"`
	FailedRule  string          `json:"failed_rule,omitempty"`
	Checks      []CheckResponse `json:"checks"`
	EvaluatedAt time.Time       `json:"evaluated_at"`
}

// CheckResponse describes one invoked rule.
type CheckResponse struct {
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// BatchEvaluateResponse is the HTTP response for POST /tuition/evaluate/batch.
type BatchEvaluateResponse struct {
	Results []*EvaluateResponse `json:"results"`
}

// RulesResponse is the HTTP response for GET /tuition/rules.
type RulesResponse struct {
	Rules []string `json:"rules"`
}

// FromResult converts a domain EvaluateResult to an HTTP response.
func FromResult(result *eligibility.EvaluateResult) *EvaluateResponse {
	checks := make([]CheckResponse, len(result.Checks))
	for i, c := range result.Checks {
		checks[i] = CheckResponse{Rule: c.Rule, Passed: c.Passed, Detail: c.Detail}
	}
	return &EvaluateResponse{
		ID:          result.ID.String(),
		Name:        result.Name,
		Tier:        string(result.Tier),
		Eligible:    result.Passed,
		FailedRule:  result.FailedRule,
		Checks:      checks,
		EvaluatedAt: result.EvaluatedAt,
	}
}

// FromResults converts batch results, preserving order.
func FromResults(results []*eligibility.EvaluateResult) *BatchEvaluateResponse {
	out := make([]*EvaluateResponse, len(results))
	for i, r := range results {
		out[i] = FromResult(r)
	}
	return &BatchEvaluateResponse{Results: out}
}
