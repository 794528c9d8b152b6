package handler

import (
	"fmt"
	"strings"

	"tuition/internal/eligibility"
	dErrors "tuition/pkg/domain-errors"
)

const maxNameLength = 128

// EvaluateRequest is the HTTP request body for POST /tuition/evaluate.
// Pointer fields distinguish "absent" from zero values.
type EvaluateRequest struct {
	Name                string `json:"name"`
	ParentIncome        *int64 `json:"parent_income"`
	ScholarshipReceived *bool  `json:"scholarship_received"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}

	if r.ParentIncome == nil {
		return dErrors.New(dErrors.CodeValidation, "parent_income is required")
	}
	if *r.ParentIncome < 0 {
		return dErrors.New(dErrors.CodeValidation, "parent_income must be non-negative")
	}
	if r.ScholarshipReceived == nil {
		return dErrors.New(dErrors.CodeValidation, "scholarship_received is required")
	}
	return nil
}

// ToDomain converts a validated request to the service input.
func (r *EvaluateRequest) ToDomain() eligibility.EvaluateRequest {
	return eligibility.EvaluateRequest{
		Name:                r.Name,
		ParentIncome:        *r.ParentIncome,
		ScholarshipReceived: *r.ScholarshipReceived,
	}
}

// BatchEvaluateRequest is the HTTP request body for POST /tuition/evaluate/batch.
type BatchEvaluateRequest struct {
	Registrations []EvaluateRequest `json:"registrations"`
}

// Validate validates every registration and reports the first bad index.
func (r *BatchEvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Registrations) == 0 {
		return dErrors.New(dErrors.CodeValidation, "registrations must not be empty")
	}
	if len(r.Registrations) > eligibility.MaxBatchSize {
		return dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("registrations must contain at most %d entries", eligibility.MaxBatchSize))
	}
	for i := range r.Registrations {
		if err := r.Registrations[i].Validate(); err != nil {
			msg := err.Error()
			if de, ok := dErrors.As(err); ok {
				msg = de.Message
			}
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("registrations[%d]: %s", i, msg))
		}
	}
	return nil
}

// ToDomain converts a validated batch to service inputs.
func (r *BatchEvaluateRequest) ToDomain() []eligibility.EvaluateRequest {
	out := make([]eligibility.EvaluateRequest, len(r.Registrations))
	for i := range r.Registrations {
		out[i] = r.Registrations[i].ToDomain()
	}
	return out
}
