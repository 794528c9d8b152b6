package eligibility

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"tuition/internal/eligibility/metrics"
	dErrors "tuition/pkg/domain-errors"
	"tuition/pkg/requestcontext"
)

const (
	// MaxBatchSize bounds a single batch request.
	MaxBatchSize = 1000

	defaultBatchConcurrency = 8
	tracerName              = "tuition/internal/eligibility"
)

// EvaluateRequest is the service-level input for one registration.
type EvaluateRequest struct {
	Name                string
	ParentIncome        int64
	ScholarshipReceived bool
}

// EvaluateResult is the outcome of evaluating one registration.
type EvaluateResult struct {
	ID          uuid.UUID
	Name        string
	Tier        Tier
	Passed      bool
	FailedRule  string
	Checks      []CheckResult
	EvaluatedAt time.Time
}

// Service runs registrations through an Evaluator and reports the outcome.
type Service struct {
	evaluator        *Evaluator
	logger           *slog.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer
	batchConcurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithBatchConcurrency bounds how many batch entries are evaluated at once.
// Values below 1 are ignored.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

func NewService(evaluator *Evaluator, opts ...Option) (*Service, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}

	svc := &Service{
		evaluator:        evaluator,
		logger:           slog.Default(),
		tracer:           otel.Tracer(tracerName),
		batchConcurrency: defaultBatchConcurrency,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// RuleNames returns the names of the configured rules in evaluation order.
func (s *Service) RuleNames() []string {
	return s.evaluator.RuleNames()
}

// Evaluate validates the request, runs the rules, and returns the tier.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResult, error) {
	ctx, span := s.tracer.Start(ctx, "eligibility.Evaluate")
	defer span.End()

	record, err := req.record()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := s.evaluate(ctx, record)
	span.SetAttributes(
		attribute.String("tuition.tier", result.Tier.String()),
		attribute.String("tuition.failed_rule", result.FailedRule),
	)

	s.logger.InfoContext(ctx, "tuition tier evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"evaluation_id", result.ID,
		"name", result.Name,
		"tier", result.Tier,
		"failed_rule", result.FailedRule,
	)
	return result, nil
}

// EvaluateBatch evaluates registrations concurrently and returns results in
// input order. Every entry is validated before any is evaluated; one invalid
// entry fails the whole batch.
func (s *Service) EvaluateBatch(ctx context.Context, reqs []EvaluateRequest) ([]*EvaluateResult, error) {
	ctx, span := s.tracer.Start(ctx, "eligibility.EvaluateBatch",
		trace.WithAttributes(attribute.Int("tuition.batch_size", len(reqs))))
	defer span.End()

	if len(reqs) > MaxBatchSize {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("batch exceeds maximum of %d registrations", MaxBatchSize))
	}

	records := make([]RegistrationRecord, len(reqs))
	for i, req := range reqs {
		record, err := req.record()
		if err != nil {
			span.RecordError(err)
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("registrations[%d] is invalid", i))
		}
		records[i] = record
	}
	s.metrics.ObserveBatchSize(len(records))

	results := make([]*EvaluateResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, record := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return dErrors.Wrap(err, dErrors.CodeTimeout, "batch evaluation aborted")
			}
			results[i] = s.evaluate(gctx, record)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	low := 0
	for _, r := range results {
		if r.Passed {
			low++
		}
	}
	s.logger.InfoContext(ctx, "tuition batch evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"count", len(results),
		"low_tier", low,
		"high_tier", len(results)-low,
	)
	return results, nil
}

func (s *Service) evaluate(ctx context.Context, record RegistrationRecord) *EvaluateResult {
	start := time.Now()
	explanation := s.evaluator.Explain(record)
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	tier := explanation.Tier()
	s.metrics.IncrementOutcome(tier.String())
	if !explanation.Passed {
		s.metrics.IncrementRuleFailure(explanation.FailedRule)
	}

	return &EvaluateResult{
		ID:          uuid.New(),
		Name:        record.Name(),
		Tier:        tier,
		Passed:      explanation.Passed,
		FailedRule:  explanation.FailedRule,
		Checks:      explanation.Checks,
		EvaluatedAt: requestcontext.Now(ctx),
	}
}

func (r EvaluateRequest) record() (RegistrationRecord, error) {
	record, err := NewRegistrationRecord(r.Name, r.ParentIncome, r.ScholarshipReceived)
	if err != nil {
		return RegistrationRecord{}, dErrors.Wrap(err, dErrors.CodeValidation, "parent_income must be non-negative")
	}
	return record, nil
}
