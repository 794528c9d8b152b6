package eligibility

import (
	"context"
	"log/slog"
)

// Evaluate applies rules to record in order and stops at the first failure.
// An empty rule list passes.
func Evaluate(rules []Rule, record RegistrationRecord) bool {
	for _, rule := range rules {
		if !rule.Check(record) {
			return false
		}
	}
	return true
}

// CheckResult is the outcome of one invoked rule.
type CheckResult struct {
	Rule   string
	Passed bool
	Detail string
}

// Explanation is the trace of a single evaluation. Checks holds only the rules
// that were invoked; nothing after the first failure appears.
type Explanation struct {
	Passed     bool
	FailedRule string
	Checks     []CheckResult
}

// Tier maps the explanation's verdict to a tuition tier.
func (e Explanation) Tier() Tier {
	return TierFor(e.Passed)
}

// Evaluator holds a caller-ordered rule list. It never reorders or
// deduplicates, and is safe for concurrent use as long as its rules are.
type Evaluator struct {
	rules  []Rule
	logger *slog.Logger
}

type EvaluatorOption func(*Evaluator)

// WithDiagnostics logs every check at debug level.
func WithDiagnostics(logger *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// NewEvaluator copies rules so later changes to the caller's slice do not
// affect evaluation.
func NewEvaluator(rules []Rule, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{rules: append([]Rule(nil), rules...)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns a copy of the configured rules in evaluation order.
func (e *Evaluator) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// RuleNames returns the configured rule names in evaluation order.
func (e *Evaluator) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, rule := range e.rules {
		names[i] = RuleName(rule)
	}
	return names
}

// Evaluate returns the verdict for record.
func (e *Evaluator) Evaluate(record RegistrationRecord) bool {
	if e.logger == nil {
		return Evaluate(e.rules, record)
	}
	return e.Explain(record).Passed
}

// Explain runs the same short-circuit walk as Evaluate and records each
// invoked rule.
func (e *Evaluator) Explain(record RegistrationRecord) Explanation {
	out := Explanation{
		Passed: true,
		Checks: make([]CheckResult, 0, len(e.rules)),
	}
	for _, rule := range e.rules {
		passed := rule.Check(record)
		res := CheckResult{Rule: RuleName(rule), Passed: passed}
		if ex, ok := rule.(Explainer); ok {
			res.Detail = ex.Explain(record)
		}
		out.Checks = append(out.Checks, res)
		e.logCheck(record, res)

		if !passed {
			out.Passed = false
			out.FailedRule = res.Rule
			break
		}
	}
	return out
}

func (e *Evaluator) logCheck(record RegistrationRecord, res CheckResult) {
	if e.logger == nil {
		return
	}
	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "rule checked",
		slog.String("name", record.Name()),
		slog.String("rule", res.Rule),
		slog.Bool("passed", res.Passed),
		slog.String("detail", res.Detail),
	)
}
