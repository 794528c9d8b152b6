package eligibility

import (
	"fmt"
	"reflect"
)

const (
	DefaultMinIncome int64 = 1_000_000
	DefaultMaxIncome int64 = 5_000_000
)

// Rule is a single eligibility criterion. Check must be a pure predicate over
// the record: implementations keep no per-call state, so one instance can be
// shared by concurrent evaluations.
type Rule interface {
	Check(record RegistrationRecord) bool
}

// Named is implemented by rules that report a stable identifier for
// explanations, logs and metrics.
type Named interface {
	Name() string
}

// Explainer is implemented by rules that can describe their verdict for a
// record. The text is informational only.
type Explainer interface {
	Explain(record RegistrationRecord) string
}

// RuleName returns the rule's Name when it has one, otherwise its type name.
func RuleName(rule Rule) string {
	if n, ok := rule.(Named); ok {
		return n.Name()
	}
	t := reflect.TypeOf(rule)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// MinIncomeRule passes when parent income is at least MinIncome (inclusive).
type MinIncomeRule struct {
	MinIncome int64
}

func NewMinIncomeRule(minIncome int64) MinIncomeRule {
	return MinIncomeRule{MinIncome: minIncome}
}

func (r MinIncomeRule) Check(record RegistrationRecord) bool {
	return record.ParentIncome() >= r.MinIncome
}

func (r MinIncomeRule) Name() string { return "min_income" }

func (r MinIncomeRule) Explain(record RegistrationRecord) string {
	if r.Check(record) {
		return fmt.Sprintf("parent income %d meets the minimum of %d", record.ParentIncome(), r.MinIncome)
	}
	return fmt.Sprintf("parent income %d is below the minimum of %d", record.ParentIncome(), r.MinIncome)
}

// MaxIncomeRule passes when parent income is at most MaxIncome (inclusive).
type MaxIncomeRule struct {
	MaxIncome int64
}

func NewMaxIncomeRule(maxIncome int64) MaxIncomeRule {
	return MaxIncomeRule{MaxIncome: maxIncome}
}

func (r MaxIncomeRule) Check(record RegistrationRecord) bool {
	return record.ParentIncome() <= r.MaxIncome
}

func (r MaxIncomeRule) Name() string { return "max_income" }

func (r MaxIncomeRule) Explain(record RegistrationRecord) string {
	if r.Check(record) {
		return fmt.Sprintf("parent income %d is within the limit of %d", record.ParentIncome(), r.MaxIncome)
	}
	return fmt.Sprintf("parent income %d exceeds the limit of %d", record.ParentIncome(), r.MaxIncome)
}

// ScholarshipRule passes when the student has received a scholarship.
type ScholarshipRule struct{}

func (ScholarshipRule) Check(record RegistrationRecord) bool {
	return record.ScholarshipReceived()
}

func (ScholarshipRule) Name() string { return "scholarship" }

func (r ScholarshipRule) Explain(record RegistrationRecord) string {
	if r.Check(record) {
		return "student received a scholarship"
	}
	return "student did not receive a scholarship"
}

// RuleFunc adapts a named predicate into a Rule.
type RuleFunc struct {
	RuleName string
	Fn       func(RegistrationRecord) bool
}

func (f RuleFunc) Check(record RegistrationRecord) bool {
	return f.Fn(record)
}

func (f RuleFunc) Name() string { return f.RuleName }
