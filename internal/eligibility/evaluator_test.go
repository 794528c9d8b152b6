package eligibility

import (
	"bytes"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// spyRule counts invocations and returns a fixed verdict.
type spyRule struct {
	name   string
	result bool
	calls  atomic.Int32
}

func (s *spyRule) Check(RegistrationRecord) bool {
	s.calls.Add(1)
	return s.result
}

func (s *spyRule) Name() string { return s.name }

func standardRules() []Rule {
	return []Rule{
		NewMinIncomeRule(DefaultMinIncome),
		NewMaxIncomeRule(DefaultMaxIncome),
		ScholarshipRule{},
	}
}

type EvaluatorSuite struct {
	suite.Suite
	evaluator *Evaluator
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.evaluator = NewEvaluator(standardRules())
}

func (s *EvaluatorSuite) TestEmptyRuleListPasses() {
	rec := MustRegistrationRecord("anyone", 0, false)

	s.True(Evaluate(nil, rec))
	s.True(Evaluate([]Rule{}, rec))
	s.True(NewEvaluator(nil).Evaluate(rec))

	ex := NewEvaluator(nil).Explain(rec)
	s.True(ex.Passed)
	s.Empty(ex.FailedRule)
	s.Empty(ex.Checks)
}

func (s *EvaluatorSuite) TestShortCircuit() {
	s.Run("rules after the first failure are never invoked", func() {
		first := &spyRule{name: "first", result: true}
		failing := &spyRule{name: "failing", result: false}
		after := &spyRule{name: "after", result: true}

		ok := Evaluate([]Rule{first, failing, after}, MustRegistrationRecord("x", 1, true))

		s.False(ok)
		s.Equal(int32(1), first.calls.Load())
		s.Equal(int32(1), failing.calls.Load())
		s.Equal(int32(0), after.calls.Load())
	})

	s.Run("explain stops at the same rule", func() {
		first := &spyRule{name: "first", result: true}
		failing := &spyRule{name: "failing", result: false}
		after := &spyRule{name: "after", result: true}

		ex := NewEvaluator([]Rule{first, failing, after}).Explain(MustRegistrationRecord("x", 1, true))

		s.False(ex.Passed)
		s.Equal("failing", ex.FailedRule)
		s.Len(ex.Checks, 2)
		s.Equal(int32(0), after.calls.Load())
	})

	s.Run("all passing rules are each invoked once", func() {
		a := &spyRule{name: "a", result: true}
		b := &spyRule{name: "b", result: true}

		s.True(NewEvaluator([]Rule{a, b}).Evaluate(MustRegistrationRecord("x", 1, true)))
		s.Equal(int32(1), a.calls.Load())
		s.Equal(int32(1), b.calls.Load())
	})
}

func (s *EvaluatorSuite) TestScenarios() {
	tests := []struct {
		name        string
		income      int64
		scholarship bool
		passed      bool
		failedRule  string
		checks      int
	}{
		{"Andi", 4_000_000, true, true, "", 3},
		{"Budi", 8_000_000, true, false, "max_income", 2},
		{"Cici", 3_000_000, false, false, "scholarship", 3},
		{"Dodi", 500_000, true, false, "min_income", 1},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := MustRegistrationRecord(tt.name, tt.income, tt.scholarship)

			s.Equal(tt.passed, Evaluate(standardRules(), rec))
			s.Equal(tt.passed, s.evaluator.Evaluate(rec))

			ex := s.evaluator.Explain(rec)
			s.Equal(tt.passed, ex.Passed)
			s.Equal(tt.failedRule, ex.FailedRule)
			s.Len(ex.Checks, tt.checks)
			s.Equal(TierFor(tt.passed), ex.Tier())
		})
	}
}

func (s *EvaluatorSuite) TestOrderIsCallerDetermined() {
	// Fails both rules; the one listed first is blamed.
	rec := MustRegistrationRecord("Dodi", 500_000, false)

	forward := NewEvaluator([]Rule{NewMinIncomeRule(DefaultMinIncome), ScholarshipRule{}}).Explain(rec)
	reversed := NewEvaluator([]Rule{ScholarshipRule{}, NewMinIncomeRule(DefaultMinIncome)}).Explain(rec)

	s.Equal("min_income", forward.FailedRule)
	s.Equal("scholarship", reversed.FailedRule)
}

func (s *EvaluatorSuite) TestIdempotent() {
	for _, rec := range []RegistrationRecord{
		MustRegistrationRecord("Andi", 4_000_000, true),
		MustRegistrationRecord("Budi", 8_000_000, true),
	} {
		first := s.evaluator.Explain(rec)
		second := s.evaluator.Explain(rec)
		s.Equal(first, second)
		s.Equal(s.evaluator.Evaluate(rec), s.evaluator.Evaluate(rec))
	}
}

func (s *EvaluatorSuite) TestCallerSliceIsCopied() {
	rules := standardRules()
	evaluator := NewEvaluator(rules)
	rules[0] = RuleFunc{RuleName: "never", Fn: func(RegistrationRecord) bool { return false }}

	s.True(evaluator.Evaluate(MustRegistrationRecord("Andi", 4_000_000, true)))
	s.Equal([]string{"min_income", "max_income", "scholarship"}, evaluator.RuleNames())

	returned := evaluator.Rules()
	returned[0] = rules[0]
	s.Equal("min_income", evaluator.RuleNames()[0])
}

func TestEvaluatorDiagnosticsDoNotChangeVerdict(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	quiet := NewEvaluator(standardRules())
	verbose := NewEvaluator(standardRules(), WithDiagnostics(logger))

	rec := MustRegistrationRecord("Budi", 8_000_000, true)
	assert.Equal(t, quiet.Evaluate(rec), verbose.Evaluate(rec))

	out := buf.String()
	assert.Contains(t, out, "rule=min_income")
	assert.Contains(t, out, "rule=max_income")
	assert.NotContains(t, out, "rule=scholarship")
}

func TestEvaluatorConcurrentUse(t *testing.T) {
	evaluator := NewEvaluator(standardRules())
	andi := MustRegistrationRecord("Andi", 4_000_000, true)
	budi := MustRegistrationRecord("Budi", 8_000_000, true)

	var wg sync.WaitGroup
	results := make([]bool, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = evaluator.Evaluate(andi)
			} else {
				results[i] = evaluator.Evaluate(budi)
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		require.Equal(t, i%2 == 0, got, "result %d", i)
	}
}
