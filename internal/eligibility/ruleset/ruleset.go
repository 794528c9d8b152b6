// Package ruleset turns a YAML ruleset document into the ordered rule list an
// Evaluator runs. Document order is evaluation order.
package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"tuition/internal/eligibility"
	dErrors "tuition/pkg/domain-errors"
)

const (
	KindMinIncome   = "min_income"
	KindMaxIncome   = "max_income"
	KindScholarship = "scholarship"
)

// Document is the on-disk ruleset format.
type Document struct {
	Version string     `yaml:"version"`
	Rules   []RuleSpec `yaml:"rules"`
}

// RuleSpec configures one rule. Thresholds are pointers so an omitted value
// can fall back to the kind's default.
type RuleSpec struct {
	Kind      string `yaml:"kind"`
	MinIncome *int64 `yaml:"min_income,omitempty"`
	MaxIncome *int64 `yaml:"max_income,omitempty"`
}

// Parse decodes a ruleset document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		// A file with no YAML content is an empty ruleset.
		if errors.Is(err, io.EOF) {
			return &Document{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid ruleset document")
	}
	return &doc, nil
}

// Load reads and parses a ruleset file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset file: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse ruleset file %s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes a document back to YAML.
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// DefaultDocument is the canonical ruleset: minimum income, maximum income,
// then scholarship.
func DefaultDocument() *Document {
	minIncome := eligibility.DefaultMinIncome
	maxIncome := eligibility.DefaultMaxIncome
	return &Document{
		Version: "1",
		Rules: []RuleSpec{
			{Kind: KindMinIncome, MinIncome: &minIncome},
			{Kind: KindMaxIncome, MaxIncome: &maxIncome},
			{Kind: KindScholarship},
		},
	}
}

// Default returns the rules of DefaultDocument.
func Default() []eligibility.Rule {
	return []eligibility.Rule{
		eligibility.NewMinIncomeRule(eligibility.DefaultMinIncome),
		eligibility.NewMaxIncomeRule(eligibility.DefaultMaxIncome),
		eligibility.ScholarshipRule{},
	}
}

// Factory builds a rule from its spec.
type Factory func(spec RuleSpec) (eligibility.Rule, error)

// Builder maps rule kinds to factories. New kinds are added with Register;
// existing kinds and the evaluator are untouched.
type Builder struct {
	factories map[string]Factory
}

// NewBuilder returns a builder that knows the built-in kinds.
func NewBuilder() *Builder {
	b := &Builder{factories: make(map[string]Factory)}
	b.Register(KindMinIncome, buildMinIncome)
	b.Register(KindMaxIncome, buildMaxIncome)
	b.Register(KindScholarship, buildScholarship)
	return b
}

// Register adds or replaces the factory for kind.
func (b *Builder) Register(kind string, f Factory) {
	b.factories[kind] = f
}

// Kinds lists registered kinds, sorted.
func (b *Builder) Kinds() []string {
	kinds := make([]string, 0, len(b.factories))
	for k := range b.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build instantiates the document's rules in document order.
func (b *Builder) Build(doc *Document) ([]eligibility.Rule, error) {
	if doc == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "ruleset document is required")
	}
	rules := make([]eligibility.Rule, 0, len(doc.Rules))
	for i, spec := range doc.Rules {
		kind := strings.TrimSpace(spec.Kind)
		if kind == "" {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("rules[%d]: kind is required", i))
		}
		factory, ok := b.factories[kind]
		if !ok {
			return nil, dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("rules[%d]: unknown rule kind %q (known: %s)", i, kind, strings.Join(b.Kinds(), ", ")))
		}
		rule, err := factory(spec)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("rules[%d]", i))
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadRules loads a ruleset file and builds it with the built-in kinds. An
// empty path yields the default rules.
func LoadRules(path string) ([]eligibility.Rule, error) {
	if path == "" {
		return Default(), nil
	}
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewBuilder().Build(doc)
}

func buildMinIncome(spec RuleSpec) (eligibility.Rule, error) {
	if spec.MaxIncome != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "min_income rule does not accept max_income")
	}
	threshold, err := resolveThreshold(spec.MinIncome, eligibility.DefaultMinIncome, "min_income")
	if err != nil {
		return nil, err
	}
	return eligibility.NewMinIncomeRule(threshold), nil
}

func buildMaxIncome(spec RuleSpec) (eligibility.Rule, error) {
	if spec.MinIncome != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "max_income rule does not accept min_income")
	}
	threshold, err := resolveThreshold(spec.MaxIncome, eligibility.DefaultMaxIncome, "max_income")
	if err != nil {
		return nil, err
	}
	return eligibility.NewMaxIncomeRule(threshold), nil
}

func buildScholarship(spec RuleSpec) (eligibility.Rule, error) {
	if spec.MinIncome != nil || spec.MaxIncome != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "scholarship rule takes no thresholds")
	}
	return eligibility.ScholarshipRule{}, nil
}

func resolveThreshold(v *int64, def int64, field string) (int64, error) {
	if v == nil {
		return def, nil
	}
	if *v < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, field+" must be non-negative")
	}
	return *v, nil
}
