package eligibility

import (
	dErrors "tuition/pkg/domain-errors"
)

// RegistrationRecord is the immutable input every rule is checked against.
//
// Invariants:
//   - ParentIncome is non-negative
//   - Fields are fixed at construction; there are no setters
type RegistrationRecord struct {
	name                string
	parentIncome        int64
	scholarshipReceived bool
}

// NewRegistrationRecord builds a record. The name is carried as a label and is
// not validated here.
func NewRegistrationRecord(name string, parentIncome int64, scholarshipReceived bool) (RegistrationRecord, error) {
	if parentIncome < 0 {
		return RegistrationRecord{}, dErrors.New(dErrors.CodeInvariantViolation, "parent income cannot be negative")
	}
	return RegistrationRecord{
		name:                name,
		parentIncome:        parentIncome,
		scholarshipReceived: scholarshipReceived,
	}, nil
}

// MustRegistrationRecord is NewRegistrationRecord for known-good literals.
func MustRegistrationRecord(name string, parentIncome int64, scholarshipReceived bool) RegistrationRecord {
	rec, err := NewRegistrationRecord(name, parentIncome, scholarshipReceived)
	if err != nil {
		panic(err)
	}
	return rec
}

func (r RegistrationRecord) Name() string {
	return r.name
}

func (r RegistrationRecord) ParentIncome() int64 {
	return r.parentIncome
}

func (r RegistrationRecord) ScholarshipReceived() bool {
	return r.scholarshipReceived
}

// Tier is the tuition band a verdict maps to.
type Tier string

const (
	TierLow  Tier = "low"
	TierHigh Tier = "high"
)

// TierFor maps an evaluation verdict to its tier: passing every rule earns
// the low tier.
func TierFor(passed bool) Tier {
	if passed {
		return TierLow
	}
	return TierHigh
}

func (t Tier) String() string {
	return string(t)
}
