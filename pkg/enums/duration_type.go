package enums

import "fmt"

// DurationType is the raw plan duration unit as stored. Matching is
// case-sensitive and several aliases map to the same unit.
type DurationType string

const (
	DurationTypeDaily   DurationType = "daily"
	DurationTypeWeekly  DurationType = "weekly"
	DurationTypeMonthly DurationType = "monthly"
	DurationTypeYearly  DurationType = "yearly"
)

// DurationUnit is the resolved calendar unit behind a DurationType.
type DurationUnit int

const (
	DurationUnitUnknown DurationUnit = iota
	DurationUnitDay
	DurationUnitWeek
	DurationUnitMonth
	DurationUnitYear
)

var durationAliases = map[DurationType]DurationUnit{
	"daily":   DurationUnitDay,
	"day":     DurationUnitDay,
	"weekly":  DurationUnitWeek,
	"week":    DurationUnitWeek,
	"monthly": DurationUnitMonth,
	"month":   DurationUnitMonth,
	"yearly":  DurationUnitYear,
	"year":    DurationUnitYear,
	"annual":  DurationUnitYear,
}

// String implements fmt.Stringer.
func (d DurationType) String() string {
	return string(d)
}

// Unit resolves aliases. Unrecognised values report DurationUnitUnknown.
func (d DurationType) Unit() DurationUnit {
	return durationAliases[d]
}

// IsValid reports whether the value is a known type or alias.
func (d DurationType) IsValid() bool {
	return d.Unit() != DurationUnitUnknown
}

// ParseDurationType accepts canonical values and aliases, preserving the raw text.
func ParseDurationType(value string) (DurationType, error) {
	candidate := DurationType(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid duration type %q", value)
	}
	return candidate, nil
}

func (u DurationUnit) String() string {
	switch u {
	case DurationUnitDay:
		return "day"
	case DurationUnitWeek:
		return "week"
	case DurationUnitMonth:
		return "month"
	case DurationUnitYear:
		return "year"
	default:
		return "unknown"
	}
}
