package enums

import "fmt"

// MemberStatus is stored as free text; values outside the known set are
// carried through untouched.
type MemberStatus string

const (
	MemberStatusPending MemberStatus = "pending"
	MemberStatusActive  MemberStatus = "active"
	MemberStatusExpired MemberStatus = "expired"
	MemberStatusFrozen  MemberStatus = "frozen"
)

var validMemberStatuses = []MemberStatus{
	MemberStatusPending,
	MemberStatusActive,
	MemberStatusExpired,
	MemberStatusFrozen,
}

// String implements fmt.Stringer.
func (m MemberStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberStatus.
func (m MemberStatus) IsValid() bool {
	for _, candidate := range validMemberStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMemberStatus converts raw input into a MemberStatus.
func ParseMemberStatus(value string) (MemberStatus, error) {
	for _, candidate := range validMemberStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member status %q", value)
}
