package enums

// ActivityType labels entries in the audit trail.
type ActivityType string

const (
	ActivityPaymentCreated      ActivityType = "payment_created"
	ActivityPaymentVerified     ActivityType = "payment_verified"
	ActivityPaymentRejected     ActivityType = "payment_rejected"
	ActivityMembershipActivated ActivityType = "membership_activated"
	ActivityMembershipExpired   ActivityType = "membership_expired"
	ActivityMemberCreated       ActivityType = "member_created"
	ActivityPlanCreated         ActivityType = "plan_created"
)

var validActivityTypes = []ActivityType{
	ActivityPaymentCreated,
	ActivityPaymentVerified,
	ActivityPaymentRejected,
	ActivityMembershipActivated,
	ActivityMembershipExpired,
	ActivityMemberCreated,
	ActivityPlanCreated,
}

// String implements fmt.Stringer.
func (a ActivityType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActivityType.
func (a ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == a {
			return true
		}
	}
	return false
}
