package domain

import "time"

// ValidationResult reports whether a discount may be applied, and if not,
// the first failing check's reason.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

const (
	ReasonInactive       = "discount is not active"
	ReasonNotStarted     = "discount is not yet valid"
	ReasonExpired        = "discount has expired"
	ReasonUsageExhausted = "discount usage limit reached"
	ReasonUserCapReached = "discount already used the maximum number of times"
)

// Validate runs the eligibility checks in order and short-circuits on the
// first failure. Min-amount eligibility is checked separately against the
// running subtotal by the pricing pipeline.
func Validate(d Discount, now time.Time, priorUserUses int) ValidationResult {
	if !d.IsActive {
		return ValidationResult{Reason: ReasonInactive}
	}
	if now.Before(d.ValidFrom) {
		return ValidationResult{Reason: ReasonNotStarted}
	}
	if now.After(d.ValidUntil) {
		return ValidationResult{Reason: ReasonExpired}
	}
	if d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
		return ValidationResult{Reason: ReasonUsageExhausted}
	}
	if d.MaxUsesPerUser != nil && priorUserUses >= *d.MaxUsesPerUser {
		return ValidationResult{Reason: ReasonUserCapReached}
	}
	return ValidationResult{Valid: true}
}
