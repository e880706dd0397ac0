package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func baseDiscount(now time.Time) Discount {
	return Discount{
		Code:       "SAVE10",
		Type:       Percentage,
		Value:      10,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
		IsActive:   true,
	}
}

func TestValidatePasses(t *testing.T) {
	now := time.Now().UTC()
	result := Validate(baseDiscount(now), now, 0)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Reason)
}

func TestValidateChecksInOrder(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		mutate     func(*Discount)
		priorUses  int
		wantReason string
	}{
		{
			name:       "inactive",
			mutate:     func(d *Discount) { d.IsActive = false },
			wantReason: ReasonInactive,
		},
		{
			name:       "not yet valid",
			mutate:     func(d *Discount) { d.ValidFrom = now.Add(time.Hour) },
			wantReason: ReasonNotStarted,
		},
		{
			name:       "expired",
			mutate:     func(d *Discount) { d.ValidUntil = now.Add(-time.Minute) },
			wantReason: ReasonExpired,
		},
		{
			name: "usage limit reached regardless of dates",
			mutate: func(d *Discount) {
				d.UsageLimit = intPtr(1)
				d.UsedCount = 1
			},
			wantReason: ReasonUsageExhausted,
		},
		{
			name:       "per user cap reached",
			mutate:     func(d *Discount) { d.MaxUsesPerUser = intPtr(2) },
			priorUses:  2,
			wantReason: ReasonUserCapReached,
		},
		{
			name: "inactive wins over expiry",
			mutate: func(d *Discount) {
				d.IsActive = false
				d.ValidUntil = now.Add(-time.Minute)
			},
			wantReason: ReasonInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := baseDiscount(now)
			tt.mutate(&d)
			result := Validate(d, now, tt.priorUses)
			assert.False(t, result.Valid)
			assert.Equal(t, tt.wantReason, result.Reason)
		})
	}
}
