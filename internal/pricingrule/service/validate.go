package service

import (
	"strconv"
	"strings"

	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
)

func parseRuleType(value ruledomain.RuleType) (ruledomain.RuleType, error) {
	switch strings.ToUpper(strings.TrimSpace(string(value))) {
	case string(ruledomain.FlatRate):
		return ruledomain.FlatRate, nil
	case string(ruledomain.DistanceBased):
		return ruledomain.DistanceBased, nil
	case string(ruledomain.StationBased):
		return ruledomain.StationBased, nil
	case string(ruledomain.TimeBased):
		return ruledomain.TimeBased, nil
	case string(ruledomain.Dynamic):
		return ruledomain.Dynamic, nil
	default:
		return "", ruledomain.ErrInvalidRuleType
	}
}

func parseRuleStatus(value ruledomain.RuleStatus) (ruledomain.RuleStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(string(value))) {
	case string(ruledomain.RuleStatusActive):
		return ruledomain.RuleStatusActive, nil
	case string(ruledomain.RuleStatusInactive):
		return ruledomain.RuleStatusInactive, nil
	case string(ruledomain.RuleStatusScheduled):
		return ruledomain.RuleStatusScheduled, nil
	default:
		return "", ruledomain.ErrInvalidRuleStatus
	}
}

// validateRuleConfig enforces that the configuration fields required by
// the declared type are present at creation time. The calculation path
// re-checks and fails loudly rather than assuming this held.
func validateRuleConfig(ruleType ruledomain.RuleType, req ruledomain.CreateRequest) error {
	switch ruleType {
	case ruledomain.FlatRate:
		if req.BasePrice == nil || *req.BasePrice < 0 {
			return ruledomain.ErrMissingBasePrice
		}
	case ruledomain.DistanceBased:
		if req.PricePerKm == nil || *req.PricePerKm <= 0 {
			return ruledomain.ErrMissingPricePerKm
		}
	case ruledomain.StationBased:
		// Station pair prices are attached afterwards via AddStationPricing.
	case ruledomain.TimeBased:
		if req.BasePrice == nil || *req.BasePrice < 0 {
			return ruledomain.ErrMissingBasePrice
		}
		if req.PeakMultiplier == nil || *req.PeakMultiplier <= 0 {
			return ruledomain.ErrMissingPeakConfig
		}
		if req.PeakStartTime == nil || req.PeakEndTime == nil {
			return ruledomain.ErrMissingPeakConfig
		}
		if !isClockTime(*req.PeakStartTime) || !isClockTime(*req.PeakEndTime) {
			return ruledomain.ErrInvalidPeakWindow
		}
	case ruledomain.Dynamic:
		if req.BasePrice == nil || *req.BasePrice < 0 {
			return ruledomain.ErrMissingBasePrice
		}
	default:
		return ruledomain.ErrInvalidRuleType
	}
	return nil
}

// isClockTime reports whether value is a valid "HH:MM" local time of day.
func isClockTime(value string) bool {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return false
	}
	return true
}

var weekdays = map[string]string{
	"MONDAY":    "MONDAY",
	"TUESDAY":   "TUESDAY",
	"WEDNESDAY": "WEDNESDAY",
	"THURSDAY":  "THURSDAY",
	"FRIDAY":    "FRIDAY",
	"SATURDAY":  "SATURDAY",
	"SUNDAY":    "SUNDAY",
}

func normalizeDays(days []string) ([]string, error) {
	out := make([]string, 0, len(days))
	for _, day := range days {
		normalized, ok := weekdays[strings.ToUpper(strings.TrimSpace(day))]
		if !ok {
			return nil, ruledomain.ErrInvalidDays
		}
		out = append(out, normalized)
	}
	return out, nil
}
