package timesheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/money"
)

// ParseDuration reads hours as "7:30", "7.5", "7,5" or "7" and returns minutes.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, common.NewValidationError("duur", "leeg")
	}

	if hours, minutes, ok := strings.Cut(s, ":"); ok {
		h, err := strconv.Atoi(hours)
		if err != nil || h < 0 {
			return 0, common.NewValidationError("duur", fmt.Sprintf("ongeldige duur %q", s))
		}
		m, err := strconv.Atoi(minutes)
		if err != nil || m < 0 || m > 59 || len(minutes) != 2 {
			return 0, common.NewValidationError("duur", fmt.Sprintf("ongeldige duur %q", s))
		}
		return h*60 + m, nil
	}

	hours, err := money.Parse(s)
	if err != nil || hours.IsNegative() {
		return 0, common.NewValidationError("duur", fmt.Sprintf("ongeldige duur %q", s))
	}
	return int(hours.Mul(decimalSixty).Round(0).IntPart()), nil
}

// FormatDuration renders minutes as H:MM.
func FormatDuration(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}

// ParseClock reads a time of day as HH:MM (seconds are ignored) and returns minutes
// since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, common.NewValidationError("tijd", fmt.Sprintf("ongeldige tijd %q", s))
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, common.NewValidationError("tijd", fmt.Sprintf("ongeldige tijd %q", s))
	}
	return h*60 + m, nil
}
