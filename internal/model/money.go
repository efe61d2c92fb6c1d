package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseMoney parses a user-provided monetary amount. It tolerates the
// Brazilian comma decimal separator and embedded whitespace, and rejects
// anything that is not a finite number greater than zero.
func ParseMoney(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(raw, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, fmt.Errorf("empty value")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", raw, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, fmt.Errorf("value %q must be a positive number", raw)
	}
	return value, nil
}

// StripQuotes removes wrapping or embedded quote characters from a slot
// value and trims surrounding whitespace.
func StripQuotes(raw string) string {
	cleaned := strings.ReplaceAll(raw, `"`, "")
	cleaned = strings.ReplaceAll(cleaned, "'", "")
	return strings.TrimSpace(cleaned)
}
