package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize parses a size string like "1024", "4KB", "10MB" or "1.5GB"
// into a byte count. A bare number is treated as bytes.
func ParseSize(input string) (int64, error) {
	s := strings.TrimSpace(strings.ToUpper(input))
	if s == "" {
		return 0, fmt.Errorf("invalid size format: %q", input)
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "TB"):
		multiplier = 1 << 40
		s = strings.TrimSuffix(s, "TB")
	case strings.HasSuffix(s, "GB"):
		multiplier = 1 << 30
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1 << 20
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1 << 10
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size format: %q", input)
	}
	if value < 0 {
		return 0, fmt.Errorf("size cannot be negative: %q", input)
	}

	return int64(value * float64(multiplier)), nil
}
