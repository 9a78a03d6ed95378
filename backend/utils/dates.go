package utils

import (
	"errors"
	"fmt"
	"time"

	"roadmaptracker/backend/models"
)

var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, use YYYY-MM-DD", ErrInvalidDate, value)
	}
	return t, nil
}
