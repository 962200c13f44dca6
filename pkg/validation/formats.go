package validation

import (
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type formatCheck struct {
	description string
	valid       func(string) bool
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var formats = map[string]formatCheck{
	"email": {
		description: "a valid email address",
		valid:       emailPattern.MatchString,
	},
	"date": {
		description: "a valid date (YYYY-MM-DD)",
		valid:       isCalendarDate,
	},
	"date-time": {
		description: "a valid date and time",
		valid: func(s string) bool {
			_, err := time.Parse(time.RFC3339, s)
			return err == nil
		},
	},
	"uri": {
		description: "a valid URI",
		valid: func(s string) bool {
			u, err := url.ParseRequestURI(s)
			return err == nil && u.Scheme != ""
		},
	},
	"uuid": {
		description: "a valid UUID",
		valid: func(s string) bool {
			if len(s) != 36 {
				return false
			}
			_, err := uuid.Parse(s)
			return err == nil
		},
	},
}

// isCalendarDate parses s and compares the round-tripped date, rejecting
// impossible days such as the 30th of February.
func isCalendarDate(s string) bool {
	parsed, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return false
	}
	return parsed.Format(time.DateOnly) == s
}
