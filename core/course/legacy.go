package course

import (
	"regexp"
	"strconv"
	"strings"
)

// Courses created before structured time slots carry a free-text schedule like "周一 3-4 节，A402".
// Parsing it is lossy and only ever used as a fallback.

var (
	legacyDays = []struct {
		token string
		day   int
	}{
		{"周一", Monday},
		{"周二", Tuesday},
		{"周三", Wednesday},
		{"周四", Thursday},
		{"周五", Friday},
	}

	periodRangeRegex  = regexp.MustCompile(`(\d+)[-到](\d+)`)
	periodSingleRegex = regexp.MustCompile(`(\d+)\s*节`)
	roomRegex         = regexp.MustCompile(`[A-Z]\d+`)
)

// ParseSlot extracts the day and the first period from a legacy schedule.
// It returns false when no weekday token or period number can be found.
func ParseSlot(schedule string) (TimeSlot, bool) {
	if schedule == "" {
		return TimeSlot{}, false
	}
	for _, d := range legacyDays {
		if !strings.Contains(schedule, d.token) {
			continue
		}
		if m := periodRangeRegex.FindStringSubmatch(schedule); m != nil {
			if period, err := strconv.Atoi(m[1]); err == nil {
				return TimeSlot{Day: d.day, Period: period}, true
			}
		}
		if m := periodSingleRegex.FindStringSubmatch(schedule); m != nil {
			if period, err := strconv.Atoi(m[1]); err == nil {
				return TimeSlot{Day: d.day, Period: period}, true
			}
		}
	}
	return TimeSlot{}, false
}

// ParseLocation extracts the first room token (an uppercase letter followed by digits, eg. "A402").
func ParseLocation(schedule string) string {
	return roomRegex.FindString(schedule)
}
