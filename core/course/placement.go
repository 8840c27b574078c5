package course

// TimeSource is where a course gets its slot from: exactly one of Structured, Legacy or Unscheduled.
type TimeSource interface {
	resolve() (TimeSlot, string, bool)
}

// Structured is a course saved with a time slot and a room.
type Structured struct {
	Slot     TimeSlot
	Location string
}

// Legacy is a course only described by a free-text schedule.
// A non-empty Location takes precedence over the room found in Text.
type Legacy struct {
	Text     string
	Location string
}

// Unscheduled is a course without any time information.
type Unscheduled struct{}

func (s Structured) resolve() (TimeSlot, string, bool) {
	return s.Slot, s.Location, s.Slot.IsSet()
}

func (l Legacy) resolve() (TimeSlot, string, bool) {
	slot, ok := ParseSlot(l.Text)
	if !ok || !slot.IsSet() {
		return TimeSlot{}, "", false
	}
	loc := l.Location
	if loc == "" {
		loc = ParseLocation(l.Text)
	}
	return slot, loc, true
}

func (Unscheduled) resolve() (TimeSlot, string, bool) {
	return TimeSlot{}, "", false
}

// TimeSource picks the structured time when present and falls back to the legacy schedule.
func (c Course) TimeSource() TimeSource {
	if c.Time != nil {
		loc := c.Location
		if loc == "" && c.Schedule != "" {
			loc = ParseLocation(c.Schedule)
		}
		return Structured{Slot: *c.Time, Location: loc}
	}
	if c.Schedule != "" {
		return Legacy{Text: c.Schedule, Location: c.Location}
	}
	return Unscheduled{}
}

// Placement is a course normalized for conflict checks and timetables.
type Placement struct {
	Course     Course
	Slot       TimeSlot
	Location   string
	TeacherIDs []string
	// Placed is false when no slot could be resolved; such courses never conflict nor render.
	Placed bool
}

func Resolve(c Course) Placement {
	slot, loc, ok := c.TimeSource().resolve()
	p := Placement{
		Course:     c,
		TeacherIDs: c.Teachers(),
		Placed:     ok,
	}
	if ok {
		p.Slot = slot
		p.Location = loc
	}
	return p
}

func (p Placement) sharesTeacher(ids []string) bool {
	for _, id := range ids {
		for _, tid := range p.TeacherIDs {
			if id == tid {
				return true
			}
		}
	}
	return false
}
