package course

import "fmt"

const (
	DaysPerWeek   = 5
	PeriodsPerDay = 5
)

// Days
const (
	Monday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Periods: 1-2 morning, 3-4 afternoon, 5 evening.
const (
	Morning1 = iota + 1
	Morning2
	Afternoon1
	Afternoon2
	Evening
)

const unsetLabel = "未设置"

var (
	DayNames = map[int]string{
		Monday:    "周一",
		Tuesday:   "周二",
		Wednesday: "周三",
		Thursday:  "周四",
		Friday:    "周五",
	}

	PeriodNames = map[int]string{
		Morning1:   "上午第1节",
		Morning2:   "上午第2节",
		Afternoon1: "下午第1节",
		Afternoon2: "下午第2节",
		Evening:    "晚上",
	}
)

// TimeSlot pins a course to one period of the week.
// A zero Day or Period means the slot is unset.
type TimeSlot struct {
	Day    int `json:"day"`
	Period int `json:"period"`
}

func (s TimeSlot) IsSet() bool {
	return s.Day != 0 && s.Period != 0
}

func (s TimeSlot) Valid() bool {
	return s.Day >= 1 && s.Day <= DaysPerWeek && s.Period >= 1 && s.Period <= PeriodsPerDay
}

// String returns the localized "weekday period" label, eg. "周一 下午第1节".
func (s TimeSlot) String() string {
	return fmt.Sprintf("%s %s", dayName(s.Day), periodName(s.Period))
}

func dayName(day int) string {
	if name, ok := DayNames[day]; ok {
		return name
	}
	return fmt.Sprintf("第%d天", day)
}

func periodName(period int) string {
	if name, ok := PeriodNames[period]; ok {
		return name
	}
	return fmt.Sprintf("第%d节", period)
}

func FormatTime(slot *TimeSlot) string {
	if slot == nil || !slot.IsSet() {
		return unsetLabel
	}
	return slot.String()
}

func FormatLocation(location string) string {
	if location == "" {
		return unsetLabel
	}
	return location
}
