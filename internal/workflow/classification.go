package workflow

// Classification is the declared shape of the leave period.
type Classification int

const (
	ClassificationAllDay    Classification = 0
	ClassificationHalfDayAM Classification = 1
	ClassificationHalfDayPM Classification = 2
	ClassificationTimeRange Classification = 3
)

var classificationNames = map[Classification]string{
	ClassificationAllDay:    "ALL_DAY",
	ClassificationHalfDayAM: "HALF_DAY_AM",
	ClassificationHalfDayPM: "HALF_DAY_PM",
	ClassificationTimeRange: "TIME_RANGE",
}

var classificationLabels = map[Classification]string{
	ClassificationAllDay:    "全日",
	ClassificationHalfDayAM: "AM半休",
	ClassificationHalfDayPM: "PM半休",
	ClassificationTimeRange: "時間単位",
}

func (c Classification) Valid() bool {
	_, ok := classificationNames[c]
	return ok
}

func (c Classification) String() string {
	if v, ok := classificationNames[c]; ok {
		return v
	}
	return "UNKNOWN"
}

func (c Classification) Label() string {
	return classificationLabels[c]
}
