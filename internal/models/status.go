package models

// StatusCode is the integer recorded for one student on one date.
// 0 is present, 3 is absent and any other value is presence with a multiplier
// (for example 2 for a double session).
type StatusCode int

const (
	StatusPresent StatusCode = 0
	StatusAbsent  StatusCode = 3
)

// StatusKind is the tagged reading of a StatusCode.
type StatusKind string

const (
	StatusKindPresent         StatusKind = "present"
	StatusKindAbsent          StatusKind = "absent"
	StatusKindPresentWeighted StatusKind = "present_weighted"
)

// Kind classifies the code.
func (s StatusCode) Kind() StatusKind {
	switch s {
	case StatusPresent:
		return StatusKindPresent
	case StatusAbsent:
		return StatusKindAbsent
	default:
		return StatusKindPresentWeighted
	}
}

// Multiplier returns the credit multiplier of a weighted presence, 0 otherwise.
func (s StatusCode) Multiplier() int {
	if s.Kind() != StatusKindPresentWeighted {
		return 0
	}
	return int(s)
}

// IsPresent is the strict presence rule used by statistics: only code 0 counts.
func (s StatusCode) IsPresent() bool {
	return s == StatusPresent
}

// IsAbsent reports the absent sentinel.
func (s StatusCode) IsAbsent() bool {
	return s == StatusAbsent
}

// PresentWeight is the value summed by the export matrix: the raw code for any
// non-absent entry and 0 for absent. Code 0 therefore weighs 0 here.
func (s StatusCode) PresentWeight() int {
	if s.IsAbsent() {
		return 0
	}
	return int(s)
}

// StatusLegend describes a code for display.
type StatusLegend struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// StatusLegends is the static legend returned by the status-info endpoint.
func StatusLegends() map[string]StatusLegend {
	return map[string]StatusLegend{
		"0":        {Label: "Present", Color: "green"},
		"3":        {Label: "Absent", Color: "red"},
		"weighted": {Label: "Present (multiplier)", Color: "blue"},
	}
}
