package models

import "encoding/json"

// Checklist maps a niyam key to whether it was completed on a given day
type Checklist map[string]bool

// ParseChecklist decodes a stored checklist value. Malformed or empty input
// yields an empty checklist rather than an error; a day with unreadable data
// counts as nothing completed.
func ParseChecklist(raw string) Checklist {
	if raw == "" {
		return Checklist{}
	}
	var c Checklist
	if err := json.Unmarshal([]byte(raw), &c); err != nil || c == nil {
		return Checklist{}
	}
	return c
}

// Encode serializes the checklist for storage
func (c Checklist) Encode() string {
	if c == nil {
		c = Checklist{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// CloudProgressRecord mirrors one (account, date) progress entry in the
// remote store. It is an eventually-consistent copy of the local scoped
// entries, not the authoritative source.
type CloudProgressRecord struct {
	AccountKey string    `json:"accountKey"`
	DateKey    string    `json:"dateKey"`
	Checklist  Checklist `json:"checklist"`
	Points     int       `json:"points"`
	Submitted  bool      `json:"submitted"`
}

// DayProgress is the local view of one tracked day
type DayProgress struct {
	DateKey   string    `json:"dateKey"`
	Checklist Checklist `json:"checklist"`
	Points    int       `json:"points"`
	Submitted bool      `json:"submitted"`
}
