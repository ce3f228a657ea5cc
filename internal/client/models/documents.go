package models

// Document entities: nested forms filled in the field. Child line items are
// embedded in the parent row as a JSON blob so parent and children persist
// atomically; the repository serializes on write and deserializes on read.
// Child foreign keys hold local ids and are translated to server ids only
// when the push payload is built.

// AttendanceEntry is one worker's line in a daily record.
type AttendanceEntry struct {
	CollaboratorID int64   `json:"collaborator_id"`
	Hours          float64 `json:"hours"`
	Activity       string  `json:"activity"`
	Overtime       bool    `json:"overtime"`
}

// DailyRecord is the daily attendance form (apontamento) for one area.
type DailyRecord struct {
	SyncMeta
	RecordDate  string // ISO date, e.g. "2026-08-28"
	AreaID      int64  // local id of the Area
	RequesterID *int64 // local id, optional
	ApproverID  *int64 // local id, optional
	Notes       string
	Entries     []AttendanceEntry
}

// SurveyItem is a single answered question in a quality survey.
type SurveyItem struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
	Flagged  bool    `json:"flagged"`
}

// Survey is a quality checklist/survey filled for an area.
type Survey struct {
	SyncMeta
	Title      string
	SurveyDate string
	AreaID     int64
	Items      []SurveyItem
}

// MeasurementItem is one measured quantity of a contract line item.
type MeasurementItem struct {
	BmItemID int64   `json:"bm_item_id"`
	Quantity float64 `json:"quantity"`
	Notes    string  `json:"notes"`
}

// Measurement is a measurement bulletin (boletim de medição) over a period.
type Measurement struct {
	SyncMeta
	Number        string
	PeriodStart   string
	PeriodEnd     string
	ProjectCodeID int64
	Items         []MeasurementItem
}
