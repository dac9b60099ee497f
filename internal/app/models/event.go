package models

import "time"

// ReportEventType identifies a lifecycle transition of a report
type ReportEventType string

const (
	EventReportSubmitted ReportEventType = "report_submitted"
	EventFeedbackAdded   ReportEventType = "feedback_added"
	EventRatingAdded     ReportEventType = "rating_added"
)

// ReportEvent is emitted after a successful mutation
type ReportEvent struct {
	Type     ReportEventType `json:"type"`
	ReportID int64           `json:"report_id"`
	ActorID  int64           `json:"actor_id"`
	At       time.Time       `json:"at"`
	Report   *ReportDetails  `json:"report,omitempty"`
}
