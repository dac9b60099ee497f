package models

import (
	"math"
	"time"
)

// Feedback is a principal lecturer's note on a report
type Feedback struct {
	ID                  int64     `json:"id" db:"id"`
	ReportID            int64     `json:"report_id" db:"report_id"`
	PrincipalLecturerID int64     `json:"principal_lecturer_id" db:"principal_lecturer_id"`
	FeedbackText        string    `json:"feedback_text" db:"feedback_text"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// Rating is a student's 1-5 score of a lecture
type Rating struct {
	ID          int64     `json:"id" db:"id"`
	ReportID    int64     `json:"report_id" db:"report_id"`
	StudentID   int64     `json:"student_id" db:"student_id"`
	RatingValue int       `json:"rating_value" db:"rating_value"`
	Comment     string    `json:"comment" db:"comment"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// RatingSummary is derived from persisted ratings on every read
type RatingSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// Summarize computes the aggregate over ratings, rounded to two decimals
func Summarize(ratings []Rating) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}
	total := 0
	for _, r := range ratings {
		total += r.RatingValue
	}
	avg := float64(total) / float64(len(ratings))
	return RatingSummary{
		Count:   len(ratings),
		Average: math.Round(avg*100) / 100,
	}
}

// Annotations groups everything attached to one report
type Annotations struct {
	ReportID int64         `json:"report_id"`
	Feedback []Feedback    `json:"feedback"`
	Ratings  []Rating      `json:"ratings"`
	Summary  RatingSummary `json:"rating_summary"`
}
