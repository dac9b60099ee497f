package models

import "time"

// CourseType distinguishes major from minor courses
type CourseType string

const (
	CourseTypeMajor CourseType = "Major"
	CourseTypeMinor CourseType = "Minor"
)

// Course is a catalog entry owned by a faculty
type Course struct {
	ID        int64      `json:"id" db:"id"`
	Code      string     `json:"course_code" db:"course_code"`
	Name      string     `json:"course_name" db:"course_name"`
	Type      CourseType `json:"course_type" db:"course_type"`
	Credits   int        `json:"credits" db:"credits"`
	Faculty   string     `json:"faculty" db:"faculty"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Class is a scheduled teaching group of a course
type Class struct {
	ID              int64  `json:"id" db:"id"`
	CourseID        int64  `json:"course_id" db:"course_id"`
	LecturerID      *int64 `json:"lecturer_id" db:"lecturer_id"` // nil while unassigned
	Name            string `json:"class_name" db:"class_name"`
	TotalRegistered int    `json:"total_registered_students" db:"total_registered_students"`
	Venue           string `json:"venue" db:"venue"`
	ScheduledTime   string `json:"scheduled_time" db:"scheduled_time"`

	// Joined from courses
	CourseCode    string `json:"course_code" db:"course_code"`
	CourseName    string `json:"course_name" db:"course_name"`
	CourseFaculty string `json:"faculty" db:"faculty"`
}
