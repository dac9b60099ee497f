package models

import "time"

// LectureReport is the row a lecturer submits after delivering a lecture. Immutable once stored.
type LectureReport struct {
	ID                      int64     `json:"id" db:"id"`
	ClassID                 int64     `json:"class_id" db:"class_id"`
	LecturerID              int64     `json:"lecturer_id" db:"lecturer_id"`
	WeekOfReporting         string    `json:"week_of_reporting" db:"week_of_reporting"`
	DateOfLecture           string    `json:"date_of_lecture" db:"date_of_lecture"` // YYYY-MM-DD
	ActualStudentsPresent   int       `json:"actual_students_present" db:"actual_students_present"`
	TopicTaught             string    `json:"topic_taught" db:"topic_taught"`
	LearningOutcomes        string    `json:"learning_outcomes" db:"learning_outcomes"`
	LecturerRecommendations string    `json:"lecturer_recommendations" db:"lecturer_recommendations"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
}

// ReportDetails is a report joined with its class, course and lecturer
type ReportDetails struct {
	LectureReport
	ClassName     string `json:"class_name" db:"class_name"`
	CourseCode    string `json:"course_code" db:"course_code"`
	CourseName    string `json:"course_name" db:"course_name"`
	CourseFaculty string `json:"faculty" db:"faculty"`
	LecturerName  string `json:"lecturer_name" db:"lecturer_name"`
}
