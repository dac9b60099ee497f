package dto

// CreateCourseRequest is submitted by a program leader
type CreateCourseRequest struct {
	Code    string `json:"course_code" validate:"required,max=20"`
	Name    string `json:"course_name" validate:"required,max=150"`
	Type    string `json:"course_type" validate:"required,oneof=Major Minor"`
	Credits int    `json:"credits" validate:"min=0,max=60"`
	Faculty string `json:"faculty" validate:"required,max=150"`
}

// CreateClassRequest opens a class under an existing course
type CreateClassRequest struct {
	CourseID        int64  `json:"course_id" validate:"required,gt=0"`
	LecturerID      *int64 `json:"lecturer_id,omitempty" validate:"omitempty,gt=0"`
	Name            string `json:"class_name" validate:"required,max=100"`
	TotalRegistered int    `json:"total_registered_students" validate:"min=0"`
	Venue           string `json:"venue" validate:"max=100"`
	ScheduledTime   string `json:"scheduled_time" validate:"max=100"`
}

// AssignLecturerRequest assigns a lecturer to a class
type AssignLecturerRequest struct {
	LecturerID int64 `json:"lecturer_id" validate:"required,gt=0"`
}

// EnrollStudentRequest enrolls a student in a class
type EnrollStudentRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}
