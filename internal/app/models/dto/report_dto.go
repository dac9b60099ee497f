package dto

// SubmitReportRequest carries a lecturer's report. LecturerID is accepted for
// compatibility with older clients and ignored: the submitter is always the caller.
type SubmitReportRequest struct {
	ClassID                 int64  `json:"class_id" validate:"required,gt=0"`
	LecturerID              *int64 `json:"lecturer_id,omitempty"`
	WeekOfReporting         string `json:"week_of_reporting" validate:"required,max=50"`
	DateOfLecture           string `json:"date_of_lecture" validate:"required,datetime=2006-01-02"`
	ActualStudentsPresent   *int   `json:"actual_students_present" validate:"required,min=0"`
	TopicTaught             string `json:"topic_taught" validate:"required"`
	LearningOutcomes        string `json:"learning_outcomes" validate:"required"`
	LecturerRecommendations string `json:"lecturer_recommendations" validate:"required"`
}

// FeedbackRequest is a principal lecturer's feedback on a report
type FeedbackRequest struct {
	FeedbackText string `json:"feedback_text" validate:"required"`
}

// RatingRequest is a student's rating of a lecture
type RatingRequest struct {
	RatingValue *int   `json:"rating_value" validate:"required,min=1,max=5"`
	Comment     string `json:"comment" validate:"max=1000"`
}
