package sqlite

import (
	"time"

	"github.com/luct/reporting/internal/app/models"
)

type userRecord struct {
	ID        int64  `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Role      string `gorm:"not null"`
	Name      string `gorm:"not null"`
	Faculty   string
	CreatedAt time.Time
}

func (userRecord) TableName() string { return "users" }

func (r *userRecord) toModel() *models.User {
	return &models.User{
		ID:        r.ID,
		Email:     r.Email,
		Password:  r.Password,
		Role:      models.Role(r.Role),
		Name:      r.Name,
		Faculty:   r.Faculty,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type courseRecord struct {
	ID        int64  `gorm:"primaryKey"`
	Code      string `gorm:"column:course_code;uniqueIndex;not null"`
	Name      string `gorm:"column:course_name;not null"`
	Type      string `gorm:"column:course_type;not null"`
	Credits   int
	Faculty   string `gorm:"not null;index"`
	CreatedAt time.Time
}

func (courseRecord) TableName() string { return "courses" }

func (r *courseRecord) toModel() *models.Course {
	return &models.Course{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		Type:      models.CourseType(r.Type),
		Credits:   r.Credits,
		Faculty:   r.Faculty,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type classRecord struct {
	ID              int64         `gorm:"primaryKey"`
	CourseID        int64         `gorm:"not null;index"`
	Course          *courseRecord `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	LecturerID      *int64        `gorm:"index"`
	Lecturer        *userRecord   `gorm:"foreignKey:LecturerID;constraint:OnDelete:SET NULL"`
	Name            string        `gorm:"column:class_name;not null"`
	TotalRegistered int           `gorm:"column:total_registered_students"`
	Venue           string
	ScheduledTime   string
}

func (classRecord) TableName() string { return "classes" }

type enrollmentRecord struct {
	ClassID    int64        `gorm:"primaryKey;autoIncrement:false"`
	Class      *classRecord `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE"`
	StudentID  int64        `gorm:"primaryKey;autoIncrement:false;index"`
	Student    *userRecord  `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	EnrolledAt time.Time    `gorm:"autoCreateTime"`
}

func (enrollmentRecord) TableName() string { return "class_enrollments" }

type reportRecord struct {
	ID                      int64        `gorm:"primaryKey"`
	ClassID                 int64        `gorm:"not null;index"`
	Class                   *classRecord `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE"`
	LecturerID              int64        `gorm:"not null;index"`
	Lecturer                *userRecord  `gorm:"foreignKey:LecturerID;constraint:OnDelete:CASCADE"`
	WeekOfReporting         string       `gorm:"not null"`
	DateOfLecture           string       `gorm:"not null"`
	ActualStudentsPresent   int          `gorm:"not null"`
	TopicTaught             string       `gorm:"not null"`
	LearningOutcomes        string       `gorm:"not null"`
	LecturerRecommendations string       `gorm:"not null"`
	CreatedAt               time.Time    `gorm:"index"`
}

func (reportRecord) TableName() string { return "lecture_reports" }

type feedbackRecord struct {
	ID                  int64         `gorm:"primaryKey"`
	ReportID            int64         `gorm:"not null;index"`
	Report              *reportRecord `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	PrincipalLecturerID int64         `gorm:"not null"`
	FeedbackText        string        `gorm:"not null"`
	CreatedAt           time.Time
}

func (feedbackRecord) TableName() string { return "feedback" }

type ratingRecord struct {
	ID          int64         `gorm:"primaryKey"`
	ReportID    int64         `gorm:"not null;index"`
	Report      *reportRecord `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	StudentID   int64         `gorm:"not null"`
	RatingValue int           `gorm:"not null"`
	Comment     string
	CreatedAt   time.Time
}

func (ratingRecord) TableName() string { return "ratings" }

// reportRow is the flat result of the report/class/course/user join
type reportRow struct {
	ID                      int64
	ClassID                 int64
	LecturerID              int64
	WeekOfReporting         string
	DateOfLecture           string
	ActualStudentsPresent   int
	TopicTaught             string
	LearningOutcomes        string
	LecturerRecommendations string
	CreatedAt               time.Time
	ClassName               string
	CourseCode              string
	CourseName              string
	CourseFaculty           string
	LecturerName            string
}

func (r *reportRow) toModel() *models.ReportDetails {
	return &models.ReportDetails{
		LectureReport: models.LectureReport{
			ID:                      r.ID,
			ClassID:                 r.ClassID,
			LecturerID:              r.LecturerID,
			WeekOfReporting:         r.WeekOfReporting,
			DateOfLecture:           r.DateOfLecture,
			ActualStudentsPresent:   r.ActualStudentsPresent,
			TopicTaught:             r.TopicTaught,
			LearningOutcomes:        r.LearningOutcomes,
			LecturerRecommendations: r.LecturerRecommendations,
			CreatedAt:               r.CreatedAt.UTC(),
		},
		ClassName:     r.ClassName,
		CourseCode:    r.CourseCode,
		CourseName:    r.CourseName,
		CourseFaculty: r.CourseFaculty,
		LecturerName:  r.LecturerName,
	}
}

type classRow struct {
	ID              int64
	CourseID        int64
	LecturerID      *int64
	ClassName       string
	TotalRegistered int `gorm:"column:total_registered_students"`
	Venue           string
	ScheduledTime   string
	CourseCode      string
	CourseName      string
	CourseFaculty   string
}

func (r *classRow) toModel() *models.Class {
	return &models.Class{
		ID:              r.ID,
		CourseID:        r.CourseID,
		LecturerID:      r.LecturerID,
		Name:            r.ClassName,
		TotalRegistered: r.TotalRegistered,
		Venue:           r.Venue,
		ScheduledTime:   r.ScheduledTime,
		CourseCode:      r.CourseCode,
		CourseName:      r.CourseName,
		CourseFaculty:   r.CourseFaculty,
	}
}
