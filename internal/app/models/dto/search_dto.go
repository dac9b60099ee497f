package dto

import "github.com/luct/reporting/internal/app/models"

// SearchResult holds the rows of whichever collection was searched.
// Exactly one of the slices is populated, matching Type.
type SearchResult struct {
	Type    string                  `json:"type"`
	Query   string                  `json:"q"`
	Reports []*models.ReportDetails `json:"reports,omitempty"`
	Courses []*models.Course        `json:"courses,omitempty"`
	Users   []*models.User          `json:"users,omitempty"`
}
