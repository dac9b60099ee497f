package models

// ScopeKind names the shape of a report visibility predicate
type ScopeKind string

const (
	ScopeNone     ScopeKind = "none"
	ScopeOwn      ScopeKind = "own"
	ScopeEnrolled ScopeKind = "enrolled"
	ScopeFaculty  ScopeKind = "faculty"
	ScopeAll      ScopeKind = "all"
)

// ReportScope is a storage-agnostic visibility predicate over reports.
// Stores translate it into their own filter language; Allows evaluates it in memory.
type ReportScope struct {
	Kind       ScopeKind
	LecturerID int64
	ClassIDs   []int64
	Faculty    string
}

// AllReports is the unrestricted scope
func AllReports() ReportScope {
	return ReportScope{Kind: ScopeAll}
}

// Allows reports whether r is visible under the scope
func (s ReportScope) Allows(r *ReportDetails) bool {
	if r == nil {
		return false
	}
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeOwn:
		return r.LecturerID == s.LecturerID
	case ScopeFaculty:
		return r.CourseFaculty == s.Faculty
	case ScopeEnrolled:
		for _, id := range s.ClassIDs {
			if id == r.ClassID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Empty reports whether the scope can never match anything
func (s ReportScope) Empty() bool {
	switch s.Kind {
	case ScopeAll, ScopeOwn, ScopeFaculty:
		return false
	case ScopeEnrolled:
		return len(s.ClassIDs) == 0
	default:
		return true
	}
}
