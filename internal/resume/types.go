package resume

import "fmt"

// Status is the review state of a resume.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusReviewing Status = "REVIEWING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// ParseStatus validates a raw status value. Any status may transition to any
// other; only the value set itself is checked.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusReviewing, StatusApproved, StatusRejected:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Label returns the Vietnamese display label shown to candidates.
// Unknown values fall back to the pending label.
func (s Status) Label() string {
	switch s {
	case StatusApproved:
		return "ĐÃ PHÊ DUYỆT"
	case StatusRejected:
		return "BỊ TỪ CHỐI"
	case StatusReviewing:
		return "ĐANG XEM XÉT"
	default:
		return "CHỜ DUYỆT"
	}
}

// RoleHR is the restricted reviewer role: scoped to the resumes of its own company.
const RoleHR = "HR"

// Actor identifies who is performing a transition, as decoded from the access token.
type Actor struct {
	UserID    uint
	Email     string
	Role      string
	CompanyID *uint
}

// mayReview reports whether the actor may act on a resume owned by companyID.
func (a Actor) mayReview(companyID uint) bool {
	if a.Role != RoleHR {
		return true
	}
	return a.CompanyID != nil && *a.CompanyID == companyID
}
