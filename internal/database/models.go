package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Company owns jobs; HR accounts are scoped to exactly one company.
type Company struct {
	gorm.Model
	Name    string `gorm:"size:255"`
	Address string `gorm:"size:255"`
}

// User is either a candidate or a reviewer. Role "HR" restricts the account to
// its own company; any other role may act on every resume.
type User struct {
	gorm.Model
	Name      string `gorm:"size:255"`
	Email     string `gorm:"uniqueIndex;size:255"`
	Role      string `gorm:"size:32"`
	CompanyID *uint  `gorm:"index"`
	Company   *Company
}

// Job is a posted position belonging to one company.
type Job struct {
	gorm.Model
	Name      string         `gorm:"size:255"`
	Skills    datatypes.JSON `gorm:"type:jsonb"`
	CompanyID uint           `gorm:"index"`
	Company   Company
}

// Resume is a candidate's application for one job, carrying the review status.
// The interview fields are populated only while status is APPROVED and the
// reject reason only while status is REJECTED; the state machine keeps the two
// groups mutually exclusive.
type Resume struct {
	gorm.Model
	Email             string `gorm:"size:255"`
	Url               string `gorm:"size:512"`
	Status            string `gorm:"size:32;index"`
	UserID            uint   `gorm:"index"`
	User              User
	JobID             uint `gorm:"index"`
	Job               Job
	InterviewAt       *time.Time
	InterviewLocation string `gorm:"size:255"`
	InterviewNote     string `gorm:"size:1000"`
	RejectReason      string `gorm:"size:1000"`
	CreatedBy         string `gorm:"size:255"`
	UpdatedBy         string `gorm:"size:255"`
}

// Notification is the durable per-user record created once per real status
// change. Read is the only field mutated after creation.
type Notification struct {
	gorm.Model
	UserID  uint `gorm:"index"`
	User    User
	Title   string `gorm:"size:255"`
	Content string `gorm:"type:text"`
	Type    string `gorm:"size:64"`
	Read    bool   `gorm:"default:false"`
}
