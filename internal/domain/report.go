package domain

import "time"

// Problem report status values
const (
	ReportStatusUp   = "UP"
	ReportStatusDown = "DOWN"
)

// ProblemReport is a daily outage ticket referencing exactly one Site by
// foreign key. Reports are listed newest issue date first.
type ProblemReport struct {
	ID           int64     `json:"id,string" form:"id" gorm:"primaryKey;autoIncrement"`
	SiteId       int64     `json:"site_id,string" form:"site_id" gorm:"index;not null"` // Referenced site ID
	TicketId     string    `json:"ticket_id" form:"ticket_id" gorm:"size:120;not null"` // NOC ticket identifier
	Status       string    `json:"status" form:"status" gorm:"size:10;not null"`        // UP or DOWN
	Reason       string    `json:"reason" form:"reason" gorm:"type:text"`               // Outage reason
	LastUpdate   string    `json:"last_update" form:"last_update" gorm:"type:text"`     // Latest follow-up notes
	IssueDate    time.Time `json:"issue_date" form:"issue_date" gorm:"not null"`        // Date the issue was raised
	LastFollowUp time.Time `json:"last_follow_up" form:"last_follow_up" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName Specify table name
func (ProblemReport) TableName() string {
	return "net_problem_report"
}
