package entity

import "time"

// Severity of an audit finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// FindingStatus tracks whether a finding has been handled.
type FindingStatus string

const (
	FindingOpen     FindingStatus = "open"
	FindingResolved FindingStatus = "resolved"
)

// Finding is the result of one audit rule firing on a journal entry.
type Finding struct {
	ID        string
	EntryID   string
	CompanyID string
	Rule      string
	Severity  Severity
	Message   string
	Status    FindingStatus
	CreatedAt time.Time
}
