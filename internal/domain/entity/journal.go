package entity

import "time"

// Side of a journal line.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// JournalEntry is one entry synchronized from the external accounting
// platform. ExternalID is unique per company and drives upserts.
// Amounts are kept in minor currency units.
type JournalEntry struct {
	ID          string
	CompanyID   string
	ExternalID  string
	EntryDate   time.Time
	Description string
	Lines       []JournalLine
	PostedAt    time.Time
	CreatedAt   time.Time
}

// JournalLine is a single debit or credit leg of an entry.
type JournalLine struct {
	LineNo      int
	AccountCode string
	AccountName string
	Side        Side
	Amount      int64
}

// DebitTotal sums the debit legs.
func (e *JournalEntry) DebitTotal() int64 {
	var t int64
	for _, l := range e.Lines {
		if l.Side == SideDebit {
			t += l.Amount
		}
	}
	return t
}

// CreditTotal sums the credit legs.
func (e *JournalEntry) CreditTotal() int64 {
	var t int64
	for _, l := range e.Lines {
		if l.Side == SideCredit {
			t += l.Amount
		}
	}
	return t
}
