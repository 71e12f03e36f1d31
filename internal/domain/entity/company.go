package entity

import "time"

// Company is the accounting entity (tenant) whose journal data is audited.
// ExternalID is the company identifier on the external accounting platform;
// empty until the company is connected.
type Company struct {
	ID                   string
	Name                 string
	FiscalYearStartMonth int // 1..12
	ExternalID           string
	LastSyncedAt         *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// PublicCompany is the JSON projection returned by the API.
type PublicCompany struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	FiscalYearStartMonth int        `json:"fiscal_year_start_month"`
	Connected            bool       `json:"connected"`
	LastSyncedAt         *time.Time `json:"last_synced_at,omitempty"`
}

func (c *Company) Public() *PublicCompany {
	return &PublicCompany{
		ID:                   c.ID,
		Name:                 c.Name,
		FiscalYearStartMonth: c.FiscalYearStartMonth,
		Connected:            c.ExternalID != "",
		LastSyncedAt:         c.LastSyncedAt,
	}
}
