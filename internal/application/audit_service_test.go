package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	repo "github.com/wicaksana/ledgeraudit/internal/domain/repository"
)

type fakeJournalRepo struct {
	entries    map[string]*entity.JournalEntry
	duplicates map[string][]string
	upserts    int
	lastDate   time.Time
}

func newFakeJournalRepo(entries ...*entity.JournalEntry) *fakeJournalRepo {
	r := &fakeJournalRepo{entries: map[string]*entity.JournalEntry{}, duplicates: map[string][]string{}}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

func (r *fakeJournalRepo) Upsert(ctx context.Context, e *entity.JournalEntry) error {
	if e.ID == "" {
		e.ID = "gen-" + e.ExternalID
	}
	r.entries[e.ID] = e
	r.upserts++
	return nil
}

func (r *fakeJournalRepo) GetByID(ctx context.Context, id string) (*entity.JournalEntry, error) {
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return nil, errors.New("not found")
}

func (r *fakeJournalRepo) List(ctx context.Context, f repo.JournalFilter) ([]*entity.JournalEntry, error) {
	var out []*entity.JournalEntry
	for _, e := range r.entries {
		if e.CompanyID == f.CompanyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeJournalRepo) Summary(ctx context.Context, companyID string) (*repo.JournalSummary, error) {
	s := &repo.JournalSummary{}
	for _, e := range r.entries {
		if e.CompanyID != companyID {
			continue
		}
		s.EntryCount++
		s.DebitTotal += e.DebitTotal()
		s.CreditTotal += e.CreditTotal()
	}
	return s, nil
}

func (r *fakeJournalRepo) LastEntryDate(ctx context.Context, companyID string) (time.Time, error) {
	return r.lastDate, nil
}

func (r *fakeJournalRepo) FindDuplicates(ctx context.Context, e *entity.JournalEntry) ([]string, error) {
	return r.duplicates[e.ID], nil
}

type fakeFindingRepo struct {
	byEntry map[string][]*entity.Finding
	byID    map[string]*entity.Finding
	seq     int
}

func newFakeFindingRepo() *fakeFindingRepo {
	return &fakeFindingRepo{byEntry: map[string][]*entity.Finding{}, byID: map[string]*entity.Finding{}}
}

func (r *fakeFindingRepo) ReplaceForEntry(ctx context.Context, entryID string, findings []*entity.Finding) error {
	var kept []*entity.Finding
	for _, f := range r.byEntry[entryID] {
		if f.Status == entity.FindingResolved {
			kept = append(kept, f)
		} else {
			delete(r.byID, f.ID)
		}
	}
	for _, f := range findings {
		if f.ID == "" {
			r.seq++
			f.ID = entryID + "-f" + string(rune('a'+r.seq-1))
		}
		kept = append(kept, f)
		r.byID[f.ID] = f
	}
	r.byEntry[entryID] = kept
	return nil
}

func (r *fakeFindingRepo) GetByID(ctx context.Context, id string) (*entity.Finding, error) {
	if f, ok := r.byID[id]; ok {
		return f, nil
	}
	return nil, errors.New("not found")
}

func (r *fakeFindingRepo) List(ctx context.Context, f repo.FindingFilter) ([]*entity.Finding, error) {
	var out []*entity.Finding
	for _, fs := range r.byEntry {
		for _, finding := range fs {
			if finding.CompanyID != f.CompanyID {
				continue
			}
			if f.Status != "" && finding.Status != f.Status {
				continue
			}
			if f.Severity != "" && finding.Severity != f.Severity {
				continue
			}
			out = append(out, finding)
		}
	}
	return out, nil
}

func (r *fakeFindingRepo) CountBySeverity(ctx context.Context, companyID string, status entity.FindingStatus) (map[entity.Severity]int64, error) {
	out := map[entity.Severity]int64{}
	for _, fs := range r.byEntry {
		for _, f := range fs {
			if f.CompanyID == companyID && f.Status == status {
				out[f.Severity]++
			}
		}
	}
	return out, nil
}

func (r *fakeFindingRepo) SetStatus(ctx context.Context, id string, status entity.FindingStatus) error {
	f, ok := r.byID[id]
	if !ok {
		return errors.New("not found")
	}
	f.Status = status
	return nil
}

func balancedEntry(id string) *entity.JournalEntry {
	return &entity.JournalEntry{
		ID:          id,
		CompanyID:   "c1",
		ExternalID:  "ext-" + id,
		EntryDate:   time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), // a Monday
		Description: "office supplies",
		Lines: []entity.JournalLine{
			{LineNo: 1, AccountCode: "604", AccountName: "Supplies", Side: entity.SideDebit, Amount: 5400},
			{LineNo: 2, AccountCode: "101", AccountName: "Cash", Side: entity.SideCredit, Amount: 5400},
		},
	}
}

func TestRunChecksCleanEntry(t *testing.T) {
	journals := newFakeJournalRepo(balancedEntry("e1"))
	findings := newFakeFindingRepo()
	svc := NewAuditService(journals, findings, nil, nil)
	svc.Now = func() time.Time { return time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC) }

	got, err := svc.RunChecks(context.Background(), "e1")
	if err != nil {
		t.Fatalf("run checks: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("findings = %+v, want none", got)
	}
}

func TestRunChecksRules(t *testing.T) {
	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		mutate   func(e *entity.JournalEntry)
		rule     string
		severity entity.Severity
	}{
		{
			name: "unbalanced entry",
			mutate: func(e *entity.JournalEntry) {
				e.Lines[1].Amount = 5000
			},
			rule:     "balance",
			severity: entity.SeverityError,
		},
		{
			name: "missing description",
			mutate: func(e *entity.JournalEntry) {
				e.Description = ""
			},
			rule:     "missing_description",
			severity: entity.SeverityInfo,
		},
		{
			name: "weekend posting",
			mutate: func(e *entity.JournalEntry) {
				e.EntryDate = time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC) // Sunday
			},
			rule:     "weekend_posting",
			severity: entity.SeverityWarning,
		},
		{
			name: "round amount",
			mutate: func(e *entity.JournalEntry) {
				e.Lines[0].Amount = 3_000_000
				e.Lines[1].Amount = 3_000_000
			},
			rule:     "round_amount",
			severity: entity.SeverityInfo,
		},
		{
			name: "future dated",
			mutate: func(e *entity.JournalEntry) {
				e.EntryDate = now.AddDate(0, 1, 0)
			},
			rule:     "future_dated",
			severity: entity.SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := balancedEntry("e1")
			tt.mutate(e)
			journals := newFakeJournalRepo(e)
			findings := newFakeFindingRepo()
			svc := NewAuditService(journals, findings, nil, nil)
			svc.Now = func() time.Time { return now }

			got, err := svc.RunChecks(context.Background(), "e1")
			if err != nil {
				t.Fatalf("run checks: %v", err)
			}
			found := false
			for _, f := range got {
				if f.Rule == tt.rule {
					found = true
					if f.Severity != tt.severity {
						t.Errorf("rule %s severity = %s, want %s", tt.rule, f.Severity, tt.severity)
					}
					if f.Status != entity.FindingOpen {
						t.Errorf("rule %s status = %s, want open", tt.rule, f.Status)
					}
				}
			}
			if !found {
				t.Errorf("rule %s did not fire, got %+v", tt.rule, got)
			}
		})
	}
}

func TestRunChecksRoundAmountNeedsEveryLine(t *testing.T) {
	e := balancedEntry("e1")
	e.Lines[0].Amount = 3_000_000
	e.Lines[1].Amount = 3_000_000
	e.Lines = append(e.Lines,
		entity.JournalLine{LineNo: 3, AccountCode: "701", AccountName: "Sales", Side: entity.SideDebit, Amount: 5400},
		entity.JournalLine{LineNo: 4, AccountCode: "101", AccountName: "Cash", Side: entity.SideCredit, Amount: 5400},
	)
	journals := newFakeJournalRepo(e)
	findings := newFakeFindingRepo()
	svc := NewAuditService(journals, findings, nil, nil)
	svc.Now = func() time.Time { return time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC) }

	got, err := svc.RunChecks(context.Background(), "e1")
	if err != nil {
		t.Fatalf("run checks: %v", err)
	}
	for _, f := range got {
		if f.Rule == "round_amount" {
			t.Errorf("round_amount fired on a mixed entry: %+v", f)
		}
	}
}

func TestRunChecksDuplicate(t *testing.T) {
	e := balancedEntry("e1")
	journals := newFakeJournalRepo(e)
	journals.duplicates["e1"] = []string{"e2"}
	findings := newFakeFindingRepo()
	svc := NewAuditService(journals, findings, nil, nil)
	svc.Now = func() time.Time { return time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC) }

	got, err := svc.RunChecks(context.Background(), "e1")
	if err != nil {
		t.Fatalf("run checks: %v", err)
	}
	if len(got) != 1 || got[0].Rule != "duplicate" {
		t.Fatalf("findings = %+v, want one duplicate", got)
	}
}

func TestRunChecksKeepsResolvedFindings(t *testing.T) {
	e := balancedEntry("e1")
	e.Description = ""
	journals := newFakeJournalRepo(e)
	findings := newFakeFindingRepo()
	svc := NewAuditService(journals, findings, nil, nil)
	svc.Now = func() time.Time { return time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC) }

	first, err := svc.RunChecks(context.Background(), "e1")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first run findings = %d, want 1", len(first))
	}

	resolved, err := svc.ResolveFinding(context.Background(), first[0].ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != entity.FindingResolved {
		t.Fatalf("status = %s, want resolved", resolved.Status)
	}

	// a re-check must not reopen what a reviewer handled
	if _, err := svc.RunChecks(context.Background(), "e1"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	kept, err := svc.GetFinding(context.Background(), resolved.ID)
	if err != nil {
		t.Fatalf("get resolved finding: %v", err)
	}
	if kept.Status != entity.FindingResolved {
		t.Errorf("resolved finding reopened: status = %s", kept.Status)
	}
}

func TestResolveFindingTwiceIsNoop(t *testing.T) {
	findings := newFakeFindingRepo()
	f := &entity.Finding{ID: "f1", EntryID: "e1", CompanyID: "c1", Rule: "balance", Status: entity.FindingOpen}
	findings.byID["f1"] = f
	findings.byEntry["e1"] = []*entity.Finding{f}

	svc := NewAuditService(newFakeJournalRepo(), findings, nil, nil)
	if _, err := svc.ResolveFinding(context.Background(), "f1"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := svc.ResolveFinding(context.Background(), "f1"); err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if _, err := svc.ResolveFinding(context.Background(), "missing"); !errors.Is(err, ErrFindingNotFound) {
		t.Errorf("missing finding err = %v, want ErrFindingNotFound", err)
	}
}
