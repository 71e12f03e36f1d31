package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/internal/integration/provider"
)

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
	updates   int
}

func newFakeCompanyRepo(companies ...*entity.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: map[string]*entity.Company{}}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *fakeCompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	if c, ok := r.companies[id]; ok {
		return c, nil
	}
	return nil, errors.New("not found")
}

func (r *fakeCompanyRepo) List(ctx context.Context) ([]*entity.Company, error) {
	var out []*entity.Company
	for _, c := range r.companies {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCompanyRepo) ListConnected(ctx context.Context) ([]*entity.Company, error) {
	return r.List(ctx)
}

func (r *fakeCompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	r.updates++
	return nil
}

type staticTokens struct{ token string }

func (s staticTokens) AccessToken(ctx context.Context, companyID string) (string, error) {
	return s.token, nil
}

type fakeFeed struct {
	pages []provider.JournalPage
	calls int
}

func (f *fakeFeed) Journals(ctx context.Context, accessToken, companyID string, since time.Time, page, pageSize int) (*provider.JournalPage, error) {
	f.calls++
	if page < 1 || page > len(f.pages) {
		return &provider.JournalPage{}, nil
	}
	return &f.pages[page-1], nil
}

func (f *fakeFeed) TrialBalance(ctx context.Context, accessToken, companyID string, fiscalYearStartMonth int) ([]provider.TrialBalanceRow, error) {
	return []provider.TrialBalanceRow{{AccountCode: "101", AccountName: "Cash", Debit: 100, Credit: 0}}, nil
}

type fakeQueue struct {
	jobs []any
	err  error
}

func (q *fakeQueue) PublishJSON(ctx context.Context, body any) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, body)
	return nil
}

func providerJournal(id, date, desc string, amount int64) provider.Journal {
	return provider.Journal{
		ID:          id,
		EntryDate:   date,
		Description: desc,
		Lines: []provider.JournalLine{
			{AccountCode: "604", AccountName: "Supplies", Side: "debit", Amount: amount},
			{AccountCode: "101", AccountName: "Cash", Side: "credit", Amount: amount},
		},
	}
}

func TestSyncCompanyPagesAndEnqueues(t *testing.T) {
	companies := newFakeCompanyRepo(&entity.Company{ID: "c1", Name: "Demo", ExternalID: "ext-c1", FiscalYearStartMonth: 4})
	journals := newFakeJournalRepo()
	queue := &fakeQueue{}
	feed := &fakeFeed{pages: []provider.JournalPage{
		{Journals: []provider.Journal{
			providerJournal("j1", "2026-08-01", "rent", 90000),
			providerJournal("j2", "2026-08-02", "supplies", 4300),
		}, NextPage: 2},
		{Journals: []provider.Journal{
			providerJournal("j3", "2026-08-03", "travel", 12800),
		}},
	}}

	svc := NewJournalService(companies, journals, newFakeFindingRepo(), staticTokens{"tok"}, feed, queue, nil, "", nil, nil, 100)

	res, err := svc.SyncCompany(context.Background(), "c1")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Fetched != 3 || res.Upserted != 3 || res.Enqueued != 3 {
		t.Errorf("result = %+v, want 3/3/3", res)
	}
	if feed.calls != 2 {
		t.Errorf("feed calls = %d, want 2", feed.calls)
	}
	if len(queue.jobs) != 3 {
		t.Fatalf("queued jobs = %d, want 3", len(queue.jobs))
	}
	job, ok := queue.jobs[0].(CheckJob)
	if !ok || job.CompanyID != "c1" || job.EntryID == "" {
		t.Errorf("job = %+v, want CheckJob for c1 with entry id", queue.jobs[0])
	}
	if companies.updates == 0 {
		t.Error("sync did not record last synced time")
	}
}

func TestSyncCompanyIsIdempotent(t *testing.T) {
	companies := newFakeCompanyRepo(&entity.Company{ID: "c1", ExternalID: "ext-c1"})
	journals := newFakeJournalRepo()
	feed := &fakeFeed{pages: []provider.JournalPage{
		{Journals: []provider.Journal{providerJournal("j1", "2026-08-01", "rent", 90000)}},
	}}
	svc := NewJournalService(companies, journals, newFakeFindingRepo(), staticTokens{"tok"}, feed, nil, nil, "", nil, nil, 100)

	for i := 0; i < 2; i++ {
		if _, err := svc.SyncCompany(context.Background(), "c1"); err != nil {
			t.Fatalf("sync %d: %v", i, err)
		}
	}
	if len(journals.entries) != 1 {
		t.Errorf("entries = %d, want 1 after re-sync", len(journals.entries))
	}
}

func TestSyncCompanyNotConnected(t *testing.T) {
	companies := newFakeCompanyRepo(&entity.Company{ID: "c1"})
	svc := NewJournalService(companies, newFakeJournalRepo(), newFakeFindingRepo(), staticTokens{"tok"}, &fakeFeed{}, nil, nil, "", nil, nil, 100)

	if _, err := svc.SyncCompany(context.Background(), "c1"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
	if _, err := svc.SyncCompany(context.Background(), "missing"); !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("err = %v, want ErrCompanyNotFound", err)
	}
}

func TestSyncCompanySkipsMalformedJournal(t *testing.T) {
	companies := newFakeCompanyRepo(&entity.Company{ID: "c1", ExternalID: "ext-c1"})
	journals := newFakeJournalRepo()
	feed := &fakeFeed{pages: []provider.JournalPage{
		{Journals: []provider.Journal{
			providerJournal("bad", "08/01/2026", "wrong date format", 100),
			providerJournal("good", "2026-08-01", "fine", 100),
		}},
	}}
	svc := NewJournalService(companies, journals, newFakeFindingRepo(), staticTokens{"tok"}, feed, nil, nil, "", nil, nil, 100)

	res, err := svc.SyncCompany(context.Background(), "c1")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Fetched != 2 || res.Upserted != 1 {
		t.Errorf("result = %+v, want fetched 2 upserted 1", res)
	}
}

func TestMapJournalLineNumbers(t *testing.T) {
	j := providerJournal("j1", "2026-08-01", "rent", 90000)
	e, err := mapJournal("c1", &j)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if e.ExternalID != "j1" || e.CompanyID != "c1" {
		t.Errorf("mapped ids = %s/%s", e.CompanyID, e.ExternalID)
	}
	if len(e.Lines) != 2 || e.Lines[0].LineNo != 1 || e.Lines[1].LineNo != 2 {
		t.Errorf("lines = %+v, want sequential line numbers", e.Lines)
	}
	if e.DebitTotal() != e.CreditTotal() {
		t.Errorf("totals differ: %d vs %d", e.DebitTotal(), e.CreditTotal())
	}
}

func TestGetDashboardAggregates(t *testing.T) {
	companies := newFakeCompanyRepo(&entity.Company{ID: "c1", Name: "Demo", ExternalID: "ext"})
	e := balancedEntry("e1")
	journals := newFakeJournalRepo(e)
	findings := newFakeFindingRepo()
	f := &entity.Finding{ID: "f1", EntryID: "e1", CompanyID: "c1", Rule: "balance", Severity: entity.SeverityError, Status: entity.FindingOpen}
	findings.byID["f1"] = f
	findings.byEntry["e1"] = []*entity.Finding{f}

	svc := NewJournalService(companies, journals, findings, staticTokens{"tok"}, &fakeFeed{}, nil, nil, "", nil, nil, 100)

	d, err := svc.GetDashboard(context.Background(), "c1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Journal.EntryCount != 1 {
		t.Errorf("entry count = %d, want 1", d.Journal.EntryCount)
	}
	if d.OpenFindings[entity.SeverityError] != 1 {
		t.Errorf("open error findings = %d, want 1", d.OpenFindings[entity.SeverityError])
	}
	if !d.Company.Connected {
		t.Error("company should report connected")
	}
}
