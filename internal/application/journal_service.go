package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	repo "github.com/wicaksana/ledgeraudit/internal/domain/repository"
	"github.com/wicaksana/ledgeraudit/internal/integration/provider"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
)

// dashboardCacheTTL bounds how stale the dashboard summary may get.
const dashboardCacheTTL = 5 * time.Minute

// TokenSource hands out provider access tokens per company.
type TokenSource interface {
	AccessToken(ctx context.Context, companyID string) (string, error)
}

// JournalFeed is the provider surface the sync path needs.
type JournalFeed interface {
	Journals(ctx context.Context, accessToken, companyID string, since time.Time, page, pageSize int) (*provider.JournalPage, error)
	TrialBalance(ctx context.Context, accessToken, companyID string, fiscalYearStartMonth int) ([]provider.TrialBalanceRow, error)
}

// JobPublisher enqueues audit check jobs.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// JournalService synchronizes entries from the provider and serves reads.
type JournalService struct {
	Companies repo.CompanyRepository
	Journals  repo.JournalRepository
	Findings  repo.FindingRepository
	Tokens    TokenSource
	Feed      JournalFeed
	Queue     JobPublisher          // optional
	ES        *elasticsearch.Client // optional
	ESIndex   string
	Redis     *redis.Client // optional
	Logger    *logrus.Logger
	PageSize  int
}

func NewJournalService(companies repo.CompanyRepository, journals repo.JournalRepository, findings repo.FindingRepository, tokens TokenSource, feed JournalFeed, queue JobPublisher, es *elasticsearch.Client, esIndex string, rdb *redis.Client, logger *logrus.Logger, pageSize int) *JournalService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &JournalService{
		Companies: companies,
		Journals:  journals,
		Findings:  findings,
		Tokens:    tokens,
		Feed:      feed,
		Queue:     queue,
		ES:        es,
		ESIndex:   esIndex,
		Redis:     rdb,
		Logger:    logger,
		PageSize:  pageSize,
	}
}

// SyncResult reports one company sync run.
type SyncResult struct {
	CompanyID string `json:"company_id"`
	Fetched   int    `json:"fetched"`
	Upserted  int    `json:"upserted"`
	Enqueued  int    `json:"enqueued"`
}

// SyncCompany pulls journal entries updated since the newest local entry,
// upserts them, mirrors them into the search index and enqueues an audit
// check per entry. A page that fails to persist aborts the run; search
// indexing and queueing are best effort.
func (s *JournalService) SyncCompany(ctx context.Context, companyID string) (*SyncResult, error) {
	company, err := s.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, ErrCompanyNotFound
	}
	if company.ExternalID == "" {
		return nil, ErrNotConnected
	}

	token, err := s.Tokens.AccessToken(ctx, companyID)
	if err != nil {
		return nil, err
	}

	since, err := s.Journals.LastEntryDate(ctx, companyID)
	if err != nil {
		return nil, err
	}

	res := &SyncResult{CompanyID: companyID}
	page := 1
	for {
		jp, err := s.Feed.Journals(ctx, token, company.ExternalID, since, page, s.PageSize)
		if err != nil {
			return res, fmt.Errorf("fetch journals page %d: %w", page, err)
		}
		res.Fetched += len(jp.Journals)

		for i := range jp.Journals {
			entry, err := mapJournal(companyID, &jp.Journals[i])
			if err != nil {
				if s.Logger != nil {
					s.Logger.WithError(err).WithField("external_id", jp.Journals[i].ID).Warn("skipping malformed journal")
				}
				continue
			}
			if err := s.Journals.Upsert(ctx, entry); err != nil {
				return res, fmt.Errorf("upsert journal %s: %w", entry.ExternalID, err)
			}
			res.Upserted++

			s.index(ctx, entry)
			if s.enqueueCheck(ctx, entry) {
				res.Enqueued++
			}
		}

		if jp.NextPage == 0 {
			break
		}
		page = jp.NextPage
	}

	s.invalidateDashboard(ctx, companyID)

	if err := s.Companies.Update(ctx, touchSynced(company)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("company_id", companyID).Warn("could not record sync time")
	}
	return res, nil
}

func touchSynced(c *entity.Company) *entity.Company {
	now := time.Now()
	c.LastSyncedAt = &now
	return c
}

// mapJournal converts a provider journal into the local entity.
func mapJournal(companyID string, j *provider.Journal) (*entity.JournalEntry, error) {
	date, err := time.Parse("2006-01-02", j.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("bad entry date %q: %w", j.EntryDate, err)
	}
	e := &entity.JournalEntry{
		CompanyID:   companyID,
		ExternalID:  j.ID,
		EntryDate:   date,
		Description: j.Description,
		PostedAt:    j.PostedAt,
	}
	for i, l := range j.Lines {
		e.Lines = append(e.Lines, entity.JournalLine{
			LineNo:      i + 1,
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			Side:        entity.Side(l.Side),
			Amount:      l.Amount,
		})
	}
	return e, nil
}

// journalDoc is the search index projection of an entry.
type journalDoc struct {
	CompanyID   string   `json:"company_id"`
	ExternalID  string   `json:"external_id"`
	EntryDate   string   `json:"entry_date"`
	Description string   `json:"description"`
	Accounts    []string `json:"accounts"`
	DebitTotal  int64    `json:"debit_total"`
	CreditTotal int64    `json:"credit_total"`
}

func (s *JournalService) index(ctx context.Context, e *entity.JournalEntry) {
	if s.ES == nil {
		return
	}
	doc := journalDoc{
		CompanyID:   e.CompanyID,
		ExternalID:  e.ExternalID,
		EntryDate:   e.EntryDate.Format("2006-01-02"),
		Description: e.Description,
		DebitTotal:  e.DebitTotal(),
		CreditTotal: e.CreditTotal(),
	}
	for _, l := range e.Lines {
		doc.Accounts = append(doc.Accounts, l.AccountCode+" "+l.AccountName)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return
	}

	docID := e.CompanyID + ":" + e.ExternalID
	resp, err := s.ES.Index(s.ESIndex, bytes.NewReader(body),
		s.ES.Index.WithDocumentID(docID),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("doc_id", docID).Warn("journal index failed")
		}
		return
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.IsError() && s.Logger != nil {
		s.Logger.WithField("status", resp.StatusCode).WithField("doc_id", docID).Warn("journal index rejected")
	}
}

func (s *JournalService) enqueueCheck(ctx context.Context, e *entity.JournalEntry) bool {
	if s.Queue == nil {
		return false
	}
	job := CheckJob{EntryID: e.ID, CompanyID: e.CompanyID}
	if err := s.Queue.PublishJSON(ctx, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("external_id", e.ExternalID).Warn("could not enqueue audit check")
		}
		return false
	}
	return true
}

// Get returns a single entry with its lines.
func (s *JournalService) Get(ctx context.Context, id string) (*entity.JournalEntry, error) {
	e, err := s.Journals.GetByID(ctx, id)
	if err != nil {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

// List returns entries matching the filter, newest first.
func (s *JournalService) List(ctx context.Context, f repo.JournalFilter) ([]*entity.JournalEntry, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return s.Journals.List(ctx, f)
}

// SearchHit is one full-text search result.
type SearchHit struct {
	ExternalID  string  `json:"external_id"`
	EntryDate   string  `json:"entry_date"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Search runs a full-text query over descriptions and account names for
// one company's entries.
func (s *JournalService) Search(ctx context.Context, companyID, query string, limit int) ([]SearchHit, error) {
	if s.ES == nil {
		return nil, fmt.Errorf("search backend is not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var buf bytes.Buffer
	q := map[string]any{
		"size": limit,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"company_id": companyID}},
				},
				"must": []any{
					map[string]any{"multi_match": map[string]any{
						"query":  query,
						"fields": []string{"description", "accounts"},
					}},
				},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, err
	}

	resp, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.IsError() {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search: %s: %s", resp.Status(), strings.TrimSpace(string(body)))
	}

	var out struct {
		Hits struct {
			Hits []struct {
				Score  float64    `json:"_score"`
				Source journalDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		hits = append(hits, SearchHit{
			ExternalID:  h.Source.ExternalID,
			EntryDate:   h.Source.EntryDate,
			Description: h.Source.Description,
			Score:       h.Score,
		})
	}
	return hits, nil
}

// Dashboard is the aggregate view behind the dashboard page and endpoint.
type Dashboard struct {
	Company      *entity.PublicCompany     `json:"company"`
	Journal      *repo.JournalSummary      `json:"journal"`
	OpenFindings map[entity.Severity]int64 `json:"open_findings"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}

// GetDashboard builds the summary, served from redis when fresh.
func (s *JournalService) GetDashboard(ctx context.Context, companyID string) (*Dashboard, error) {
	if s.Redis != nil {
		var cached Dashboard
		hit, err := helpers.RedisGetJSON(ctx, s.Redis, helpers.KeyDashboard(companyID), &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	company, err := s.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, ErrCompanyNotFound
	}
	summary, err := s.Journals.Summary(ctx, companyID)
	if err != nil {
		return nil, err
	}
	counts, err := s.Findings.CountBySeverity(ctx, companyID, entity.FindingOpen)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Company:      company.Public(),
		Journal:      summary,
		OpenFindings: counts,
		GeneratedAt:  time.Now(),
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, helpers.KeyDashboard(companyID), d, dashboardCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("dashboard cache write failed")
		}
	}
	return d, nil
}

func (s *JournalService) invalidateDashboard(ctx context.Context, companyID string) {
	if s.Redis == nil {
		return
	}
	_ = helpers.RedisDel(ctx, s.Redis, helpers.KeyDashboard(companyID))
}

// TrialBalance proxies the provider's trial balance report for the
// company's current fiscal year.
func (s *JournalService) TrialBalance(ctx context.Context, companyID string) ([]provider.TrialBalanceRow, error) {
	company, err := s.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, ErrCompanyNotFound
	}
	if company.ExternalID == "" {
		return nil, ErrNotConnected
	}
	token, err := s.Tokens.AccessToken(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.Feed.TrialBalance(ctx, token, company.ExternalID, company.FiscalYearStartMonth)
}
