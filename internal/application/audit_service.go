package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	repo "github.com/wicaksana/ledgeraudit/internal/domain/repository"
)

// CheckJob is the queue message asking for one entry to be audited.
type CheckJob struct {
	EntryID   string `json:"entry_id"`
	CompanyID string `json:"company_id"`
}

// Analyzer is the optional model-backed reviewer consulted after the rule
// checks. The default implementation reports nothing.
type Analyzer interface {
	Review(ctx context.Context, e *entity.JournalEntry) ([]*entity.Finding, error)
}

// NoopAnalyzer never reports a finding.
type NoopAnalyzer struct{}

func (NoopAnalyzer) Review(ctx context.Context, e *entity.JournalEntry) ([]*entity.Finding, error) {
	return nil, nil
}

// ruleCheck inspects one entry and returns zero or more findings.
type ruleCheck func(ctx context.Context, s *AuditService, e *entity.JournalEntry) []*entity.Finding

// AuditService runs the rule checks over synced entries and manages the
// resulting findings.
type AuditService struct {
	Journals repo.JournalRepository
	Findings repo.FindingRepository
	Model    Analyzer
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewAuditService(journals repo.JournalRepository, findings repo.FindingRepository, model Analyzer, logger *logrus.Logger) *AuditService {
	if model == nil {
		model = NoopAnalyzer{}
	}
	return &AuditService{
		Journals: journals,
		Findings: findings,
		Model:    model,
		Logger:   logger,
		Now:      time.Now,
	}
}

var ruleChecks = []ruleCheck{
	checkBalance,
	checkMissingDescription,
	checkWeekendPosting,
	checkRoundAmount,
	checkFutureDated,
	checkDuplicate,
}

// RunChecks audits one entry and replaces its open findings with the new
// result set. Resolved findings are left alone so a re-check cannot reopen
// what a reviewer already handled.
func (s *AuditService) RunChecks(ctx context.Context, entryID string) ([]*entity.Finding, error) {
	e, err := s.Journals.GetByID(ctx, entryID)
	if err != nil {
		return nil, ErrEntryNotFound
	}

	var findings []*entity.Finding
	for _, check := range ruleChecks {
		findings = append(findings, check(ctx, s, e)...)
	}

	reviewed, err := s.Model.Review(ctx, e)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("entry_id", entryID).Warn("model review failed")
		}
	} else {
		for _, f := range reviewed {
			f.Rule = "ai_review"
			f.EntryID = e.ID
			f.CompanyID = e.CompanyID
			f.Status = entity.FindingOpen
			findings = append(findings, f)
		}
	}

	if err := s.Findings.ReplaceForEntry(ctx, e.ID, findings); err != nil {
		return nil, err
	}
	return findings, nil
}

func (s *AuditService) finding(e *entity.JournalEntry, rule string, sev entity.Severity, msg string) *entity.Finding {
	return &entity.Finding{
		EntryID:   e.ID,
		CompanyID: e.CompanyID,
		Rule:      rule,
		Severity:  sev,
		Message:   msg,
		Status:    entity.FindingOpen,
	}
}

// checkBalance flags entries whose debit and credit legs do not sum equal.
func checkBalance(_ context.Context, s *AuditService, e *entity.JournalEntry) []*entity.Finding {
	d, c := e.DebitTotal(), e.CreditTotal()
	if d == c {
		return nil
	}
	return []*entity.Finding{s.finding(e, "balance", entity.SeverityError,
		fmt.Sprintf("debits %d and credits %d do not balance", d, c))}
}

func checkMissingDescription(_ context.Context, s *AuditService, e *entity.JournalEntry) []*entity.Finding {
	if e.Description != "" {
		return nil
	}
	return []*entity.Finding{s.finding(e, "missing_description", entity.SeverityInfo,
		"entry has no description")}
}

func checkWeekendPosting(_ context.Context, s *AuditService, e *entity.JournalEntry) []*entity.Finding {
	wd := e.EntryDate.Weekday()
	if wd != time.Saturday && wd != time.Sunday {
		return nil
	}
	return []*entity.Finding{s.finding(e, "weekend_posting", entity.SeverityWarning,
		fmt.Sprintf("entry dated on a %s", wd))}
}

// roundAmountUnit is the round figure, in minor units, the check tests
// each line against.
const roundAmountUnit = 1_000_000

// checkRoundAmount flags an entry whose every line is a non-zero multiple
// of the round unit.
func checkRoundAmount(_ context.Context, s *AuditService, e *entity.JournalEntry) []*entity.Finding {
	if len(e.Lines) == 0 {
		return nil
	}
	for _, l := range e.Lines {
		amt := l.Amount
		if amt < 0 {
			amt = -amt
		}
		if amt == 0 || amt%roundAmountUnit != 0 {
			return nil
		}
	}
	return []*entity.Finding{s.finding(e, "round_amount", entity.SeverityInfo,
		fmt.Sprintf("every line is a round multiple of %d", int64(roundAmountUnit)))}
}

func checkFutureDated(_ context.Context, s *AuditService, e *entity.JournalEntry) []*entity.Finding {
	now := s.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !e.EntryDate.After(today) {
		return nil
	}
	return []*entity.Finding{s.finding(e, "future_dated", entity.SeverityWarning,
		fmt.Sprintf("entry is dated %s, in the future", e.EntryDate.Format("2006-01-02")))}
}

func checkDuplicate(ctx context.Context, s *AuditService, e *entity.JournalEntry) []*entity.Finding {
	ids, err := s.Journals.FindDuplicates(ctx, e)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("entry_id", e.ID).Warn("duplicate check failed")
		}
		return nil
	}
	if len(ids) == 0 {
		return nil
	}
	return []*entity.Finding{s.finding(e, "duplicate", entity.SeverityWarning,
		fmt.Sprintf("%d other entries share the same date, description and amount", len(ids)))}
}

// ListFindings returns findings for a company, optionally filtered.
func (s *AuditService) ListFindings(ctx context.Context, f repo.FindingFilter) ([]*entity.Finding, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return s.Findings.List(ctx, f)
}

// GetFinding returns a single finding.
func (s *AuditService) GetFinding(ctx context.Context, id string) (*entity.Finding, error) {
	f, err := s.Findings.GetByID(ctx, id)
	if err != nil {
		return nil, ErrFindingNotFound
	}
	return f, nil
}

// ResolveFinding marks a finding handled. Resolving twice is a no-op.
func (s *AuditService) ResolveFinding(ctx context.Context, id string) (*entity.Finding, error) {
	f, err := s.Findings.GetByID(ctx, id)
	if err != nil {
		return nil, ErrFindingNotFound
	}
	if f.Status == entity.FindingResolved {
		return f, nil
	}
	if err := s.Findings.SetStatus(ctx, id, entity.FindingResolved); err != nil {
		return nil, err
	}
	f.Status = entity.FindingResolved
	return f, nil
}
