package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"

	repo "github.com/wicaksana/ledgeraudit/internal/domain/repository"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
)

// exportBatchSize is how many entries each listing page pulls while
// streaming an export.
const exportBatchSize = 500

// ReportService writes journal exports to object storage.
type ReportService struct {
	Journals repo.JournalRepository
	GCS      *storage.Client
	Bucket   string
	Logger   *logrus.Logger
}

func NewReportService(journals repo.JournalRepository, gcs *storage.Client, bucket string, logger *logrus.Logger) *ReportService {
	return &ReportService{Journals: journals, GCS: gcs, Bucket: bucket, Logger: logger}
}

// ExportResult describes a finished export.
type ExportResult struct {
	URL     string `json:"url"`
	Entries int    `json:"entries"`
	Lines   int    `json:"lines"`
}

// ExportJournalCSV renders every line of the company's journal in the date
// range as CSV and uploads it. One CSV row per journal line.
func (s *ReportService) ExportJournalCSV(ctx context.Context, companyID string, from, to time.Time) (*ExportResult, error) {
	if s.GCS == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"entry_id", "entry_date", "description", "line_no", "account_code", "account_name", "side", "amount"}); err != nil {
		return nil, err
	}

	res := &ExportResult{}
	offset := 0
	for {
		entries, err := s.Journals.List(ctx, repo.JournalFilter{
			CompanyID: companyID,
			From:      from,
			To:        to,
			Limit:     exportBatchSize,
			Offset:    offset,
		})
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			res.Entries++
			for _, l := range e.Lines {
				res.Lines++
				rec := []string{
					e.ExternalID,
					e.EntryDate.Format("2006-01-02"),
					e.Description,
					strconv.Itoa(l.LineNo),
					l.AccountCode,
					l.AccountName,
					string(l.Side),
					strconv.FormatInt(l.Amount, 10),
				}
				if err := w.Write(rec); err != nil {
					return nil, err
				}
			}
		}

		if len(entries) < exportBatchSize {
			break
		}
		offset += exportBatchSize
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	object := fmt.Sprintf("exports/%s/journal-%s.csv", companyID, time.Now().Format("20060102-150405"))
	url, err := helpers.UploadObject(ctx, s.GCS, s.Bucket, object, "text/csv", &buf)
	if err != nil {
		return nil, err
	}
	res.URL = url

	if s.Logger != nil {
		s.Logger.WithField("company_id", companyID).WithField("entries", res.Entries).Info("journal export uploaded")
	}
	return res, nil
}
