package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/config"
	"github.com/wicaksana/ledgeraudit/internal/application"
	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	pginfra "github.com/wicaksana/ledgeraudit/internal/infrastructure/postgres"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
	"github.com/wicaksana/ledgeraudit/pkg/mailer"
	"github.com/wicaksana/ledgeraudit/pkg/mailer/templates"
)

// The audit worker drains the check queue: for each job it loads the entry,
// runs the rule checks, stores the findings, and mails an alert when an
// error-severity finding fires.

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-auditworker", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	journals := pginfra.NewJournalRepository(pool)
	findings := pginfra.NewFindingRepository(pool)
	companies := pginfra.NewCompanyRepository(pool)
	audit := application.NewAuditService(journals, findings, nil, logger)

	var mg *mailer.Mailgun
	if cfg.MailSendEnabled && cfg.MailgunAPIKey != "" && cfg.AlertRecipient != "" {
		mg = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	}

	conn, ch, msgs, err := helpers.OpenConsumer(cfg.RabbitMQURL, cfg.RabbitMQAuditQueue, 8)
	if err != nil {
		log.Fatalf("failed to open rabbitmq consumer: %v", err)
	}
	defer func() { _ = ch.Close(); _ = conn.Close() }()

	logger.Infof("audit worker consuming %s", cfg.RabbitMQAuditQueue)
	for {
		select {
		case <-ctx.Done():
			logger.Info("audit worker shutting down")
			return
		case d, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			handle(ctx, d, audit, companies, mg, cfg, logger)
		}
	}
}

func handle(ctx context.Context, d amqp.Delivery, audit *application.AuditService, companies *pginfra.CompanyRepository, mg *mailer.Mailgun, cfg *config.Config, logger *logrus.Logger) {
	var job application.CheckJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.WithError(err).Warn("dropping malformed check job")
		_ = d.Nack(false, false)
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := audit.RunChecks(jobCtx, job.EntryID)
	if err != nil {
		logger.WithError(err).WithField("entry_id", job.EntryID).Error("check run failed")
		// requeue once; a redelivered failure is dropped
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)

	if mg != nil && hasError(result) {
		if err := sendAlert(jobCtx, mg, audit, companies, job, result, cfg); err != nil {
			logger.WithError(err).WithField("entry_id", job.EntryID).Warn("alert mail failed")
		}
	}
}

func hasError(findings []*entity.Finding) bool {
	for _, f := range findings {
		if f.Severity == entity.SeverityError {
			return true
		}
	}
	return false
}

func sendAlert(ctx context.Context, mg *mailer.Mailgun, audit *application.AuditService, companies *pginfra.CompanyRepository, job application.CheckJob, findings []*entity.Finding, cfg *config.Config) error {
	companyName := job.CompanyID
	if company, err := companies.GetByID(ctx, job.CompanyID); err == nil {
		companyName = company.Name
	}

	data := templates.AlertData{
		CompanyName:  companyName,
		EntryID:      job.EntryID,
		DashboardURL: fmt.Sprintf("%s/%s/dashboard", cfg.BaseURL, cfg.DefaultLocale),
	}
	if entry, err := audit.Journals.GetByID(ctx, job.EntryID); err == nil {
		data.EntryDate = entry.EntryDate.Format("2006-01-02")
		data.Description = entry.Description
	}
	for _, f := range findings {
		data.Findings = append(data.Findings, templates.AlertFinding{
			Rule:     f.Rule,
			Severity: string(f.Severity),
			Message:  f.Message,
		})
	}

	subject, text, html, err := templates.Render("alert", data)
	if err != nil {
		return err
	}
	return mg.Send(ctx, cfg.AlertRecipient, subject, text, html)
}
