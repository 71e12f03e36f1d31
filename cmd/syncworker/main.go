package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/config"
	"github.com/wicaksana/ledgeraudit/internal/application"
	pginfra "github.com/wicaksana/ledgeraudit/internal/infrastructure/postgres"
	"github.com/wicaksana/ledgeraudit/internal/integration/provider"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
)

// The sync worker walks every connected company on an interval, pulling new
// journal entries from the provider. Once a day it also sweeps expired
// sessions.

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-syncworker", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	esClient, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("failed to init elasticsearch client: %v", err)
	}

	rabbitPub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQAuditQueue)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable, audit checks will not be enqueued")
		rabbitPub = nil
	}
	defer rabbitPub.Close()

	vault, err := provider.NewTokenVault(cfg.TokenVaultKey)
	if err != nil {
		log.Fatalf("invalid token vault key: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	sessions := pginfra.NewSessionRepository(pool)
	companies := pginfra.NewCompanyRepository(pool)
	journals := pginfra.NewJournalRepository(pool)
	findings := pginfra.NewFindingRepository(pool)
	auditLogs := pginfra.NewAuditLogRepository(pool)
	connections := pginfra.NewConnectionRepository(pool)

	client := provider.NewClient(cfg.ProviderBaseURL, cfg.ProviderClientID, cfg.ProviderClientSecret, cfg.ProviderRedirectURL)
	states := provider.NewStateSigner(cfg.ProviderStateSecret, cfg.ProviderStateTTL)

	conns := application.NewConnectionService(companies, connections, client, vault, states, rdb, logger)

	var queue application.JobPublisher
	if rabbitPub != nil {
		queue = rabbitPub
	}
	journalSvc := application.NewJournalService(companies, journals, findings,
		conns, client, queue, esClient, cfg.ESJournalsIndex, rdb, logger, cfg.SyncPageSize)

	auth := application.NewAuthService(users, sessions, auditLogs, rdb, logger, cfg.SessionTTL)

	logger.Infof("sync worker starting, interval %s, concurrency %d", cfg.SyncInterval, cfg.SyncConcurrency)
	runLoop(ctx, cfg, journalSvc, auth, companies, logger)
	logger.Info("sync worker shutting down")
}

func runLoop(ctx context.Context, cfg *config.Config, journalSvc *application.JournalService, auth *application.AuthService, companies *pginfra.CompanyRepository, logger *logrus.Logger) {
	syncTicker := time.NewTicker(cfg.SyncInterval)
	defer syncTicker.Stop()
	sweepTicker := time.NewTicker(24 * time.Hour)
	defer sweepTicker.Stop()

	// one pass right away so a fresh deploy does not wait a full interval
	syncAll(ctx, cfg, journalSvc, companies, logger)

	for {
		select {
		case <-ctx.Done():
			return
		case <-syncTicker.C:
			syncAll(ctx, cfg, journalSvc, companies, logger)
		case <-sweepTicker.C:
			n, err := auth.Sweep(ctx)
			if err != nil {
				logger.WithError(err).Warn("session sweep failed")
				continue
			}
			logger.Infof("session sweep removed %d rows", n)
		}
	}
}

// syncAll runs one sync pass over every connected company, bounded by a
// semaphore at the configured concurrency.
func syncAll(ctx context.Context, cfg *config.Config, journalSvc *application.JournalService, companies *pginfra.CompanyRepository, logger *logrus.Logger) {
	list, err := companies.ListConnected(ctx)
	if err != nil {
		logger.WithError(err).Error("could not list connected companies")
		return
	}

	sem := make(chan struct{}, cfg.SyncConcurrency)
	done := make(chan struct{}, len(list))
	started := 0
	for _, company := range list {
		select {
		case <-ctx.Done():
			return
		case sem <- struct{}{}:
		}
		started++
		go func(id, name string) {
			defer func() { <-sem; done <- struct{}{} }()
			res, err := journalSvc.SyncCompany(ctx, id)
			if err != nil {
				logger.WithError(err).WithField("company", name).Warn("company sync failed")
				return
			}
			logger.WithField("company", name).
				WithField("fetched", res.Fetched).
				WithField("upserted", res.Upserted).
				Info("company synced")
		}(company.ID, company.Name)
	}
	for i := 0; i < started; i++ {
		<-done
	}
}
