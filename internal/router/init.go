package router

import (
	"github.com/wicaksana/ledgeraudit/internal/application"
	"github.com/wicaksana/ledgeraudit/internal/container"
	pginfra "github.com/wicaksana/ledgeraudit/internal/infrastructure/postgres"
	handlers "github.com/wicaksana/ledgeraudit/internal/interface/http"
	"github.com/wicaksana/ledgeraudit/internal/router/modules"
)

// Services are the application-layer singletons shared between the router
// modules and the request gate.
type Services struct {
	Auth        *application.AuthService
	Connections *application.ConnectionService
	Journals    *application.JournalService
	Audit       *application.AuditService
	Reports     *application.ReportService
}

// BuildServices wires repositories and services from the container
// singletons. Call once at startup, after the container is populated.
func BuildServices() *Services {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(pool)
	sessions := pginfra.NewSessionRepository(pool)
	companies := pginfra.NewCompanyRepository(pool)
	journals := pginfra.NewJournalRepository(pool)
	findings := pginfra.NewFindingRepository(pool)
	auditLogs := pginfra.NewAuditLogRepository(pool)
	connections := pginfra.NewConnectionRepository(pool)

	auth := application.NewAuthService(users, sessions, auditLogs,
		container.GetRedis(), logger, cfg.SessionTTL)

	conns := application.NewConnectionService(companies, connections,
		container.GetProvider(), container.GetTokenVault(), container.GetStateSigner(),
		container.GetRedis(), logger)

	var queue application.JobPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		queue = pub
	}
	journalSvc := application.NewJournalService(companies, journals, findings,
		conns, container.GetProvider(), queue,
		container.GetES(), cfg.ESJournalsIndex,
		container.GetRedis(), logger, cfg.SyncPageSize)

	audit := application.NewAuditService(journals, findings, nil, logger)
	reports := application.NewReportService(journals, container.GetGCS(), cfg.GCSBucket, logger)

	return &Services{
		Auth:        auth,
		Connections: conns,
		Journals:    journalSvc,
		Audit:       audit,
		Reports:     reports,
	}
}

// InitModules registers every feature module with the router registry.
func InitModules(r *Registry, s *Services) error {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()
	cookies := container.GetCookies()

	companies := pginfra.NewCompanyRepository(pool)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(s.Auth, cookies, logger)))
	r.Add(modules.NewSystemModule(handlers.NewHealthHandler(pool, container.GetRedis())))
	r.Add(modules.NewCompanyModule(handlers.NewCompanyHandler(companies, s.Journals, logger)))
	r.Add(modules.NewConnectModule(handlers.NewConnectionHandler(s.Connections, cfg.ProviderStateTTL, logger)))
	r.Add(modules.NewJournalModule(handlers.NewJournalHandler(s.Journals, logger)))
	r.Add(modules.NewFindingModule(handlers.NewFindingHandler(s.Audit, logger)))
	r.Add(modules.NewDashboardModule(
		handlers.NewDashboardHandler(s.Journals, logger),
		handlers.NewReportHandler(s.Reports, logger),
	))

	pages, err := handlers.NewPageHandler(container.GetCatalog(), logger)
	if err != nil {
		return err
	}
	r.AddPage(modules.NewPagesModule(pages))
	return nil
}
