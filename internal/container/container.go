package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/config"
	"github.com/wicaksana/ledgeraudit/internal/integration/provider"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
	"github.com/wicaksana/ledgeraudit/pkg/i18n"
	"github.com/wicaksana/ledgeraudit/pkg/mailer"
)

// app-level container to share constructed components across packages.
// Everything is built explicitly in main and set once at startup; nothing
// here is lazily initialized.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client

	mailgunClient *mailer.Mailgun
	rabbitPub     *helpers.RabbitPublisher
	esClient      *elasticsearch.Client

	providerClient *provider.Client
	tokenVault     *provider.TokenVault
	stateSigner    *provider.StateSigner

	catalog *i18n.Catalog
	cookies *helpers.Manager
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }
func SetPGPool(p *pgxpool.Pool)  { pgPool = p }
func GetPGPool() *pgxpool.Pool   { return pgPool }
func SetRedis(r *redis.Client)   { redisClient = r }
func GetRedis() *redis.Client    { return redisClient }
func SetGCS(s *storage.Client)   { gcsClient = s }
func GetGCS() *storage.Client    { return gcsClient }

func SetMailgun(m *mailer.Mailgun)            { mailgunClient = m }
func GetMailgun() *mailer.Mailgun             { return mailgunClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

func SetProvider(c *provider.Client)         { providerClient = c }
func GetProvider() *provider.Client          { return providerClient }
func SetTokenVault(v *provider.TokenVault)   { tokenVault = v }
func GetTokenVault() *provider.TokenVault    { return tokenVault }
func SetStateSigner(s *provider.StateSigner) { stateSigner = s }
func GetStateSigner() *provider.StateSigner  { return stateSigner }

func SetCatalog(c *i18n.Catalog)    { catalog = c }
func GetCatalog() *i18n.Catalog     { return catalog }
func SetCookies(m *helpers.Manager) { cookies = m }
func GetCookies() *helpers.Manager  { return cookies }
