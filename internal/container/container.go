package container

import (
	"database/sql"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-accounts-service/config"
	"github.com/oksasatya/user-accounts-service/pkg/cryptox"
	"github.com/oksasatya/user-accounts-service/pkg/helpers"
	"github.com/oksasatya/user-accounts-service/pkg/metrics"
)

// app-level container to share constructed components across packages.
// Values are set once in main before the router is built.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	sqlDB       *sql.DB
	redisClient *redis.Client
	esClient    *elasticsearch.Client

	jwtManager *helpers.JWTManager
	cipher     *cryptox.Cipher
	collectors *metrics.Metrics
)

func SetConfig(c *config.Config)    { cfg = c }
func GetConfig() *config.Config     { return cfg }
func SetLogger(l *logrus.Logger)    { logger = l }
func GetLogger() *logrus.Logger     { return logger }
func SetDB(db *sql.DB)              { sqlDB = db }
func GetDB() *sql.DB                { return sqlDB }
func SetRedis(r *redis.Client)      { redisClient = r }
func GetRedis() *redis.Client       { return redisClient }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }
func SetJWT(m *helpers.JWTManager)  { jwtManager = m }
func GetJWT() *helpers.JWTManager   { return jwtManager }
func SetCipher(c *cryptox.Cipher)   { cipher = c }
func GetCipher() *cryptox.Cipher    { return cipher }
func SetMetrics(m *metrics.Metrics) { collectors = m }
func GetMetrics() *metrics.Metrics  { return collectors }
