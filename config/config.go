package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`

	DBDriver       string `json:"db_driver"`
	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`
	SQLitePath     string `json:"sqlite_path"`

	InviteSecret   string        `json:"-"`
	InviteTTL      time.Duration `json:"invite_ttl"`
	BcryptCost     int           `json:"bcrypt_cost"`
	LoginRateLimit int           `json:"login_rate_limit"`

	Redis       RedisConfig `json:"redis"`
	SentryDSN   string      `json:"-"`
	CORSOrigins []string    `json:"cors_origins"`
	LogLevel    string      `json:"log_level"`
	LogFormat   string      `json:"log_format"`

	OrderCompactionInterval time.Duration `json:"order_compaction_interval"`
}

func init() {
	// A missing .env file is fine; the process environment wins anyway.
	_ = godotenv.Load()
}

// LoadConfig reads the environment into AppConfig and validates it.
func LoadConfig() error {
	cfg, err := FromEnv()
	if err != nil {
		return err
	}
	AppConfig = cfg
	logConfig()
	return nil
}

// FromEnv builds a Config from environment variables without touching
// package state.
func FromEnv() (Config, error) {
	cfg := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),

		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "taskboard"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		SQLitePath:     getEnv("SQLITE_PATH", "taskboard.db"),

		InviteSecret:   getEnv("INVITE_SECRET", ""),
		InviteTTL:      getEnvAsDuration("INVITE_TTL", 72*time.Hour),
		BcryptCost:     getEnvAsInt("BCRYPT_COST", 10),
		LoginRateLimit: getEnvAsInt("LOGIN_RATE_LIMIT", 10),

		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),

		OrderCompactionInterval: getEnvAsDuration("ORDER_COMPACTION_INTERVAL", 0),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.InviteSecret == "" {
		return fmt.Errorf("INVITE_SECRET is required")
	}
	if c.Environment == "production" && len(c.InviteSecret) < 32 {
		return fmt.Errorf("INVITE_SECRET must be at least 32 characters in production")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}
	return nil
}

// ConnectDB opens AppConfig's database into DB and migrates the schema.
func ConnectDB() error {
	logrus.Info("Attempting to connect to database...")

	db, err := Open(AppConfig)
	if err != nil {
		return err
	}

	logrus.Info("Successfully connected to the database")
	if err := MigrateDB(db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	logrus.Info("Database migration completed")

	DB = db
	return nil
}

// Open returns a pooled *gorm.DB for cfg. The schema is not touched.
func Open(cfg Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		logrus.WithField("path", cfg.SQLitePath).Info("Using sqlite database")
		db, err = gorm.Open(sqlite.Open(SQLiteDSN(cfg.SQLitePath)), gormCfg)
	default:
		dsn := PostgresDSN(cfg)
		logrus.WithField("dsn", maskPassword(dsn)).Info("Using postgres database")
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB instance: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// One writer keeps sqlite's locking out of the way of request handlers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(30 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// PostgresDSN renders the libpq keyword/value connection string.
func PostgresDSN(cfg Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBSSLMode,
	)
}

// SQLiteDSN enables foreign keys so ON DELETE CASCADE fires.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// MigrateDB creates or updates every table. Parents come before children so
// the cascading foreign keys can be created.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Team{},
		&models.User{},
		&models.Board{},
		&models.Column{},
		&models.Task{},
		&models.Subtask{},
	)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	logrus.WithFields(logrus.Fields{
		"environment":      AppConfig.Environment,
		"server_port":      AppConfig.ServerPort,
		"db_driver":        AppConfig.DBDriver,
		"database":         fmt.Sprintf("%s@%s:%s/%s", AppConfig.DBUser, AppConfig.DBHost, AppConfig.DBPort, AppConfig.DBName),
		"redis_enabled":    AppConfig.Redis.Enabled,
		"sentry_enabled":   AppConfig.SentryDSN != "",
		"order_compaction": AppConfig.OrderCompactionInterval.String(),
	}).Info("Loaded configuration")
}
