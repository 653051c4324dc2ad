package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/models"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("INVITE_SECRET", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.InviteTTL)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.False(t, cfg.Redis.Enabled)
	assert.Zero(t, cfg.OrderCompactionInterval)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("INVITE_SECRET", "secret")
	t.Setenv("INVITE_TTL", "1h")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ORDER_COMPACTION_INTERVAL", "5m")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.InviteTTL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Minute, cfg.OrderCompactionInterval)
}

func TestValidate(t *testing.T) {
	valid := Config{DBDriver: "sqlite", SQLitePath: "x.db", InviteSecret: "s", BcryptCost: 10, LoginRateLimit: 1}
	require.NoError(t, valid.Validate())

	tests := map[string]func(c *Config){
		"unknown driver":      func(c *Config) { c.DBDriver = "mysql" },
		"postgres no pass":    func(c *Config) { c.DBDriver = "postgres" },
		"no invite secret":    func(c *Config) { c.InviteSecret = "" },
		"short prod secret":   func(c *Config) { c.Environment = "production" },
		"bcrypt out of range": func(c *Config) { c.BcryptCost = 40 },
		"no rate limit":       func(c *Config) { c.LoginRateLimit = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSNs(t *testing.T) {
	assert.Equal(t, "app.db?_pragma=foreign_keys(1)", SQLiteDSN("app.db"))
	assert.Equal(t, "file::memory:?cache=shared&_pragma=foreign_keys(1)", SQLiteDSN("file::memory:?cache=shared"))

	dsn := PostgresDSN(Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "hunter2", DBName: "n", DBSSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=hunter2 dbname=n sslmode=disable", dsn)
	assert.NotContains(t, maskPassword(dsn), "hunter2")
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := Open(Config{DBDriver: "sqlite", SQLitePath: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, MigrateDB(db))

	for _, model := range []any{&models.Team{}, &models.User{}, &models.Board{}, &models.Column{}, &models.Task{}, &models.Subtask{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestNewRedisClientDisabled(t *testing.T) {
	assert.Nil(t, NewRedisClient(RedisConfig{}))
	client := NewRedisClient(RedisConfig{Enabled: true, Address: "localhost:6379"})
	require.NotNil(t, client)
	_ = client.Close()
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(Config{LogLevel: "debug", LogFormat: "json"}))
	assert.Error(t, InitLogger(Config{LogLevel: "loud"}))
	assert.NoError(t, InitSentry(Config{}))
}
