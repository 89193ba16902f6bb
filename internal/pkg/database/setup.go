package database

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/CreditFox/app/models"
	"github.com/ManuelReschke/CreditFox/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config describes how to reach the ledger database.
type Config struct {
	Driver      string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
	MaxRetries  int
	RetryDelay  time.Duration
}

// ConfigFromEnv reads DB_* variables.
func ConfigFromEnv() Config {
	driver := strings.ToLower(strings.TrimSpace(env.GetEnv("DB_DRIVER", DriverMySQL)))
	defaultPort := "3306"
	if driver == DriverPostgres {
		defaultPort = "5432"
	}
	return Config{
		Driver:      driver,
		Host:        env.GetEnv("DB_HOST", "127.0.0.1"),
		Port:        env.GetEnv("DB_PORT", defaultPort),
		User:        env.GetEnv("DB_USER", ""),
		Password:    env.GetEnv("DB_PASSWORD", ""),
		Name:        env.GetEnv("DB_NAME", ""),
		SSLMode:     env.GetEnv("DB_SSLMODE", "disable"),
		AutoMigrate: env.GetEnvBool("DB_AUTO_MIGRATE", false),
		MaxRetries:  env.GetEnvInt("DB_CONNECT_RETRIES", maxRetries),
		RetryDelay:  env.GetEnvDuration("DB_CONNECT_RETRY_DELAY", retryDelay),
	}
}

// DSN renders the driver specific data source name. Credentials are escaped
// by the respective formatter, so any character is allowed in them.
func (c Config) DSN() string {
	if c.Driver == DriverPostgres {
		return c.postgresURL(url.Values{"sslmode": {c.SSLMode}, "TimeZone": {"UTC"}})
	}
	cfg := c.mysqlConfig(c.User, c.Password)
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// MigrateURL renders the URL golang-migrate expects for the same database.
func (c Config) MigrateURL() string {
	if c.Driver == DriverPostgres {
		return c.postgresURL(url.Values{"sslmode": {c.SSLMode}})
	}
	// golang-migrate query-unescapes user and password after parsing the DSN.
	cfg := c.mysqlConfig(url.QueryEscape(c.User), url.QueryEscape(c.Password))
	cfg.MultiStatements = true
	return "mysql://" + cfg.FormatDSN()
}

func (c Config) postgresURL(query url.Values) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (c Config) mysqlConfig(user, password string) *gomysql.Config {
	cfg := gomysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, c.Port)
	cfg.DBName = c.Name
	return cfg
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverMySQL, "":
		return mysql.New(mysql.Config{
			DSN:                       c.DSN(), // data source name
			DefaultStringSize:         256,     // default size for string fields
			SkipInitializeWithVersion: false,   // auto configure based on currently MySQL version
		}), nil
	case DriverPostgres:
		return postgres.New(postgres.Config{DSN: c.DSN()}), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
}

// SetupDatabase opens the ledger database, retrying while the server comes up.
func SetupDatabase(cfg Config, log *slog.Logger) (*gorm.DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 1
	}

	var db *gorm.DB
	for i := 0; i < retries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Warn("failed to connect to database", "attempt", i+1, "max_attempts", retries, "error", err)
		if i < retries-1 {
			time.Sleep(cfg.RetryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", cfg.Driver, err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
			&models.CreditBalance{},
			&models.ProcessedPaymentEvent{},
			&models.APIKey{},
		); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return db, nil
}

// Ping checks the underlying connection pool.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
