package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/loan"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	KafkaBrokers    []string
	KafkaAuditTopic string

	LogLevel   string
	LogFormat  string
	DBLogLevel string

	SweepInterval time.Duration

	// policy overrides; zero values keep loan.DefaultPolicy
	Rates            map[loan.Type]string
	DefaultRate      string
	MinAmount        string
	MaxAmount        string
	MinTenureMonths  int
	MaxTenureMonths  int
	MinInvestment    string
	NPLThresholdDays int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("config: ignoring non-integer value", "key", k, "value", v)
	}
	return d
}

// Load reads the environment, after a .env file if one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config: .env not loaded", "error", err)
	}

	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "loans"),
		MySQLUser: getenv("MYSQL_USER", "loans"),
		MySQLPass: getenv("MYSQL_PASS", "loans"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		KafkaAuditTopic: getenv("KAFKA_AUDIT_TOPIC", "loan.activities"),

		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogFormat:  getenv("LOG_FORMAT", "json"),
		DBLogLevel: getenv("DB_LOG_LEVEL", "warn"),

		SweepInterval: time.Hour,

		Rates:            map[loan.Type]string{},
		DefaultRate:      os.Getenv("RATE_DEFAULT"),
		MinAmount:        os.Getenv("LOAN_MIN_AMOUNT"),
		MaxAmount:        os.Getenv("LOAN_MAX_AMOUNT"),
		MinTenureMonths:  getint("LOAN_MIN_TENURE_MONTHS", 0),
		MaxTenureMonths:  getint("LOAN_MAX_TENURE_MONTHS", 0),
		MinInvestment:    os.Getenv("MIN_INVESTMENT"),
		NPLThresholdDays: getint("NPL_THRESHOLD_DAYS", 0),
	}
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			c.KafkaBrokers = append(c.KafkaBrokers, b)
		}
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SweepInterval = d
		} else {
			slog.Warn("config: ignoring bad SWEEP_INTERVAL", "value", v, "error", err)
		}
	}
	// RATE_PERSONAL, RATE_BUSINESS, ...
	for _, t := range []loan.Type{loan.TypePersonal, loan.TypeBusiness, loan.TypeMortgage, loan.TypeAuto, loan.TypeEducation} {
		if v := os.Getenv("RATE_" + strings.ToUpper(string(t))); v != "" {
			c.Rates[t] = v
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy applies the overrides on top of loan.DefaultPolicy.
func (c *Config) Policy() (loan.Policy, error) {
	p := loan.DefaultPolicy()
	for t, raw := range c.Rates {
		r, err := parseNonNegative("RATE_"+strings.ToUpper(string(t)), raw)
		if err != nil {
			return p, err
		}
		p.Rates[t] = r
	}
	for _, o := range []struct {
		key string
		raw string
		dst *decimal.Decimal
	}{
		{"RATE_DEFAULT", c.DefaultRate, &p.DefaultRate},
		{"LOAN_MIN_AMOUNT", c.MinAmount, &p.MinAmount},
		{"LOAN_MAX_AMOUNT", c.MaxAmount, &p.MaxAmount},
		{"MIN_INVESTMENT", c.MinInvestment, &p.MinInvestment},
	} {
		if o.raw == "" {
			continue
		}
		v, err := parseNonNegative(o.key, o.raw)
		if err != nil {
			return p, err
		}
		*o.dst = v
	}
	if c.MinTenureMonths > 0 {
		p.MinTenureMonths = c.MinTenureMonths
	}
	if c.MaxTenureMonths > 0 {
		p.MaxTenureMonths = c.MaxTenureMonths
	}
	if c.NPLThresholdDays > 0 {
		p.NPLThresholdDays = c.NPLThresholdDays
	}
	if p.MaxAmount.IsPositive() && p.MinAmount.GreaterThan(p.MaxAmount) {
		return p, fmt.Errorf("LOAN_MIN_AMOUNT %s above LOAN_MAX_AMOUNT %s", p.MinAmount, p.MaxAmount)
	}
	if p.MaxTenureMonths < p.MinTenureMonths {
		return p, fmt.Errorf("LOAN_MIN_TENURE_MONTHS %d above LOAN_MAX_TENURE_MONTHS %d", p.MinTenureMonths, p.MaxTenureMonths)
	}
	return p, nil
}

func parseNonNegative(key, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative, got %s", key, raw)
	}
	return v, nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
