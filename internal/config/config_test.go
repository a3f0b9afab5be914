package config

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-engine/internal/domain/loan"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("SWEEP_INTERVAL", "")
	c := Load()

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, time.Hour, c.SweepInterval)
	assert.Equal(t, 5*time.Minute, c.IdempotencyTTL())
	assert.Empty(t, c.KafkaBrokers)
	require.NoError(t, c.Validate())

	p, err := c.Policy()
	require.NoError(t, err)
	assert.Equal(t, loan.DefaultPolicy().NPLThresholdDays, p.NPLThresholdDays)
	assert.Equal(t, "12.5", p.RateFor(loan.TypePersonal).String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SWEEP_INTERVAL", "15m")
	t.Setenv("RATE_PERSONAL", "11.75")
	t.Setenv("RATE_DEFAULT", "9")
	t.Setenv("LOAN_MAX_AMOUNT", "500000")
	t.Setenv("MIN_INVESTMENT", "250")
	t.Setenv("NPL_THRESHOLD_DAYS", "60")
	t.Setenv("REDIS_DB", "3")
	c := Load()

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, c.SweepInterval)
	assert.Equal(t, 3, c.RedisDB)

	p, err := c.Policy()
	require.NoError(t, err)
	assert.True(t, p.RateFor(loan.TypePersonal).Equal(decimal.RequireFromString("11.75")))
	assert.True(t, p.RateFor(loan.TypeBusiness).Equal(decimal.RequireFromString("15")))
	assert.True(t, p.DefaultRate.Equal(decimal.NewFromInt(9)))
	assert.True(t, p.MaxAmount.Equal(decimal.NewFromInt(500000)))
	assert.True(t, p.MinInvestment.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 60, p.NPLThresholdDays)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no mysql host", func(c *Config) { c.MySQLHost = "" }, "missing MySQL"},
		{"bad port", func(c *Config) { c.MySQLPort = "not-a-port" }, "MYSQL_PORT"},
		{"no app port", func(c *Config) { c.AppPort = "" }, "APP_PORT"},
		{"zero sweep", func(c *Config) { c.SweepInterval = 0 }, "SWEEP_INTERVAL"},
		{"bad rate", func(c *Config) { c.Rates[loan.TypeAuto] = "nine" }, "RATE_AUTO"},
		{"negative min investment", func(c *Config) { c.MinInvestment = "-1" }, "MIN_INVESTMENT"},
		{"min above max", func(c *Config) { c.MinAmount = "900"; c.MaxAmount = "800" }, "LOAN_MIN_AMOUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Load()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLHost: "db", MySQLPort: "3306", MySQLDB: "loans", MySQLUser: "u", MySQLPass: "p"}
	assert.Equal(t, "u:p@tcp(db:3306)/loans?parseTime=true&loc=UTC&charset=utf8mb4,utf8", c.MySQLDSN())
}
