// Package dbtest wires use cases onto an in-memory sqlite database.
package dbtest

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"loan-engine/internal/adapter/repository/mysql"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/infrastructure/db"
	"loan-engine/internal/testutil/auditmock"
	"loan-engine/internal/usecase/shared"
	"loan-engine/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a private sqlite database with the full schema on a single
// connection, so transactions on it run one at a time.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", id.NewID32())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// Clock is a settable time source.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t.UTC()} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t.UTC()
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) { c.Set(c.Now().Add(d)) }

// Harness bundles what a use case test needs.
type Harness struct {
	DB        *gorm.DB
	UoW       *mysql.GormUoW
	Clock     *Clock
	Publisher *auditmock.Publisher
	Env       shared.Env
}

func New(t testing.TB, start time.Time) *Harness {
	t.Helper()
	gdb := Open(t)
	h := &Harness{
		DB:        gdb,
		UoW:       mysql.NewGormUoW(gdb),
		Clock:     NewClock(start),
		Publisher: &auditmock.Publisher{},
	}
	h.Env = shared.Env{
		UoW:       h.UoW,
		Policy:    loan.DefaultPolicy(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Publisher: h.Publisher,
		Now:       h.Clock.Now,
	}
	return h
}
