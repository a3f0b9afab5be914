package mysql

import (
	"fmt"
	"testing"
	"time"

	"loan-engine/internal/domain/loan"
	"loan-engine/internal/infrastructure/db"
	"loan-engine/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates a private in-memory sqlite DB with the full schema. One
// connection only: sqlite has no row locks, so serialising on the pool is what
// stands in for SELECT ... FOR UPDATE.
func openTestDB(t *testing.T) *gorm.DB {
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
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func makeLoan(loanID, applicantID string, s loan.State) *loan.Loan {
	return &loan.Loan{
		LoanID:          loanID,
		ApplicantID:     applicantID,
		Type:            loan.TypePersonal,
		RequestedAmount: decimal.NewFromInt(25_000),
		TenureMonths:    24,
		Purpose:         "working capital",
		State:           s,
		StateUpdatedAt:  time.Now().UTC(),
	}
}
