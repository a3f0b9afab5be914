package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/npl"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestFlags_ActiveAndClear(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewFlagRepository(db)

	if _, err := repo.GetActiveByLoan(ctx, 5); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	f := &npl.Flag{LoanID: 5, DaysOverdue: 92, FlaggedAt: now}
	if err := repo.Create(ctx, f); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetActiveByLoan(ctx, 5)
	if err != nil || got.DaysOverdue != 92 {
		t.Fatalf("GetActiveByLoan = %+v, %v", got, err)
	}

	got.Clear("ops-1", "restructured", now.Add(time.Hour))
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.GetActiveByLoan(ctx, 5); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("cleared flag still active: %v", err)
	}

	var total int64
	db.Model(&npl.Flag{}).Count(&total)
	if total != 1 {
		t.Fatalf("cleared flag should be kept, rows = %d", total)
	}
}

func TestActivities_ListByLoan(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	trail := audit.NewTrail(repo, time.Now())
	for _, a := range []audit.Activity{
		{LoanID: "L1", Action: audit.ActionCreated, ToState: "draft"},
		{LoanID: "L1", Action: audit.ActionPayment, Amount: decimal.NewNullDecimal(decimal.NewFromInt(50))},
		{LoanID: "L2", Action: audit.ActionCreated},
	} {
		if err := trail.Record(ctx, a); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if len(trail.Activities()) != 3 {
		t.Fatalf("trail kept %d activities", len(trail.Activities()))
	}

	got, err := repo.ListByLoan(ctx, "L1")
	if err != nil {
		t.Fatalf("ListByLoan: %v", err)
	}
	if len(got) != 2 || got[0].Action != audit.ActionCreated || got[1].Action != audit.ActionPayment {
		t.Fatalf("unexpected activities: %+v", got)
	}
	if got[0].ActivityID == "" || got[0].CreatedAt.IsZero() {
		t.Fatalf("trail did not fill id/time: %+v", got[0])
	}
	if !got[1].Amount.Valid || !got[1].Amount.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("amount = %+v", got[1].Amount)
	}
}
