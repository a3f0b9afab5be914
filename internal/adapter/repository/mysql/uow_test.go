package mysql

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"loan-engine/internal/domain/allocation"
	approvalDomain "loan-engine/internal/domain/approval"
	loanDomain "loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/uow"
	"loan-engine/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func makeApproval(apprID string, loanNumericID uint64, when time.Time) *approvalDomain.Approval {
	return &approvalDomain.Approval{
		ApprovalID:     apprID,
		LoanID:         loanNumericID,
		ReviewerID:     "rev-1",
		Decision:       approvalDomain.DecisionApproved,
		ApprovedAmount: decimal.NewNullDecimal(decimal.NewFromInt(25_000)),
		InterestRate:   decimal.NewNullDecimal(decimal.RequireFromString("12.5")),
		DecidedAt:      when.UTC(),
	}
}

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	loanID, apprID := id.NewID32(), id.NewID32()
	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		l := makeLoan(loanID, id.NewID32(), loanDomain.StateApproved)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return r.Approvals.Create(ctx, makeApproval(apprID, l.ID, time.Now()))
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	reads := guow.Repos()
	l, err := reads.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
	a, err := reads.Approvals.GetByLoanID(ctx, l.ID)
	if err != nil || a.ApprovalID != apprID {
		t.Fatalf("approval not visible after commit: %+v %v", a, err)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	sentinel := errors.New("boom")
	loanID, apprID := id.NewID32(), id.NewID32()
	var loanNumericID uint64

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		l := makeLoan(loanID, id.NewID32(), loanDomain.StateApproved)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		loanNumericID = l.ID
		if err := r.Approvals.Create(ctx, makeApproval(apprID, l.ID, time.Now())); err != nil {
			return err
		}
		return sentinel // force rollback
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v", err)
	}

	reads := guow.Repos()
	if _, err := reads.Loans.GetByLoanID(ctx, loanID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected loan not found after rollback, got %v", err)
	}
	if _, err := reads.Approvals.GetByLoanID(ctx, loanNumericID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected approval not found after rollback, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	loanID := id.NewID32()
	if err := NewLoanRepository(db).Create(ctx, makeLoan(loanID, id.NewID32(), loanDomain.StateSubmitted)); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	sentinel := errors.New("stop")
	_ = guow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if l.LoanID != loanID || l.State != loanDomain.StateSubmitted {
			t.Fatalf("unexpected loan passed to fn: %+v", l)
		}
		l.State = loanDomain.StateApproved
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return sentinel
	})

	got, err := guow.Repos().Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("post-rollback GetByLoanID: %v", err)
	}
	if got.State != loanDomain.StateSubmitted {
		t.Fatalf("expected submitted after rollback, got %s", got.State)
	}
}

func TestGormUoW_WithinLoanTx_LoanNotFound(t *testing.T) {
	db := openTestDB(t)
	guow := NewGormUoW(db)

	err := guow.WithinLoanTx(context.Background(), "nope", func(uow.Repos, *loanDomain.Loan) error {
		t.Fatalf("callback should not be called when loan missing")
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// Concurrent writers on one loan run one after another, so a read-check-write
// inside the callback never sees stale funding.
func TestGormUoW_WithinLoanTx_Serialises(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	l := makeLoan(id.NewID32(), id.NewID32(), loanDomain.StateApproved)
	l.ApprovedAmount = decimal.NewNullDecimal(decimal.NewFromInt(1000))
	if err := NewLoanRepository(db).Create(ctx, l); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- guow.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, locked *loanDomain.Loan) error {
				existing, err := r.Allocations.ListByLoan(ctx, locked.ID)
				if err != nil {
					return err
				}
				amt := decimal.NewFromInt(300)
				if err := allocation.CheckCapacity(existing, amt, locked.ApprovedAmount.Decimal); err != nil {
					return err
				}
				return r.Allocations.Create(ctx, &allocation.Allocation{
					AllocationID:   id.NewID32(),
					InvestorID:     id.NewID32(),
					LoanID:         locked.ID,
					Amount:         amt,
					ExpectedReturn: decimal.Zero,
					ActualReturn:   decimal.Zero,
					Status:         allocation.StatusActive,
				})
			})
		}()
	}
	wg.Wait()
	close(errs)

	ok, over := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, loanDomain.ErrOverallocation):
			over++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 3 || over != 5 {
		t.Fatalf("ok=%d overallocated=%d", ok, over)
	}
	items, _ := guow.Repos().Allocations.ListByLoan(ctx, l.ID)
	if !allocation.Funded(items).Equal(decimal.NewFromInt(900)) {
		t.Fatalf("funded = %s", allocation.Funded(items))
	}
}
