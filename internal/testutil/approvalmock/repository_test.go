package approvalmock

import (
	"context"
	"errors"
	"testing"

	domain "loan-engine/internal/domain/approval"
)

func TestRepo(t *testing.T) {
	ctx := context.Background()
	want := &domain.Approval{ApprovalID: "APR-1", LoanID: 7}

	m := &Repo{
		GetByLoanIDFn: func(_ context.Context, id uint64) (*domain.Approval, error) {
			if id != 7 {
				t.Fatalf("loan id = %d", id)
			}
			return want, nil
		},
	}
	if got, err := m.GetByLoanID(ctx, 7); err != nil || got != want {
		t.Fatalf("GetByLoanID = %+v, %v", got, err)
	}
	if _, err := (&Repo{}).GetByLoanID(ctx, 7); !errors.Is(err, context.Canceled) {
		t.Fatalf("GetByLoanID default: %v", err)
	}
	if err := m.Create(ctx, want); err != nil {
		t.Fatalf("Create default: %v", err)
	}
}
