package approval

import (
	"context"
	"errors"
	"fmt"

	domainApproval "loan-engine/internal/domain/approval"
	"loan-engine/internal/domain/audit"
	domainLoan "loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/uow"
	"loan-engine/internal/usecase/shared"
	"loan-engine/pkg/id"

	"gorm.io/gorm"
)

type Usecase struct{ env shared.Env }

func NewUsecase(env shared.Env) *Usecase { return &Usecase{env: env.WithDefaults()} }

func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*DecisionDTO, error) {
	return u.decide(ctx, in.LoanID, in.ReviewerID, audit.ActionApproved, func(l *domainLoan.Loan) (*domainApproval.Approval, error) {
		if err := l.Approve(u.env.Policy, in.ReviewerID, in.Amount, in.AllowOverride, u.env.Now()); err != nil {
			return nil, err
		}
		return &domainApproval.Approval{
			Decision:       domainApproval.DecisionApproved,
			ApprovedAmount: l.ApprovedAmount,
			InterestRate:   l.InterestRate,
			DecidedAt:      *l.ApprovedAt,
		}, nil
	})
}

func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*DecisionDTO, error) {
	return u.decide(ctx, in.LoanID, in.ReviewerID, audit.ActionRejected, func(l *domainLoan.Loan) (*domainApproval.Approval, error) {
		if err := l.Reject(in.ReviewerID, in.Reason, u.env.Now()); err != nil {
			return nil, err
		}
		return &domainApproval.Approval{
			Decision:  domainApproval.DecisionRejected,
			Reason:    l.RejectionReason,
			DecidedAt: *l.RejectedAt,
		}, nil
	})
}

// decide applies the decision to the locked loan and stores the single
// Approval row for it.
func (u *Usecase) decide(ctx context.Context, loanID, reviewerID string, action audit.Action,
	apply func(l *domainLoan.Loan) (*domainApproval.Approval, error)) (*DecisionDTO, error) {
	var (
		dto   *DecisionDTO
		trail *audit.Trail
	)
	err := u.env.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		from := l.State

		// a decision row means the loan was already decided
		if _, err := r.Approvals.GetByLoanID(ctx, l.ID); err == nil {
			if l.State == domainLoan.StateApproved {
				return domainLoan.ErrAlreadyApproved
			}
			return domainLoan.Transitionf("loan %s already decided", l.LoanID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		a, err := apply(l)
		if err != nil {
			return err
		}
		a.ApprovalID = id.NewID32()
		a.LoanID = l.ID
		a.ReviewerID = reviewerID
		if err := r.Approvals.Create(ctx, a); err != nil {
			return fmt.Errorf("store decision: %w", err)
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		trail = audit.NewTrail(r.Activities, u.env.Now())
		act := shared.Transition(l, from, action, reviewerID)
		act.Amount = a.ApprovedAmount
		if a.Reason != nil {
			act.Detail = *a.Reason
		}
		if err := trail.Record(ctx, act); err != nil {
			return err
		}
		dto = toDTO(a, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.env.Publish(ctx, trail.Activities())
	u.env.Logger.InfoContext(ctx, "loan decided", "loan_id", loanID, "decision", dto.Decision, "reviewer_id", reviewerID)
	return dto, nil
}

func toDTO(a *domainApproval.Approval, l *domainLoan.Loan) *DecisionDTO {
	dto := &DecisionDTO{
		ApprovalID: a.ApprovalID,
		LoanID:     l.LoanID,
		Decision:   string(a.Decision),
		ReviewerID: a.ReviewerID,
		Reason:     a.Reason,
		DecidedAt:  a.DecidedAt,
		Loan:       shared.ToLoanDTO(l),
	}
	if a.ApprovedAmount.Valid {
		v := a.ApprovedAmount.Decimal
		dto.ApprovedAmount = &v
	}
	if a.InterestRate.Valid {
		v := a.InterestRate.Decimal
		dto.InterestRate = &v
	}
	return dto
}
