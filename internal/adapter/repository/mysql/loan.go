package mysql

import (
	"context"

	loanDomain "loan-engine/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

// GetByLoanIDForUpdate issues SELECT ... FOR UPDATE on mysql. sqlite has no
// row locks and gorm drops the clause there.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

// GetPendingLoanByApplicantID returns the most recent draft, submitted or
// under-review loan of the applicant.
func (r *LoanRepository) GetPendingLoanByApplicantID(ctx context.Context, applicantID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("applicant_id = ? AND state IN ?", applicantID, []loanDomain.State{
			loanDomain.StateDraft, loanDomain.StateSubmitted, loanDomain.StateUnderReview,
		}).
		Order("state_updated_at DESC, id DESC").
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListIDsByStates(ctx context.Context, states ...loanDomain.State) ([]string, error) {
	var ids []string
	if len(states) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("state IN ?", states).
		Order("id ASC").
		Pluck("loan_id", &ids).Error
	return ids, err
}
