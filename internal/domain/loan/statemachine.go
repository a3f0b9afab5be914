package loan

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// transitions lists every legal (from -> to) edge. Anything not here fails
// with ErrInvalidTransition.
var transitions = map[State][]State{
	StateDraft:       {StateSubmitted},
	StateSubmitted:   {StateUnderReview, StateApproved, StateRejected},
	StateUnderReview: {StateApproved, StateRejected},
	StateApproved:    {StateDisbursed},
	StateDisbursed:   {StateRepaying, StateCompleted, StateDefaulted},
	StateRepaying:    {StateCompleted, StateDefaulted},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// All transition methods validate first and mutate last, so a returned error
// leaves the loan exactly as it was.

func (l *Loan) Submit(p Policy, now time.Time) error {
	if l.State != StateDraft {
		return Transitionf("cannot submit loan in state %s", l.State)
	}
	if !l.Type.Valid() {
		return Validationf("unknown loan type %q", l.Type)
	}
	if strings.TrimSpace(l.Purpose) == "" {
		return Validationf("purpose is required")
	}
	if err := p.CheckTerms(l.RequestedAmount, l.TenureMonths); err != nil {
		return err
	}
	at := l.stamp(now)
	l.SubmittedAt = &at
	l.moveTo(StateSubmitted, at)
	return nil
}

// StartReview moves a submitted loan under review. It reports changed=false
// when the loan is already under review.
func (l *Loan) StartReview(reviewerID string, now time.Time) (changed bool, err error) {
	if l.State == StateUnderReview {
		return false, nil
	}
	if l.State != StateSubmitted {
		return false, Transitionf("cannot start review of loan in state %s", l.State)
	}
	if strings.TrimSpace(reviewerID) == "" {
		return false, Validationf("reviewer id is required")
	}
	at := l.stamp(now)
	l.ReviewedAt = &at
	l.ReviewerID = reviewerID
	l.moveTo(StateUnderReview, at)
	return true, nil
}

// Approve sets the approved amount (requested amount when nil) and the
// interest rate from the policy table. allowOverride lets the reviewer approve
// more than was requested.
func (l *Loan) Approve(p Policy, reviewerID string, amount *decimal.Decimal, allowOverride bool, now time.Time) error {
	if l.State == StateApproved {
		return ErrAlreadyApproved
	}
	if !CanTransition(l.State, StateApproved) {
		return Transitionf("cannot approve loan in state %s", l.State)
	}
	if l.ApprovedAmount.Valid || l.InterestRate.Valid {
		return ErrAlreadyApproved
	}
	if strings.TrimSpace(reviewerID) == "" {
		return Validationf("reviewer id is required")
	}
	approved := l.RequestedAmount
	if amount != nil {
		approved = *amount
	}
	if !approved.IsPositive() {
		return Validationf("approved amount must be positive")
	}
	if approved.GreaterThan(l.RequestedAmount) && !allowOverride {
		return Validationf("approved amount %s exceeds requested %s", approved, l.RequestedAmount)
	}
	at := l.stamp(now)
	l.ApprovedAmount = decimal.NewNullDecimal(approved.Round(2))
	l.InterestRate = decimal.NewNullDecimal(p.RateFor(l.Type))
	l.ReviewerID = reviewerID
	l.ApprovedAt = &at
	l.moveTo(StateApproved, at)
	return nil
}

func (l *Loan) Reject(reviewerID, reason string, now time.Time) error {
	if !CanTransition(l.State, StateRejected) {
		return Transitionf("cannot reject loan in state %s", l.State)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Validationf("rejection reason is required")
	}
	if strings.TrimSpace(reviewerID) == "" {
		return Validationf("reviewer id is required")
	}
	at := l.stamp(now)
	l.RejectionReason = &reason
	l.ReviewerID = reviewerID
	l.RejectedAt = &at
	l.moveTo(StateRejected, at)
	return nil
}

func (l *Loan) Disburse(now time.Time) error {
	if l.State != StateApproved {
		return Transitionf("cannot disburse loan in state %s", l.State)
	}
	if !l.ApprovedAmount.Valid || !l.InterestRate.Valid {
		return Transitionf("loan has no approved terms")
	}
	at := l.stamp(now)
	l.DisbursedAt = &at
	l.moveTo(StateDisbursed, at)
	return nil
}

// StartRepaying records the implicit disbursed -> repaying step. It is a
// no-op for a loan that is already repaying.
func (l *Loan) StartRepaying(now time.Time) (changed bool, err error) {
	if l.State == StateRepaying {
		return false, nil
	}
	if l.State != StateDisbursed {
		return false, Transitionf("loan in state %s is not being repaid", l.State)
	}
	l.moveTo(StateRepaying, l.stamp(now))
	return true, nil
}

// Complete closes the loan. allPaid must reflect the full schedule.
func (l *Loan) Complete(allPaid bool, now time.Time) error {
	if !CanTransition(l.State, StateCompleted) {
		return Transitionf("cannot complete loan in state %s", l.State)
	}
	if !allPaid {
		return Validationf("loan still has unpaid installments")
	}
	at := l.stamp(now)
	l.CompletedAt = &at
	l.moveTo(StateCompleted, at)
	return nil
}

func (l *Loan) MarkDefaulted(now time.Time) error {
	if !CanTransition(l.State, StateDefaulted) {
		return Transitionf("cannot default loan in state %s", l.State)
	}
	at := l.stamp(now)
	l.DefaultedAt = &at
	l.moveTo(StateDefaulted, at)
	return nil
}

// Principal is the amount the schedule is built on.
func (l *Loan) Principal() decimal.Decimal {
	if l.ApprovedAmount.Valid {
		return l.ApprovedAmount.Decimal
	}
	return l.RequestedAmount
}

func (l *Loan) moveTo(s State, at time.Time) {
	l.State = s
	l.StateUpdatedAt = at
}

// stamp keeps lifecycle timestamps non-decreasing even if the clock steps back.
func (l *Loan) stamp(now time.Time) time.Time {
	now = now.UTC()
	last := l.CreatedAt
	for _, t := range []*time.Time{l.SubmittedAt, l.ReviewedAt, l.ApprovedAt, l.RejectedAt, l.DisbursedAt, l.CompletedAt, l.DefaultedAt} {
		if t != nil && t.After(last) {
			last = *t
		}
	}
	if l.StateUpdatedAt.After(last) {
		last = l.StateUpdatedAt
	}
	if now.Before(last) {
		return last.UTC()
	}
	return now
}
