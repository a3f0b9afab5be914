package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-engine/internal/testutil/dbtest"
	"loan-engine/internal/usecase/approval"
	"loan-engine/internal/usecase/delinquency"
	"loan-engine/internal/usecase/disbursement"
	"loan-engine/internal/usecase/investment"
	"loan-engine/internal/usecase/loan"
	"loan-engine/internal/usecase/repayment"
)

var start = time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)

func newServer(t *testing.T) (*echo.Echo, *dbtest.Harness) {
	t.Helper()
	h := dbtest.New(t, start)
	e := echo.New()
	e.Validator = NewValidator()
	Register(e, Handlers{
		Health:       NewHandler(),
		Loans:        NewLoanHandler(loan.NewUsecase(h.Env)),
		Approvals:    NewApprovalHandler(approval.NewUsecase(h.Env)),
		Disbursement: NewDisbursementHandler(disbursement.NewUsecase(h.Env)),
		Repayments:   NewRepaymentHandler(repayment.NewUsecase(h.Env)),
		Investments:  NewInvestmentHandler(investment.NewUsecase(h.Env)),
		Delinquency:  NewDelinquencyHandler(delinquency.NewUsecase(h.Env)),
	})
	return e, h
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func do(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *stdhttp.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, mustJSON(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(ActorHeader, "ops-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAPI_LoanLifecycle(t *testing.T) {
	e, _ := newServer(t)

	rec := do(t, e, stdhttp.MethodPost, "/loans", map[string]any{
		"applicant_id":  strings.Repeat("a", 32),
		"loan_type":     "personal",
		"amount":        25000,
		"tenure_months": 24,
		"purpose":       "home renovation",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	created := decode[loan.LoanDTO](t, rec)
	assert.Equal(t, "draft", created.State)
	base := "/loans/" + created.LoanID

	rec = do(t, e, stdhttp.MethodPost, base+"/submit", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "submitted", decode[loan.LoanDTO](t, rec).State)

	rec = do(t, e, stdhttp.MethodPost, base+"/review", map[string]any{"reviewer_id": "rev-1"})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "under_review", decode[loan.LoanDTO](t, rec).State)

	rec = do(t, e, stdhttp.MethodPost, base+"/approve", map[string]any{"reviewer_id": "rev-1"})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	decision := decode[approval.DecisionDTO](t, rec)
	require.NotNil(t, decision.InterestRate)
	assert.Equal(t, "12.5", decision.InterestRate.String())

	rec = do(t, e, stdhttp.MethodPost, base+"/approve", map[string]any{"reviewer_id": "rev-2"})
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", decode[ErrorResponse](t, rec).Code)

	for _, a := range []struct {
		investor string
		amount   string
		want     int
	}{
		{"inv-1", "10000", stdhttp.StatusCreated},
		{"inv-2", "15000", stdhttp.StatusCreated},
		{"inv-3", "99", stdhttp.StatusUnprocessableEntity},
		{"inv-3", "100", stdhttp.StatusConflict},
	} {
		rec = do(t, e, stdhttp.MethodPost, base+"/allocations", map[string]any{"investor_id": a.investor, "amount": a.amount})
		assert.Equal(t, a.want, rec.Code, "%s %s: %s", a.investor, a.amount, rec.Body.String())
	}

	rec = do(t, e, stdhttp.MethodPost, base+"/disburse", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	disbursed := decode[disbursement.DisbursementDTO](t, rec)
	assert.Equal(t, "1182.68", disbursed.Schedule.Installment.StringFixed(2))
	assert.Equal(t, "28384.38", disbursed.Schedule.TotalRepayable.StringFixed(2))
	// Jan 31 clamps to Feb 28
	assert.Equal(t, 28, disbursed.Schedule.Installments[0].DueDate.Day())

	rec = do(t, e, stdhttp.MethodPost, base+"/repayments", map[string]any{"amount": "1182.68", "method": "bank", "reference": "TRX-1"})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, e, stdhttp.MethodGet, base+"/balance", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	bal := decode[repayment.BalanceDTO](t, rec)
	assert.Equal(t, "27201.70", bal.Outstanding.StringFixed(2))
	assert.Equal(t, "repaying", bal.State)

	rec = do(t, e, stdhttp.MethodGet, base+"/schedule", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	sched := decode[struct {
		Installments []struct {
			Status string `json:"status"`
		} `json:"installments"`
	}](t, rec)
	require.Len(t, sched.Installments, 24)
	assert.Equal(t, "paid", sched.Installments[0].Status)

	rec = do(t, e, stdhttp.MethodGet, base+"/repayments", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "TRX-1")

	rec = do(t, e, stdhttp.MethodGet, base+"/allocations", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	funding := decode[investment.FundingDTO](t, rec)
	assert.True(t, funding.Funded.Equal(decimal.NewFromInt(25000)))
	assert.True(t, funding.Allocations[0].ActualReturn.IsPositive())

	rec = do(t, e, stdhttp.MethodGet, "/investors/inv-1/allocations", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.LoanID)

	rec = do(t, e, stdhttp.MethodPost, base+"/complete", nil)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code, "schedule not settled")

	rec = do(t, e, stdhttp.MethodGet, base+"/activities", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	for _, action := range []string{"created", "submitted", "review_started", "approved", "allocated", "disbursed", "repaying", "payment_recorded"} {
		assert.Contains(t, rec.Body.String(), `"`+action+`"`)
	}
}

func TestAPI_Errors(t *testing.T) {
	e, _ := newServer(t)

	rec := do(t, e, stdhttp.MethodGet, "/loans/"+strings.Repeat("f", 32), nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, rec).Code)

	rec = do(t, e, stdhttp.MethodPost, "/loans", map[string]any{
		"applicant_id": "NOTHEX",
		"loan_type":    "yacht",
		"amount":       -1,
	})
	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	er := decode[ErrorResponse](t, rec)
	assert.Equal(t, "validation failed", er.Error)
	for _, f := range []string{"applicant_id", "loan_type", "amount", "tenure_months", "purpose"} {
		found := false
		for _, d := range er.Details {
			found = found || d.Field == f
		}
		assert.True(t, found, "missing detail for %s: %+v", f, er.Details)
	}

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", strings.NewReader(`{"amount":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	bad := httptest.NewRecorder()
	e.ServeHTTP(bad, req)
	assert.Equal(t, stdhttp.StatusBadRequest, bad.Code)

	// drafts take any positive amount; the policy bounds apply on submit
	rec = do(t, e, stdhttp.MethodPost, "/loans", map[string]any{
		"applicant_id":  strings.Repeat("b", 32),
		"loan_type":     "auto",
		"amount":        "50000000",
		"tenure_months": 12,
		"purpose":       "fleet",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, e, stdhttp.MethodPost, "/loans/"+decode[loan.LoanDTO](t, rec).LoanID+"/submit", nil)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	rec = do(t, e, stdhttp.MethodPost, "/loans/"+strings.Repeat("f", 32)+"/reject", map[string]any{"reviewer_id": "rev-1"})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code, "reason is required")
}

func TestAPI_Quote(t *testing.T) {
	e, _ := newServer(t)

	rec := do(t, e, stdhttp.MethodGet, "/quotes?amount=25000&tenure_months=24&loan_type=personal", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	q := decode[disbursement.ScheduleDTO](t, rec)
	assert.Equal(t, "1182.68", q.Installment.StringFixed(2))
	assert.Len(t, q.Installments, 24)

	rec = do(t, e, stdhttp.MethodGet, "/quotes?amount=12000&tenure_months=12&rate=12", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1066.19", decode[disbursement.ScheduleDTO](t, rec).Installment.StringFixed(2))

	rec = do(t, e, stdhttp.MethodGet, "/quotes?tenure_months=12", nil)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
}

func TestAPI_SweepAndRecover(t *testing.T) {
	e, h := newServer(t)

	rec := do(t, e, stdhttp.MethodPost, "/loans", map[string]any{
		"applicant_id":  strings.Repeat("c", 32),
		"loan_type":     "education",
		"amount":        "6000",
		"tenure_months": 6,
		"purpose":       "tuition",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	base := "/loans/" + decode[loan.LoanDTO](t, rec).LoanID
	for _, step := range []struct {
		path string
		body any
	}{
		{"/submit", nil},
		{"/approve", map[string]any{"reviewer_id": "rev-1"}},
		{"/disburse", nil},
	} {
		rec = do(t, e, stdhttp.MethodPost, base+step.path, step.body)
		require.Equal(t, stdhttp.StatusOK, rec.Code, "%s: %s", step.path, rec.Body.String())
	}

	rec = do(t, e, stdhttp.MethodGet, base+"/npl", nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)

	// first due date is Feb 28; 100 days later it is well past the threshold
	h.Clock.Set(time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC).Add(100 * 24 * time.Hour))
	rec = do(t, e, stdhttp.MethodPost, "/sweeps/delinquency", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	res := decode[delinquency.SweepResult](t, rec)
	assert.Equal(t, 1, res.Flagged)

	rec = do(t, e, stdhttp.MethodGet, base, nil)
	assert.Equal(t, "defaulted", decode[loan.LoanDTO](t, rec).State)

	rec = do(t, e, stdhttp.MethodGet, base+"/npl", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, 100, decode[delinquency.FlagDTO](t, rec).DaysOverdue)

	rec = do(t, e, stdhttp.MethodPost, base+"/repayments", map[string]any{"amount": "100", "method": "cash"})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code, "defaulted loans take no payments")

	rec = do(t, e, stdhttp.MethodPost, base+"/recover", map[string]any{"note": "restructured"})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	flag := decode[delinquency.FlagDTO](t, rec)
	require.NotNil(t, flag.ClearedBy)
	assert.Equal(t, "ops-1", *flag.ClearedBy)

	rec = do(t, e, stdhttp.MethodPost, base+"/recover", nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}
