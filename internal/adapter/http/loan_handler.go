package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"loan-engine/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	ApplicantID  string          `json:"applicant_id"  validate:"required,hex32"`
	LoanType     string          `json:"loan_type"     validate:"required,oneof=personal business mortgage auto education"`
	Amount       decimal.Decimal `json:"amount"        validate:"required,gt=0,dec2"`
	TenureMonths int             `json:"tenure_months" validate:"required,gte=1"`
	Purpose      string          `json:"purpose"       validate:"required,max=2000"`
}

type reviewReq struct {
	ReviewerID string `json:"reviewer_id" validate:"required,max=64"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), loan.CreateLoanInput{
		ApplicantID:     req.ApplicantID,
		Type:            req.LoanType,
		RequestedAmount: req.Amount,
		TenureMonths:    req.TenureMonths,
		Purpose:         req.Purpose,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Submit(c echo.Context) error {
	dto, err := h.uc.Submit(c.Request().Context(), c.Param("loan_id"), actorID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) StartReview(c echo.Context) error {
	var req reviewReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.StartReview(c.Request().Context(), c.Param("loan_id"), req.ReviewerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Complete(c echo.Context) error {
	dto, err := h.uc.Complete(c.Request().Context(), c.Param("loan_id"), actorID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Activities(c echo.Context) error {
	items, err := h.uc.History(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": c.Param("loan_id"), "activities": items})
}
