package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"loan-engine/internal/usecase/repayment"
)

type RepaymentHandler struct{ uc *repayment.Usecase }

func NewRepaymentHandler(uc *repayment.Usecase) *RepaymentHandler { return &RepaymentHandler{uc: uc} }

type paymentReq struct {
	Amount    decimal.Decimal `json:"amount"     validate:"required,gt=0,dec2"`
	Method    string          `json:"method"     validate:"required,oneof=cash bank mobile_money"`
	Category  string          `json:"category"   validate:"omitempty,oneof=installment penalty fee other"`
	PaidAt    *time.Time      `json:"paid_at"`
	Reference *string         `json:"reference"  validate:"omitempty,max=128"`
}

func (h *RepaymentHandler) RecordPayment(c echo.Context) error {
	var req paymentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.RecordPayment(c.Request().Context(), repayment.PaymentInput{
		LoanID:    c.Param("loan_id"),
		Amount:    req.Amount,
		Method:    req.Method,
		Category:  req.Category,
		PaidAt:    req.PaidAt,
		Reference: req.Reference,
		ActorID:   actorID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *RepaymentHandler) ListEntries(c echo.Context) error {
	items, err := h.uc.Entries(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": c.Param("loan_id"), "entries": items})
}

func (h *RepaymentHandler) Schedule(c echo.Context) error {
	items, err := h.uc.Schedule(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": c.Param("loan_id"), "installments": items})
}

func (h *RepaymentHandler) Balance(c echo.Context) error {
	dto, err := h.uc.Balance(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
