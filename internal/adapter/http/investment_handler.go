package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"loan-engine/internal/usecase/investment"
)

type InvestmentHandler struct{ uc *investment.Usecase }

func NewInvestmentHandler(uc *investment.Usecase) *InvestmentHandler {
	return &InvestmentHandler{uc: uc}
}

type allocateReq struct {
	InvestorID string          `json:"investor_id" validate:"required,max=32"`
	Amount     decimal.Decimal `json:"amount"      validate:"required,gt=0,dec2"`
}

func (h *InvestmentHandler) Allocate(c echo.Context) error {
	var req allocateReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Allocate(c.Request().Context(), investment.AllocateInput{
		LoanID:     c.Param("loan_id"),
		InvestorID: req.InvestorID,
		Amount:     req.Amount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *InvestmentHandler) ListByLoan(c echo.Context) error {
	dto, err := h.uc.ListByLoan(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *InvestmentHandler) ByInvestor(c echo.Context) error {
	investorID := c.Param("investor_id")
	items, err := h.uc.ByInvestor(c.Request().Context(), investorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"investor_id": investorID, "allocations": items})
}
