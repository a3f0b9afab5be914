package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"loan-engine/internal/usecase/disbursement"
)

type DisbursementHandler struct{ uc *disbursement.Usecase }

func NewDisbursementHandler(uc *disbursement.Usecase) *DisbursementHandler {
	return &DisbursementHandler{uc: uc}
}

// quoteReq binds from the query string; amounts stay strings until validated.
type quoteReq struct {
	Amount       string `query:"amount"        json:"amount"        validate:"required,numeric"`
	TenureMonths int    `query:"tenure_months" json:"tenure_months" validate:"required,gte=1"`
	LoanType     string `query:"loan_type"     json:"loan_type"     validate:"omitempty,oneof=personal business mortgage auto education"`
	Rate         string `query:"rate"          json:"rate"          validate:"omitempty,numeric"`
}

func (h *DisbursementHandler) Disburse(c echo.Context) error {
	dto, err := h.uc.Disburse(c.Request().Context(), c.Param("loan_id"), actorID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Quote previews a schedule without touching any loan.
func (h *DisbursementHandler) Quote(c echo.Context) error {
	var req quoteReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in := disbursement.QuoteInput{
		Amount:       decimal.RequireFromString(req.Amount),
		TenureMonths: req.TenureMonths,
		Type:         req.LoanType,
	}
	if req.Rate != "" {
		r := decimal.RequireFromString(req.Rate)
		in.Rate = &r
	}
	dto, err := h.uc.Quote(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
