package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"loan-engine/internal/usecase/approval"
)

type ApprovalHandler struct{ uc *approval.Usecase }

func NewApprovalHandler(uc *approval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type approveLoanReq struct {
	ReviewerID string `json:"reviewer_id" validate:"required,max=64"`
	// defaults to the requested amount
	ApprovedAmount *decimal.Decimal `json:"approved_amount" validate:"omitempty,gt=0,dec2"`
	AllowOverride  bool             `json:"allow_override"`
}

type rejectLoanReq struct {
	ReviewerID string `json:"reviewer_id" validate:"required,max=64"`
	Reason     string `json:"reason"      validate:"required,max=2000"`
}

func (h *ApprovalHandler) ApproveLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param", Code: "bad_request"})
	}
	var req approveLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Approve(c.Request().Context(), approval.ApproveInput{
		LoanID:        loanID,
		ReviewerID:    req.ReviewerID,
		Amount:        req.ApprovedAmount,
		AllowOverride: req.AllowOverride,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) RejectLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param", Code: "bad_request"})
	}
	var req rejectLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Reject(c.Request().Context(), approval.RejectInput{
		LoanID:     loanID,
		ReviewerID: req.ReviewerID,
		Reason:     req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
