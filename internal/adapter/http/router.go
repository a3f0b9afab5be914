package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health       *Handler
	Loans        *LoanHandler
	Approvals    *ApprovalHandler
	Disbursement *DisbursementHandler
	Repayments   *RepaymentHandler
	Investments  *InvestmentHandler
	Delinquency  *DelinquencyHandler
}

// Register mounts every route on e. mw wraps the API routes only, not /health.
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	api := e.Group("", mw...)
	api.GET("/quotes", h.Disbursement.Quote)
	api.POST("/sweeps/delinquency", h.Delinquency.Sweep)
	api.GET("/investors/:investor_id/allocations", h.Investments.ByInvestor)

	loans := api.Group("/loans")
	loans.POST("", h.Loans.CreateLoan)
	loans.GET("/:loan_id", h.Loans.GetLoan)
	loans.GET("/:loan_id/activities", h.Loans.Activities)
	loans.POST("/:loan_id/submit", h.Loans.Submit)
	loans.POST("/:loan_id/review", h.Loans.StartReview)
	loans.POST("/:loan_id/approve", h.Approvals.ApproveLoan)
	loans.POST("/:loan_id/reject", h.Approvals.RejectLoan)
	loans.POST("/:loan_id/disburse", h.Disbursement.Disburse)
	loans.POST("/:loan_id/complete", h.Loans.Complete)
	loans.POST("/:loan_id/recover", h.Delinquency.Recover)
	loans.GET("/:loan_id/npl", h.Delinquency.Flag)
	loans.GET("/:loan_id/schedule", h.Repayments.Schedule)
	loans.GET("/:loan_id/balance", h.Repayments.Balance)
	loans.POST("/:loan_id/repayments", h.Repayments.RecordPayment)
	loans.GET("/:loan_id/repayments", h.Repayments.ListEntries)
	loans.POST("/:loan_id/allocations", h.Investments.Allocate)
	loans.GET("/:loan_id/allocations", h.Investments.ListByLoan)
}
