package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"loan-engine/internal/usecase/delinquency"
)

type DelinquencyHandler struct{ uc *delinquency.Usecase }

func NewDelinquencyHandler(uc *delinquency.Usecase) *DelinquencyHandler {
	return &DelinquencyHandler{uc: uc}
}

type recoverReq struct {
	Note string `json:"note" validate:"max=2000"`
}

// Sweep runs one delinquency pass inline. cmd/sweeper runs the same pass on
// a ticker.
func (h *DelinquencyHandler) Sweep(c echo.Context) error {
	res, err := h.uc.Sweep(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *DelinquencyHandler) Recover(c echo.Context) error {
	var req recoverReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Recover(c.Request().Context(), c.Param("loan_id"), actorID(c), req.Note)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DelinquencyHandler) Flag(c echo.Context) error {
	dto, err := h.uc.Flag(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
