package http

import (
	"net/http"
	"strconv"

	"banksentinel/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupClaims(base *echo.Group) {
	v1 := base.Group("/v1/claims")
	{
		v1.GET("/triage", h.TriageQueue)
		v1.POST("/sweep", h.SweepClaims)
		v1.POST("/:id/debunk", h.DebunkClaim)
	}
}

func (h *HttpAPIHandler) TriageQueue(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	claims, err := h.service.Graduation.TriageQueue(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Triage queue", claims))
}

func (h *HttpAPIHandler) SweepClaims(c echo.Context) error {
	result, err := h.service.Graduation.Sweep(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Sweep completed", result))
}

func (h *HttpAPIHandler) DebunkClaim(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("claim id must be an integer"))
	}

	if err := h.service.Graduation.Debunk(c.Request().Context(), uint(id)); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, dto.NewBaseResponse(http.StatusUnprocessableEntity, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Claim debunked", nil))
}
