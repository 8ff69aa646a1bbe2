package http

import (
	"net/http"
	"strconv"

	"banksentinel/internal/dto"
	"banksentinel/internal/model"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupCollectors(base *echo.Group) {
	v1 := base.Group("/v1/collectors")
	{
		v1.POST("/run", h.RunCollectors)
		v1.POST("/:name/run", h.RunCollector)
		v1.GET("/health", h.CollectorHealth)
	}
}

// RunCollectors triggers every due collector, optionally narrowed to one
// trust tier via ?tier=N.
func (h *HttpAPIHandler) RunCollectors(c echo.Context) error {
	ctx := c.Request().Context()

	if tierParam := c.QueryParam("tier"); tierParam != "" {
		n, err := strconv.Atoi(tierParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("tier must be an integer"))
		}
		tier := model.TrustTier(n)
		if !tier.Valid() {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("tier must be 1, 2, or 3"))
		}
		response := dto.NewSuccessResponse("Running tier collectors", nil)
		if err := h.service.Scheduler.ExecuteTier(ctx, tier); err != nil {
			response.Code = http.StatusInternalServerError
			response.Message = err.Error()
		}
		return c.JSON(response.Code, response)
	}

	response := dto.NewSuccessResponse("Running due collectors", nil)
	if err := h.service.Scheduler.Execute(ctx); err != nil {
		response.Code = http.StatusInternalServerError
		response.Message = err.Error()
	}
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) RunCollector(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("collector name is required"))
	}

	if err := h.service.Scheduler.RunSource(c.Request().Context(), name); err != nil {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Collector run started", nil))
}

func (h *HttpAPIHandler) CollectorHealth(c echo.Context) error {
	health, err := h.service.Scheduler.Health(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Collector health", health))
}
