package http

import (
	"net/http"

	"banksentinel/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupScores(base *echo.Group) {
	v1 := base.Group("/v1/scores")
	{
		v1.POST("/run", h.RunScoring)
		v1.GET("/latest", h.LatestEntityScores)
		v1.GET("/market/latest", h.LatestMarketScore)
		v1.GET("/regime", h.RegimeSummary)
	}
}

func (h *HttpAPIHandler) RunScoring(c echo.Context) error {
	response := dto.NewSuccessResponse("Scoring run completed", nil)
	if err := h.service.Scoring.RunDaily(c.Request().Context()); err != nil {
		response.Code = http.StatusInternalServerError
		response.Message = err.Error()
	}
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) LatestEntityScores(c echo.Context) error {
	scores, err := h.service.Scoring.LatestEntities(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Latest entity scores", scores))
}

func (h *HttpAPIHandler) LatestMarketScore(c echo.Context) error {
	score, err := h.service.Scoring.LatestMarket(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "no market score yet", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Latest market score", score))
}

func (h *HttpAPIHandler) RegimeSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Regime summary", h.service.Regime.Summary()))
}
