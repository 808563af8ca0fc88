package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/snacks-api/internal/application/analytics"
	"github.com/jhoicas/snacks-api/internal/application/dto"
)

// AnalyticsHandler resumen de ventas del panel de administración.
type AnalyticsHandler struct {
	uc *analytics.UseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.UseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// Summary godoc
// @Summary      Resumen de ventas
// @Description  Totales, ventas por día, pedidos por estado, top productos y ventas por marca.
// @Description  Los pedidos cancelados cuentan en byStatus y se excluyen de los importes salvo includeCancelled=true.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        from              query  string  false  "Inicio (YYYY-MM-DD, UTC)"
// @Param        to                query  string  false  "Fin inclusive (YYYY-MM-DD, UTC)"
// @Param        top               query  int     false  "Tamaño del ranking (default 5, máx. 50)"
// @Param        includeCancelled  query  bool    false  "Incluir cancelados en los importes"
// @Success      200  {object}  dto.AnalyticsSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	var q dto.AnalyticsQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	report, err := h.uc.Summary(c.UserContext(), GetAuth(c), q)
	if err != nil {
		return err
	}
	return c.JSON(report)
}
