package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raghav0014/AI-Feedback/services"
)

// AnalyticsController serves the admin analytics dashboard data.
type AnalyticsController struct {
	svc *services.AnalyticsService
}

func NewAnalyticsController(svc *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{svc: svc}
}

// Report returns aggregate counts and distributions over the requested
// time window (7d, 30d, 90d or 1y; default 30d).
func (a *AnalyticsController) Report(c *fiber.Ctx) error {
	timeRange := c.Query("timeRange", "30d")
	switch timeRange {
	case "7d", "30d", "90d", "1y":
	default:
		return badRequest(c, "timeRange must be one of 7d, 30d, 90d, 1y")
	}

	report, err := a.svc.Report(c.UserContext(), timeRange)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"analytics": report,
	})
}
