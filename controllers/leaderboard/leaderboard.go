package leaderboardController

import (
	"coursehub/logger"
	"coursehub/metrics"
	"coursehub/middleware"
	"coursehub/services"
	"coursehub/services/leaderboard"

	"github.com/gofiber/fiber/v2"
)

// TopLeaderboard lists the best ranked users
func TopLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", leaderboard.DefaultTopLimit)
	if limit < 1 || limit > leaderboard.DefaultTopLimit {
		limit = leaderboard.DefaultTopLimit
	}

	standings, err := services.App.Leaderboard.Top(c.UserContext(), limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Leaderboard retrieved successfully", fiber.Map{
		"leaderboard": standings,
	})
}

// RefreshLeaderboard recomputes ranks immediately (Admin only). It does not take the scheduler lock.
func RefreshLeaderboard(c *fiber.Ctx) error {
	res, err := services.App.Leaderboard.Recompute(c.UserContext())
	if err != nil {
		metrics.LeaderboardRuns.WithLabelValues("manual", "error").Inc()
		return middleware.ErrorResponse(c, err)
	}
	metrics.LeaderboardRuns.WithLabelValues("manual", "success").Inc()

	adminId, _ := c.Locals("userId").(uint)
	logger.Log.WithField("admin_id", adminId).WithField("users_processed", res.UsersProcessed).Info("manual leaderboard refresh")

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Leaderboard refreshed successfully", res)
}
