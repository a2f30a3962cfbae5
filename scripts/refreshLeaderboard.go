// Command refreshLeaderboard recomputes leaderboard ranks once and exits
// non-zero on failure, for use from cron or monitoring.
package main

import (
	"context"
	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/services/leaderboard"
	"os"
	"time"
)

func main() {
	config.LoadConfig()
	logger.Init(config.AppConfig.LogLevel)
	database.ConnectDb()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	engine := leaderboard.NewEngine(database.Database.Db, logger.Log.WithField("component", "leaderboard"))
	res, err := engine.Recompute(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("Leaderboard refresh failed")
		os.Exit(1)
	}

	logger.Log.WithField("users_processed", res.UsersProcessed).Info("Leaderboard refreshed")
}
