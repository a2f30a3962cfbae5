package walletRoutes

import (
	walletController "coursehub/controllers/wallet"
	"coursehub/middleware"
	walletValidator "coursehub/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(router fiber.Router) {
	walletGroup := router.Group("/user")

	walletGroup.Get("/wallet/history", middleware.JWTMiddleware, walletValidator.History(), walletController.GetWalletHistory)

	// Admin
	walletGroup.Post("/:id/adjust-wallet", middleware.JWTMiddleware, middleware.AdminOnly, middleware.ParseIDParams("id"), walletValidator.AdjustWallet(), walletController.AdjustWallet)
	walletGroup.Post("/:id/deposit-wallet", middleware.JWTMiddleware, middleware.AdminOnly, middleware.ParseIDParams("id"), walletValidator.Deposit(), walletController.DepositWallet)
	walletGroup.Post("/:id/adjust-points", middleware.JWTMiddleware, middleware.AdminOnly, middleware.ParseIDParams("id"), walletValidator.AdjustPoints(), walletController.AdjustPoints)
}
