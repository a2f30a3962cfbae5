package walletController

import (
	"coursehub/middleware"
	"coursehub/services"
	walletValidator "coursehub/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

// GetWalletHistory returns the caller's wallet ledger
func GetWalletHistory(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedHistory").(*walletValidator.HistoryQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	transactions, total, err := services.App.Wallet.History(c.UserContext(), userId, reqData.Type, reqData.Page, reqData.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet history fetched!", fiber.Map{
		"transactions": transactions,
		"pagination":   middleware.Pagination(total, reqData.Page, reqData.Limit),
	})
}

// AdjustWallet sets a user's wallet balance (Admin only)
func AdjustWallet(c *fiber.Ctx) error {
	adminId, _ := c.Locals("userId").(uint)
	targetId := c.Locals("id").(uint)

	reqData, ok := c.Locals("validatedAdjustWallet").(*walletValidator.AdjustWalletRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.App.Wallet.SetWallet(c.UserContext(), adminId, targetId, *reqData.WalletBalance)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet balance updated successfully", fiber.Map{
		"user_id":        user.ID,
		"wallet_balance": user.WalletBalance,
	})
}

// DepositWallet credits a user's wallet (Admin only)
func DepositWallet(c *fiber.Ctx) error {
	adminId, _ := c.Locals("userId").(uint)
	targetId := c.Locals("id").(uint)

	reqData, ok := c.Locals("validatedDeposit").(*walletValidator.DepositRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.App.Wallet.Deposit(c.UserContext(), adminId, targetId, *reqData.Amount)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Deposit successful!", fiber.Map{
		"user_id":        user.ID,
		"amount":         reqData.Amount,
		"wallet_balance": user.WalletBalance,
	})
}

// AdjustPoints sets a user's points balance (Admin only)
func AdjustPoints(c *fiber.Ctx) error {
	targetId := c.Locals("id").(uint)

	reqData, ok := c.Locals("validatedAdjustPoints").(*walletValidator.AdjustPointsRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.App.Wallet.SetPoints(c.UserContext(), targetId, *reqData.PointsBalance)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Points balance updated successfully", fiber.Map{
		"user_id":        user.ID,
		"points_balance": user.PointsBalance,
	})
}
