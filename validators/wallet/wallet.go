package walletValidator

import (
	"coursehub/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var minDeposit = decimal.RequireFromString("0.01")

type AdjustWalletRequest struct {
	WalletBalance *decimal.Decimal `json:"wallet_balance"`
}

type DepositRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type AdjustPointsRequest struct {
	PointsBalance *int64 `json:"points_balance" validate:"required,gte=0"`
}

type HistoryQuery struct {
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
	Type  string `query:"type" validate:"omitempty,oneof=DEPOSIT PURCHASE ADMIN_ADJUSTMENT"`
}

func AdjustWallet() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AdjustWalletRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.WalletBalance == nil {
			errors["wallet_balance"] = "wallet_balance is required"
		} else if reqData.WalletBalance.IsNegative() {
			errors["wallet_balance"] = "wallet_balance must be greater than or equal to 0"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAdjustWallet", reqData)
		return c.Next()
	}
}

func Deposit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DepositRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.Amount == nil {
			errors["amount"] = "amount is required"
		} else if reqData.Amount.LessThan(minDeposit) {
			errors["amount"] = "amount must be at least 0.01"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDeposit", reqData)
		return c.Next()
	}
}

func AdjustPoints() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AdjustPointsRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAdjustPoints", reqData)
		return c.Next()
	}
}

func History() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(HistoryQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.Page, reqData.Limit = middleware.NormalizePage(reqData.Page, reqData.Limit, 10)

		c.Locals("validatedHistory", reqData)
		return c.Next()
	}
}
