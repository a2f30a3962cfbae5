package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType defines the type of wallet transaction
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypePurchase   TransactionType = "PURCHASE"
	TransactionTypeAdjustment TransactionType = "ADMIN_ADJUSTMENT"
)

// WalletTransaction is the append-only ledger of wallet balance changes
type WalletTransaction struct {
	gorm.Model
	UserID          uint            `gorm:"not null;index" json:"userId"`
	TransactionType TransactionType `gorm:"type:varchar(50);not null" json:"transactionType"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	BalanceBefore   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balanceBefore"`
	BalanceAfter    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balanceAfter"`
	Description     string          `gorm:"type:text" json:"description"`

	// Reference details (for purchases)
	ReferenceType string `gorm:"type:varchar(50)" json:"referenceType"`
	ReferenceID   uint   `gorm:"default:0" json:"referenceId"`
	ReferenceName string `gorm:"type:varchar(255)" json:"referenceName"`

	// Admin details (for manual deposits and adjustments)
	AdminID uint `gorm:"default:0" json:"adminId"`

	TransactionDate time.Time `gorm:"not null;index" json:"transactionDate"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
