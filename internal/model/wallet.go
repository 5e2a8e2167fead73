package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet 用户账本钱包，balance 为链上余额的缓存
type Wallet struct {
	Id        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerUserId string          `json:"owner_user_id" gorm:"uniqueIndex;not null"`
	Address     string          `json:"address" gorm:"not null"`
	Secret      string          `json:"-" gorm:"column:secret"` // 仅限后端使用，不对外输出
	Balance     decimal.Decimal `json:"balance" gorm:"type:numeric(20,6);default:0"`
}

// TableName 自定义表名
func (Wallet) TableName() string {
	return "wallet"
}

// BeforeCreate 生成钱包ID
func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.Id == "" {
		w.Id = uuid.NewString()
	}
	return nil
}
