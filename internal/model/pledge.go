package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pledge 捐款记录，创建后不再修改
type Pledge struct {
	Id        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`

	RequestId string          `json:"request_id" gorm:"not null;index"`
	DonorId   string          `json:"donor_id" gorm:"not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(20,6);not null"`
	TxHash    string          `json:"tx_hash"`
}

// TableName 自定义表名
func (Pledge) TableName() string {
	return "pledge"
}

// BeforeCreate 生成记录ID
func (p *Pledge) BeforeCreate(tx *gorm.DB) error {
	if p.Id == "" {
		p.Id = uuid.NewString()
	}
	return nil
}
