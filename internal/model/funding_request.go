package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FundingRequest 捐助请求模型
type FundingRequest struct {
	Id        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 受益人信息
	BeneficiaryAddress string `json:"beneficiary_address" gorm:"not null" binding:"required"`
	BeneficiaryUserId  string `json:"beneficiary_user_id" gorm:"index"`

	// 托管账户（每个请求独占一个账本账户）
	EscrowAddress string `json:"escrow_address"`
	EscrowSecret  string `json:"-" gorm:"column:escrow_secret"`

	// 金额信息（XRP，6位小数）
	EstimatedAmount decimal.Decimal `json:"estimated_amount" gorm:"type:numeric(20,6);not null"`
	PledgedTotal    decimal.Decimal `json:"pledged_total" gorm:"type:numeric(20,6);default:0"`

	// 状态
	Status RequestStatus `json:"status" gorm:"default:'open'"`

	// 账本托管信息
	EscrowSequence  uint32     `json:"escrow_sequence" gorm:"default:0"` // 0 表示尚未创建
	EscrowTxHash    string     `json:"escrow_tx_hash"`
	EscrowCreatedAt *time.Time `json:"escrow_created_at"`
	ReleaseAfter    *time.Time `json:"release_after"`

	// 结算信息
	EscrowFinishTxHash string `json:"escrow_finish_tx_hash" gorm:"default:''"` // 空串表示尚未结算

	// 请求来源元数据
	BillText      string `json:"bill_text,omitempty" gorm:"type:text"`
	InsuranceName string `json:"insurance_name,omitempty"`
}

// RequestStatus 请求状态
type RequestStatus string

const (
	RequestStatusOpen          RequestStatus = "open"           // 募集中
	RequestStatusEscrowPending RequestStatus = "escrow_pending" // 待上链
	RequestStatusEscrowCreated RequestStatus = "escrow_created" // 已托管
	RequestStatusSettled       RequestStatus = "settled"        // 已结算
)

// TableName 自定义表名
func (FundingRequest) TableName() string {
	return "funding_request"
}

// BeforeCreate 生成请求ID
func (r *FundingRequest) BeforeCreate(tx *gorm.DB) error {
	if r.Id == "" {
		r.Id = uuid.NewString()
	}
	return nil
}

// Escrowed 是否已创建托管
func (r *FundingRequest) Escrowed() bool {
	return r.EscrowSequence != 0
}

// Finished 是否已结算
func (r *FundingRequest) Finished() bool {
	return r.EscrowFinishTxHash != ""
}

// Provisioned 托管账户是否已就绪
func (r *FundingRequest) Provisioned() bool {
	return r.EscrowAddress != "" && r.EscrowSecret != ""
}
