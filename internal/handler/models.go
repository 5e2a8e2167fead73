package handler

import "github.com/shopspring/decimal"

// DonateRequest 捐款请求体
type DonateRequest struct {
	RequestId string          `json:"request_id" binding:"required"`
	DonorId   string          `json:"donor_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// CreateWalletRequest 创建钱包请求体
type CreateWalletRequest struct {
	UserId string `json:"user_id" binding:"required"`
}

// CreateFundingRequest 创建捐助请求请求体
type CreateFundingRequest struct {
	BeneficiaryAddress string          `json:"beneficiary_address" binding:"required"`
	BeneficiaryUserId  string          `json:"beneficiary_user_id"`
	EstimatedAmount    decimal.Decimal `json:"estimated_amount" binding:"required"`
	BillText           string          `json:"bill_text"`
	InsuranceName      string          `json:"insurance_name"`
}

// WalletResponse 钱包响应，不暴露密钥
type WalletResponse struct {
	Id          string          `json:"id"`
	OwnerUserId string          `json:"owner_user_id"`
	Address     string          `json:"address"`
	Balance     decimal.Decimal `json:"balance"`
}
