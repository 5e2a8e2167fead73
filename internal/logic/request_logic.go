package logic

import (
	"context"
	"fmt"

	"github.com/blues/des/internal/ledger"
	"github.com/blues/des/internal/logger"
	"github.com/blues/des/internal/model"
	"github.com/blues/des/internal/repository"
	"github.com/shopspring/decimal"
)

// RequestLogic 捐助请求业务逻辑
type RequestLogic struct {
	requests *repository.RequestRepository
	faucet   *ledger.FaucetClient
}

// NewRequestLogic 创建捐助请求业务逻辑
func NewRequestLogic(requests *repository.RequestRepository, faucet *ledger.FaucetClient) *RequestLogic {
	return &RequestLogic{requests: requests, faucet: faucet}
}

// CreateRequestInput 创建捐助请求的入参，金额由上游估算服务给出
type CreateRequestInput struct {
	BeneficiaryAddress string
	BeneficiaryUserId  string
	EstimatedAmount    decimal.Decimal
	BillText           string
	InsuranceName      string
}

// CreateRequest 创建捐助请求并为其配备独立的托管账户
func (l *RequestLogic) CreateRequest(ctx context.Context, input CreateRequestInput) (*model.FundingRequest, error) {
	if !ledger.ValidAddress(input.BeneficiaryAddress) {
		return nil, fmt.Errorf("%w: invalid or missing beneficiary address", model.ErrValidation)
	}
	if !input.EstimatedAmount.IsPositive() {
		return nil, fmt.Errorf("%w: estimated amount must be positive", model.ErrValidation)
	}

	// 每个请求独占一个托管账户
	escrowAccount, err := l.faucet.Fund(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: escrow account provisioning: %v", model.ErrLedgerUnavailable, err)
	}

	req := &model.FundingRequest{
		BeneficiaryAddress: input.BeneficiaryAddress,
		BeneficiaryUserId:  input.BeneficiaryUserId,
		EscrowAddress:      escrowAccount.Address,
		EscrowSecret:       escrowAccount.Secret,
		EstimatedAmount:    input.EstimatedAmount,
		PledgedTotal:       decimal.Zero,
		Status:             model.RequestStatusOpen,
		BillText:           input.BillText,
		InsuranceName:      input.InsuranceName,
	}
	if err := l.requests.Create(req); err != nil {
		return nil, err
	}

	logger.Info("Funding request %s created for %s XRP, escrow account %s",
		req.Id, req.EstimatedAmount, req.EscrowAddress)
	return req, nil
}

// GetRequest 查询捐助请求
func (l *RequestLogic) GetRequest(id string) (*model.FundingRequest, error) {
	return l.requests.Get(id)
}
