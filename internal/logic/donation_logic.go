package logic

import (
	"context"
	"fmt"

	"github.com/blues/des/internal/escrow"
	"github.com/blues/des/internal/ledger"
	"github.com/blues/des/internal/logger"
	"github.com/blues/des/internal/model"
	"github.com/blues/des/internal/repository"
	"github.com/shopspring/decimal"
)

// DonationLogic 捐款业务逻辑
type DonationLogic struct {
	requests *repository.RequestRepository
	wallets  *repository.WalletRepository
	dialer   ledger.Dialer
	creator  *escrow.Creator
}

// NewDonationLogic 创建捐款业务逻辑
func NewDonationLogic(requests *repository.RequestRepository, wallets *repository.WalletRepository,
	dialer ledger.Dialer, creator *escrow.Creator) *DonationLogic {
	return &DonationLogic{
		requests: requests,
		wallets:  wallets,
		dialer:   dialer,
		creator:  creator,
	}
}

// Donate 处理一笔捐款：校验、链上转账到托管账户、入账，
// 随后立刻对该请求做一次托管创建检查（不等下一轮扫描）。
// 返回更新后的请求快照。
func (l *DonationLogic) Donate(ctx context.Context, requestId, donorId string, amount decimal.Decimal) (*model.FundingRequest, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if donorId == "" {
		return nil, fmt.Errorf("%w: donor id is required", model.ErrValidation)
	}

	req, err := l.requests.Get(requestId)
	if err != nil {
		return nil, err
	}
	if !ledger.ValidAddress(req.BeneficiaryAddress) {
		return nil, fmt.Errorf("%w: request %s has an invalid beneficiary address", model.ErrValidation, requestId)
	}
	if !req.Provisioned() {
		return nil, fmt.Errorf("%w: request %s has no escrow account yet", model.ErrValidation, requestId)
	}

	wallet, err := l.wallets.GetByUserId(donorId)
	if err != nil {
		return nil, fmt.Errorf("%w: donor wallet not found", model.ErrValidation)
	}

	gw, err := l.dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrLedgerUnavailable, err)
	}
	defer gw.Close()

	// 提交前先核验捐款人链上余额，不足直接拒绝，不入账
	balance, err := gw.AccountBalance(ctx, wallet.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: donor balance query: %v", model.ErrLedgerUnavailable, err)
	}
	if balance.LessThan(amount) {
		return nil, fmt.Errorf("%w: insufficient balance: %s XRP available, needs %s XRP",
			model.ErrValidation, balance, amount)
	}

	// 捐款转入该请求的托管账户
	submitted, err := gw.SubmitPayment(ctx, ledger.PaymentTx{
		Account:     wallet.Address,
		Secret:      wallet.Secret,
		Amount:      amount,
		Destination: req.EscrowAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pledge payment: %v", model.ErrLedgerUnavailable, err)
	}

	pledge := &model.Pledge{
		RequestId: requestId,
		DonorId:   donorId,
		Amount:    amount,
		TxHash:    submitted.TxHash,
	}
	if err := l.requests.AppendPledge(pledge); err != nil {
		return nil, err
	}
	if err := l.requests.IncrementPledgedTotal(requestId, amount); err != nil {
		return nil, err
	}

	logger.Info("Pledge %s recorded: %s XRP from donor %s to request %s",
		pledge.Id, amount, donorId, requestId)

	// 内联触发托管创建检查；失败不影响已入账的捐款，下一轮扫描会重试
	if _, err := l.creator.ProcessRequest(ctx, req); err != nil {
		logger.Warn("Inline escrow check failed for request %s: %v", requestId, err)
	}

	return l.requests.Get(requestId)
}

// validateAmount 金额必须为正且不超过6位小数
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: donation amount must be positive", model.ErrValidation)
	}
	if amount.Exponent() < -6 {
		return fmt.Errorf("%w: donation amount has more than 6 decimal places", model.ErrValidation)
	}
	return nil
}
