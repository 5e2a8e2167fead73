package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blues/des/internal/config"
	"github.com/blues/des/internal/ledger"
	"github.com/blues/des/internal/logger"
	"github.com/blues/des/internal/model"
	"github.com/blues/des/internal/repository"
)

// Finisher 托管释放器：释放窗口已过的请求转换为 settled
type Finisher struct {
	requests *repository.RequestRepository
	wallets  *repository.WalletRepository
	dialer   ledger.Dialer
	taskCfg  config.TaskConfig
	now      func() time.Time
}

// NewFinisher 创建托管释放器
func NewFinisher(requests *repository.RequestRepository, wallets *repository.WalletRepository,
	dialer ledger.Dialer, taskCfg config.TaskConfig) *Finisher {
	return &Finisher{
		requests: requests,
		wallets:  wallets,
		dialer:   dialer,
		taskCfg:  taskCfg,
		now:      time.Now,
	}
}

// SetNow 替换时间源，用于在测试中推进释放窗口
func (f *Finisher) SetNow(now func() time.Time) {
	f.now = now
}

// FinishResult 一轮释放扫描的统计
type FinishResult struct {
	Checked  int64 `json:"checked"`
	Finished int64 `json:"finished"`
}

// Sweep 扫描所有已托管待结算的请求。单个请求的失败只记日志，
// 留给下一轮重试；仅存储层不可用时报错。
func (f *Finisher) Sweep(ctx context.Context) (*FinishResult, error) {
	requests, err := f.requests.ListEscrowCreated()
	if err != nil {
		return nil, fmt.Errorf("failed to list escrowed requests: %w", err)
	}

	var result FinishResult
	now := f.now()

	for i := range requests {
		req := requests[i]
		result.Checked++

		finished, err := f.processRequest(ctx, &req, now)
		if errors.Is(err, model.ErrGuardConflict) {
			logger.Warn("Escrow finish skipped: %v", err)
			continue
		}
		if err != nil {
			logger.Error("Escrow finish failed for request %s: %v", req.Id, err)
			continue
		}
		if finished {
			result.Finished++
		}
	}

	logger.Info("Escrow finish sweep completed. Checked %d requests, finished %d escrows",
		result.Checked, result.Finished)
	return &result, nil
}

// processRequest 对单个请求执行释放检查，返回是否完成结算入账
func (f *Finisher) processRequest(ctx context.Context, req *model.FundingRequest, now time.Time) (bool, error) {
	if req.Finished() {
		return false, nil
	}
	if req.EscrowSequence == 0 || !req.Provisioned() {
		logger.Warn("Request %s marked escrow_created but has no escrow bookkeeping, skipping", req.Id)
		return false, nil
	}

	releaseAfter := f.releaseDeadline(req)
	if now.Before(releaseAfter) {
		return false, nil
	}

	gw, err := f.dialer.Dial(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrLedgerUnavailable, err)
	}
	defer gw.Close()

	submitted, err := gw.SubmitEscrowFinish(ctx, ledger.EscrowFinishTx{
		Owner:         req.EscrowAddress,
		Secret:        req.EscrowSecret,
		OfferSequence: req.EscrowSequence,
	})
	if err != nil {
		return false, fmt.Errorf("%w: escrow finish for request %s: %v",
			model.ErrLedgerUnavailable, req.Id, err)
	}

	applied, err := f.requests.TransitionIfUnfinished(req.Id, repository.FinishFields{
		FinishTxHash: submitted.TxHash,
	})
	if err != nil {
		return false, fmt.Errorf("failed to record settlement for request %s: %w", req.Id, err)
	}
	if !applied {
		return false, fmt.Errorf("%w: settlement for request %s already recorded, tx %s discarded",
			model.ErrGuardConflict, req.Id, submitted.TxHash)
	}

	logger.Info("Escrow finished for request %s: %s", req.Id, submitted.TxHash)

	// 结算后尽力刷新受益人钱包的缓存余额，失败不回滚结算
	f.refreshBeneficiaryBalance(ctx, gw, req)
	return true, nil
}

// releaseDeadline 计算释放时间：优先取入账时记录的 release_after，
// 缺失时按 escrow_created_at 加窗口推算
func (f *Finisher) releaseDeadline(req *model.FundingRequest) time.Time {
	if req.ReleaseAfter != nil {
		return *req.ReleaseAfter
	}
	if req.EscrowCreatedAt != nil {
		return req.EscrowCreatedAt.Add(f.taskCfg.ReleaseAfter())
	}
	return req.CreatedAt.Add(f.taskCfg.ReleaseAfter())
}

// refreshBeneficiaryBalance 回查受益人链上余额并写入钱包缓存
func (f *Finisher) refreshBeneficiaryBalance(ctx context.Context, gw ledger.Gateway, req *model.FundingRequest) {
	if req.BeneficiaryUserId == "" {
		return
	}

	balance, err := gw.AccountBalance(ctx, req.BeneficiaryAddress)
	if err != nil {
		logger.Warn("Failed to query beneficiary balance for request %s: %v", req.Id, err)
		return
	}

	wallet, err := f.wallets.GetByUserId(req.BeneficiaryUserId)
	if err != nil {
		logger.Warn("No wallet found for beneficiary %s of request %s: %v",
			req.BeneficiaryUserId, req.Id, err)
		return
	}

	if err := f.wallets.UpdateBalance(wallet.Id, balance); err != nil {
		logger.Warn("Failed to refresh cached balance for wallet %s: %v", wallet.Id, err)
		return
	}
	logger.Info("Refreshed cached balance for beneficiary wallet %s: %s XRP", wallet.Id, balance)
}
