package escrow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blues/des/internal/config"
	"github.com/blues/des/internal/ledger"
	"github.com/blues/des/internal/logger"
	"github.com/blues/des/internal/model"
	"github.com/blues/des/internal/repository"
	"github.com/panjf2000/ants/v2"
)

// sweepPoolSize 扫描时并发处理请求的协程数上限
const sweepPoolSize = 8

// Creator 托管创建器：募集达标的请求转换为 escrow_created
type Creator struct {
	requests *repository.RequestRepository
	dialer   ledger.Dialer
	taskCfg  config.TaskConfig
	locks    *keyLock
	now      func() time.Time
}

// NewCreator 创建托管创建器
func NewCreator(requests *repository.RequestRepository, dialer ledger.Dialer, taskCfg config.TaskConfig) *Creator {
	return &Creator{
		requests: requests,
		dialer:   dialer,
		taskCfg:  taskCfg,
		locks:    newKeyLock(),
		now:      time.Now,
	}
}

// SetNow 替换时间源，用于测试
func (c *Creator) SetNow(now func() time.Time) {
	c.now = now
}

// CreateResult 一轮创建扫描的统计
type CreateResult struct {
	Scanned int64 `json:"scanned"`
	Created int64 `json:"created"`
}

// Sweep 扫描所有未托管的请求。单个请求的失败只记日志不中断扫描，
// 仅存储层不可用时报错。
func (c *Creator) Sweep(ctx context.Context) (*CreateResult, error) {
	requests, err := c.requests.ListOpenOrPending()
	if err != nil {
		return nil, fmt.Errorf("failed to list open requests: %w", err)
	}

	pool, err := ants.NewPool(sweepPoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var result CreateResult
	var wg sync.WaitGroup

	for i := range requests {
		req := requests[i]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&result.Scanned, 1)
			created, err := c.ProcessRequest(ctx, &req)
			if errors.Is(err, model.ErrGuardConflict) {
				logger.Warn("Escrow create skipped: %v", err)
				return
			}
			if err != nil {
				logger.Error("Escrow create check failed for request %s: %v", req.Id, err)
				return
			}
			if created {
				atomic.AddInt64(&result.Created, 1)
			}
		})
		if submitErr != nil {
			wg.Done()
			logger.Error("Failed to submit request %s to worker pool: %v", req.Id, submitErr)
		}
	}
	wg.Wait()

	logger.Info("Escrow create sweep completed. Scanned %d requests, created %d escrows",
		result.Scanned, result.Created)
	return &result, nil
}

// ProcessRequest 对单个请求执行托管创建检查。同一请求的并发调用
// （内联路径与定时扫描）在进程内被串行化，存储层的条件写入做最终兜底。
// 返回本次调用是否完成了托管创建的入账。
func (c *Creator) ProcessRequest(ctx context.Context, req *model.FundingRequest) (bool, error) {
	unlock := c.locks.Lock(req.Id)
	defer unlock()

	// 拿到锁后重新读取，避免基于过期快照重复提交
	req, err := c.requests.Get(req.Id)
	if err != nil {
		return false, err
	}

	if req.Escrowed() {
		return false, nil
	}
	// 托管账户尚未就绪的请求跳过，等待下一轮
	if !req.Provisioned() {
		logger.Warn("Request %s has no escrow account provisioned, skipping", req.Id)
		return false, nil
	}

	gw, err := c.dialer.Dial(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrLedgerUnavailable, err)
	}
	defer gw.Close()

	balance, err := gw.AccountBalance(ctx, req.EscrowAddress)
	if err != nil {
		return false, fmt.Errorf("%w: balance query for %s: %v",
			model.ErrLedgerUnavailable, req.EscrowAddress, err)
	}

	if balance.LessThan(req.EstimatedAmount) {
		return false, nil
	}

	now := c.now()
	finishAfter := now.Add(c.taskCfg.ReleaseAfter())

	tx := ledger.EscrowCreateTx{
		Account:     req.EscrowAddress,
		Secret:      req.EscrowSecret,
		Amount:      req.EstimatedAmount,
		Destination: req.BeneficiaryAddress,
		FinishAfter: ledger.ToRippleTime(finishAfter),
	}
	if c.taskCfg.CancelWindow > 0 {
		tx.CancelAfter = ledger.ToRippleTime(now.Add(c.taskCfg.CancelAfter()))
	}

	submitted, err := gw.SubmitEscrowCreate(ctx, tx)
	if err != nil {
		return false, fmt.Errorf("%w: escrow create for request %s: %v",
			model.ErrLedgerUnavailable, req.Id, err)
	}

	applied, err := c.requests.TransitionIfUnescrowed(req.Id, repository.EscrowFields{
		Sequence:     submitted.Sequence,
		TxHash:       submitted.TxHash,
		CreatedAt:    now,
		ReleaseAfter: finishAfter,
	})
	if err != nil {
		return false, fmt.Errorf("failed to record escrow for request %s: %w", req.Id, err)
	}
	if !applied {
		// 其他进程已抢先入账，丢弃本次提交的记账信息
		return false, fmt.Errorf("%w: escrow for request %s already recorded, tx %s discarded",
			model.ErrGuardConflict, req.Id, submitted.TxHash)
	}

	logger.Info("Escrow created for request %s with sequence %d, hash %s",
		req.Id, submitted.Sequence, submitted.TxHash)
	return true, nil
}
