package task

import (
	"context"
	"time"

	"github.com/blues/des/internal/config"
	"github.com/blues/des/internal/escrow"
	"github.com/blues/des/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// EscrowFinishJob 托管释放扫描任务
type EscrowFinishJob struct {
	finisher *escrow.Finisher
	config   *config.Config
}

// NewEscrowFinishJob 创建托管释放扫描任务
func NewEscrowFinishJob(finisher *escrow.Finisher, cfg *config.Config) *EscrowFinishJob {
	return &EscrowFinishJob{
		finisher: finisher,
		config:   cfg,
	}
}

// GetName 获取任务名称
func (j *EscrowFinishJob) GetName() string {
	return "escrow_finish_sweeper"
}

// GetSchedule 获取调度配置
func (j *EscrowFinishJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.FinishInterval) * time.Second)
}

// Execute 执行任务
func (j *EscrowFinishJob) Execute() {
	logger.Info("Starting escrow finish sweep")

	if _, err := j.finisher.Sweep(context.Background()); err != nil {
		logger.Error("Escrow finish sweep aborted: %v", err)
	}
}
