package task

import (
	"context"
	"time"

	"github.com/blues/des/internal/config"
	"github.com/blues/des/internal/escrow"
	"github.com/blues/des/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// EscrowCreateJob 托管创建扫描任务
type EscrowCreateJob struct {
	creator *escrow.Creator
	config  *config.Config
}

// NewEscrowCreateJob 创建托管创建扫描任务
func NewEscrowCreateJob(creator *escrow.Creator, cfg *config.Config) *EscrowCreateJob {
	return &EscrowCreateJob{
		creator: creator,
		config:  cfg,
	}
}

// GetName 获取任务名称
func (j *EscrowCreateJob) GetName() string {
	return "escrow_create_sweeper"
}

// GetSchedule 获取调度配置
func (j *EscrowCreateJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.CreateInterval) * time.Second)
}

// Execute 执行任务
func (j *EscrowCreateJob) Execute() {
	logger.Info("Starting escrow create sweep")

	if _, err := j.creator.Sweep(context.Background()); err != nil {
		logger.Error("Escrow create sweep aborted: %v", err)
	}
}
