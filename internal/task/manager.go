package task

import (
	"github.com/blues/des/internal/config"
	"github.com/blues/des/internal/escrow"
	"github.com/blues/des/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	creator   *escrow.Creator
	finisher  *escrow.Finisher
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(creator *escrow.Creator, finisher *escrow.Finisher, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		creator:   creator,
		finisher:  finisher,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(creator *escrow.Creator, finisher *escrow.Finisher, cfg *config.Config) *Manager {
	manager := NewManager(creator, finisher, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// job 可调度任务
type job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	m.registerJob(NewEscrowCreateJob(m.creator, m.config))
	m.registerJob(NewEscrowFinishJob(m.finisher, m.config))
}

// registerJob 注册单个任务，同一任务不允许重叠执行
func (m *Manager) registerJob(j job) {
	_, err := m.scheduler.NewJob(
		j.GetSchedule(),
		gocron.NewTask(j.Execute),
		gocron.WithName(j.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", j.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
