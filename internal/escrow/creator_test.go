package escrow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/blues/des/internal/config"
	"github.com/blues/des/internal/model"
	"github.com/blues/des/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTaskConfig() config.TaskConfig {
	return config.TaskConfig{
		CreateInterval: 60,
		FinishInterval: 300,
		ReleaseWindow:  24 * 60 * 60,
	}
}

func TestSweepCreatesEscrowWhenFunded(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)
	req := seedRequest(t, repo, "rEscrowFunded")

	gw := newFakeGateway()
	gw.setBalance("rEscrowFunded", 100)

	creator := NewCreator(repo, &fakeDialer{gw: gw}, testTaskConfig())

	result, err := creator.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Scanned)
	assert.Equal(t, int64(1), result.Created)

	got, err := repo.Get(req.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusEscrowCreated, got.Status)
	assert.NotZero(t, got.EscrowSequence)
	assert.NotEmpty(t, got.EscrowTxHash)
	require.NotNil(t, got.ReleaseAfter)
	require.NotNil(t, got.EscrowCreatedAt)

	// 释放时间等于创建时间加窗口
	assert.WithinDuration(t,
		got.EscrowCreatedAt.Add(24*time.Hour), *got.ReleaseAfter, time.Second)
}

func TestSweepSkipsUnderfundedRequest(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)
	req := seedRequest(t, repo, "rEscrowPoor")

	gw := newFakeGateway()
	gw.setBalance("rEscrowPoor", 99)

	creator := NewCreator(repo, &fakeDialer{gw: gw}, testTaskConfig())

	result, err := creator.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Created)
	assert.Zero(t, gw.escrowCreates())

	got, err := repo.Get(req.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusOpen, got.Status)
	assert.Zero(t, got.EscrowSequence)
}

func TestSweepSkipsUnprovisionedRequest(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)
	seedRequest(t, repo, "") // 托管账户未就绪

	gw := newFakeGateway()
	creator := NewCreator(repo, &fakeDialer{gw: gw}, testTaskConfig())

	result, err := creator.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Scanned)
	assert.Equal(t, int64(0), result.Created)
	assert.Zero(t, gw.escrowCreates())
}

func TestSweepIsolatesBalanceFailures(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)
	broken := seedRequest(t, repo, "rEscrowBroken")
	healthy := seedRequest(t, repo, "rEscrowHealthy")

	gw := newFakeGateway()
	gw.balanceErr["rEscrowBroken"] = context.DeadlineExceeded
	gw.setBalance("rEscrowHealthy", 100)

	creator := NewCreator(repo, &fakeDialer{gw: gw}, testTaskConfig())

	// 单个请求的余额查询失败不能拖垮整轮扫描
	result, err := creator.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Scanned)
	assert.Equal(t, int64(1), result.Created)

	got, err := repo.Get(healthy.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusEscrowCreated, got.Status)

	got, err = repo.Get(broken.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusOpen, got.Status)
}

func TestDoubleSweepRecordsSingleSequence(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)
	req := seedRequest(t, repo, "rEscrowFunded")

	gw := newFakeGateway()
	gw.setBalance("rEscrowFunded", 100)

	creator := NewCreator(repo, &fakeDialer{gw: gw}, testTaskConfig())

	first, err := creator.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Created)

	second, err := creator.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Created)

	got, err := repo.Get(req.Id)
	require.NoError(t, err)
	assert.Equal(t, uint32(101), got.EscrowSequence)
	assert.Equal(t, 1, gw.escrowCreates())
}

func TestConcurrentProcessRequestSubmitsOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)
	req := seedRequest(t, repo, "rEscrowFunded")

	gw := newFakeGateway()
	gw.setBalance("rEscrowFunded", 100)

	creator := NewCreator(repo, &fakeDialer{gw: gw}, testTaskConfig())

	// 内联路径与定时扫描并发到达：请求级锁串行化后只允许一次链上提交
	const callers = 8
	var wg sync.WaitGroup
	created := make([]bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := creator.ProcessRequest(context.Background(), req)
			assert.NoError(t, err)
			created[i] = ok
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range created {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, gw.escrowCreates())
}

func TestSweepAbortsWhenStoreUnavailable(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	creator := NewCreator(repo, &fakeDialer{gw: newFakeGateway()}, testTaskConfig())

	_, err = creator.Sweep(context.Background())
	assert.Error(t, err)
}
