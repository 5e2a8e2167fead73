package escrow

import (
	"context"
	"testing"
	"time"

	"github.com/blues/des/internal/model"
	"github.com/blues/des/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// escrowed 将请求置为已托管状态
func escrowed(t *testing.T, repo *repository.RequestRepository, req *model.FundingRequest, createdAt time.Time) {
	t.Helper()

	applied, err := repo.TransitionIfUnescrowed(req.Id, repository.EscrowFields{
		Sequence:     101,
		TxHash:       "CREATE-101",
		CreatedAt:    createdAt,
		ReleaseAfter: createdAt.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.True(t, applied)
}

func TestFinishBeforeReleaseWindowIsNoop(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)
	wallets := repository.NewWalletRepository(db)
	req := seedRequest(t, repo, "rEscrowFunded")

	now := time.Now()
	escrowed(t, repo, req, now)

	gw := newFakeGateway()
	finisher := NewFinisher(repo, wallets, &fakeDialer{gw: gw}, testTaskConfig())
	finisher.now = func() time.Time { return now.Add(23 * time.Hour) }

	result, err := finisher.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Checked)
	assert.Equal(t, int64(0), result.Finished)
	assert.Zero(t, gw.finishCount)

	got, err := repo.Get(req.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusEscrowCreated, got.Status)
	assert.Empty(t, got.EscrowFinishTxHash)
}

func TestFinishAfterReleaseWindowSettlesOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)
	wallets := repository.NewWalletRepository(db)
	req := seedRequest(t, repo, "rEscrowFunded")

	now := time.Now()
	escrowed(t, repo, req, now)

	gw := newFakeGateway()
	gw.setBalance(req.BeneficiaryAddress, 250)

	finisher := NewFinisher(repo, wallets, &fakeDialer{gw: gw}, testTaskConfig())
	finisher.now = func() time.Time { return now.Add(25 * time.Hour) }

	result, err := finisher.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Checked)
	assert.Equal(t, int64(1), result.Finished)

	got, err := repo.Get(req.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusSettled, got.Status)
	assert.Equal(t, "FINISH-101", got.EscrowFinishTxHash)
	assert.Equal(t, []uint32{101}, gw.finishedSeqs)

	// 再跑一轮必须是空操作
	result, err = finisher.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Checked)
	assert.Equal(t, int64(0), result.Finished)
	assert.Equal(t, 1, gw.finishCount)
}

func TestFinishRefreshesBeneficiaryWalletBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)
	wallets := repository.NewWalletRepository(db)
	req := seedRequest(t, repo, "rEscrowFunded")

	wallet := &model.Wallet{
		OwnerUserId: req.BeneficiaryUserId,
		Address:     req.BeneficiaryAddress,
		Secret:      "sBeneficiary",
	}
	require.NoError(t, wallets.Create(wallet))

	now := time.Now()
	escrowed(t, repo, req, now)

	gw := newFakeGateway()
	gw.setBalance(req.BeneficiaryAddress, 250)

	finisher := NewFinisher(repo, wallets, &fakeDialer{gw: gw}, testTaskConfig())
	finisher.now = func() time.Time { return now.Add(25 * time.Hour) }

	_, err := finisher.Sweep(context.Background())
	require.NoError(t, err)

	got, err := wallets.Get(wallet.Id)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(250)),
		"expected 250, got %s", got.Balance)
}

func TestFinishFailureRetriesNextSweep(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)
	wallets := repository.NewWalletRepository(db)
	req := seedRequest(t, repo, "rEscrowFunded")

	now := time.Now()
	escrowed(t, repo, req, now)

	gw := newFakeGateway()
	gw.failSubmit = true

	finisher := NewFinisher(repo, wallets, &fakeDialer{gw: gw}, testTaskConfig())
	finisher.now = func() time.Time { return now.Add(25 * time.Hour) }

	result, err := finisher.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Finished)

	got, err := repo.Get(req.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusEscrowCreated, got.Status)

	// 账本恢复后下一轮扫描完成结算
	gw.failSubmit = false
	gw.setBalance(req.BeneficiaryAddress, 250)

	result, err = finisher.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Finished)
}
