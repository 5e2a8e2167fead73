package escrow

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/blues/des/internal/ledger"
	"github.com/blues/des/internal/model"
	"github.com/blues/des/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// fakeGateway 测试用账本网关
type fakeGateway struct {
	mu sync.Mutex

	balances   map[string]decimal.Decimal
	balanceErr map[string]error

	nextSeq       uint32
	createCount   int
	finishCount   int
	failSubmit    bool
	finishedSeqs  []uint32
	createdEscrow []ledger.EscrowCreateTx
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		balances:   make(map[string]decimal.Decimal),
		balanceErr: make(map[string]error),
		nextSeq:    100,
	}
}

func (g *fakeGateway) AccountBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.balanceErr[address]; ok {
		return decimal.Zero, err
	}
	balance, ok := g.balances[address]
	if !ok {
		return decimal.Zero, ledger.ErrAccountNotFound
	}
	return balance, nil
}

func (g *fakeGateway) SubmitEscrowCreate(ctx context.Context, tx ledger.EscrowCreateTx) (*ledger.SubmitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failSubmit {
		return nil, fmt.Errorf("tecNO_PERMISSION")
	}
	g.createCount++
	g.nextSeq++
	g.createdEscrow = append(g.createdEscrow, tx)
	return &ledger.SubmitResult{
		Sequence: g.nextSeq,
		TxHash:   fmt.Sprintf("CREATE-%d", g.nextSeq),
	}, nil
}

func (g *fakeGateway) SubmitEscrowFinish(ctx context.Context, tx ledger.EscrowFinishTx) (*ledger.SubmitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failSubmit {
		return nil, fmt.Errorf("tecNO_TARGET")
	}
	g.finishCount++
	g.finishedSeqs = append(g.finishedSeqs, tx.OfferSequence)
	return &ledger.SubmitResult{TxHash: fmt.Sprintf("FINISH-%d", tx.OfferSequence)}, nil
}

func (g *fakeGateway) SubmitPayment(ctx context.Context, tx ledger.PaymentTx) (*ledger.SubmitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[tx.Destination] = g.balances[tx.Destination].Add(tx.Amount)
	return &ledger.SubmitResult{TxHash: "PAYMENT"}, nil
}

func (g *fakeGateway) Close() error { return nil }

func (g *fakeGateway) setBalance(address string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[address] = decimal.NewFromInt(amount)
}

func (g *fakeGateway) escrowCreates() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createCount
}

// fakeDialer 每次返回同一个fake网关
type fakeDialer struct {
	gw      *fakeGateway
	dialErr error
}

func (d *fakeDialer) Dial(ctx context.Context) (ledger.Gateway, error) {
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.gw, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return db
}

func seedRequest(t *testing.T, repo *repository.RequestRepository, escrowAddress string) *model.FundingRequest {
	t.Helper()

	req := &model.FundingRequest{
		BeneficiaryAddress: "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH",
		BeneficiaryUserId:  "user-1",
		EscrowAddress:      escrowAddress,
		EscrowSecret:       "sEscrowSecret",
		EstimatedAmount:    decimal.NewFromInt(100),
		Status:             model.RequestStatusOpen,
	}
	require.NoError(t, repo.Create(req))
	return req
}
