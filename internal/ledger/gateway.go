package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrAccountNotFound 账本上不存在该账户（从未被注资激活）
var ErrAccountNotFound = errors.New("ledger account not found")

// EscrowCreateTx 托管创建交易参数
type EscrowCreateTx struct {
	Account     string          // 托管账户地址
	Secret      string          // 托管账户密钥
	Amount      decimal.Decimal // XRP
	Destination string          // 受益人地址
	FinishAfter int64           // ripple epoch 秒
	CancelAfter int64           // ripple epoch 秒，0 表示不设置
}

// EscrowFinishTx 托管释放交易参数
type EscrowFinishTx struct {
	Owner         string // 托管账户地址（同时作为交易账户）
	Secret        string
	OfferSequence uint32 // 创建托管的交易序列号
}

// PaymentTx 普通转账交易参数
type PaymentTx struct {
	Account     string
	Secret      string
	Amount      decimal.Decimal // XRP
	Destination string
}

// SubmitResult 交易提交结果
type SubmitResult struct {
	Sequence uint32 // 交易序列号
	TxHash   string
}

// Gateway 账本调用网关。单次逻辑操作内复用一个连接，不做重试，
// 重试策略由调用方（下一轮扫描）负责。
type Gateway interface {
	// AccountBalance 查询账户余额（XRP）
	AccountBalance(ctx context.Context, address string) (decimal.Decimal, error)
	// SubmitEscrowCreate 提交托管创建交易
	SubmitEscrowCreate(ctx context.Context, tx EscrowCreateTx) (*SubmitResult, error)
	// SubmitEscrowFinish 提交托管释放交易
	SubmitEscrowFinish(ctx context.Context, tx EscrowFinishTx) (*SubmitResult, error)
	// SubmitPayment 提交转账交易
	SubmitPayment(ctx context.Context, tx PaymentTx) (*SubmitResult, error)
	// Close 断开连接
	Close() error
}

// Dialer 按逻辑操作获取新连接，避免跨扫描持有共享连接
type Dialer interface {
	Dial(ctx context.Context) (Gateway, error)
}
