package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// WsDialer 基于 websocket 的网关工厂
type WsDialer struct {
	url     string
	timeout time.Duration
}

// NewWsDialer 创建网关工厂
func NewWsDialer(url string, timeout time.Duration) *WsDialer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WsDialer{url: url, timeout: timeout}
}

// Dial 建立新连接
func (d *WsDialer) Dial(ctx context.Context) (Gateway, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ledger at %s: %w", d.url, err)
	}
	return &Client{conn: conn, timeout: d.timeout}, nil
}

// Client rippled websocket API 客户端。同一连接上的请求串行执行。
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration
	nextId  uint64
}

// Close 断开连接
func (c *Client) Close() error {
	return c.conn.Close()
}

// wsEnvelope rippled 响应信封
type wsEnvelope struct {
	Id           uint64          `json:"id"`
	Status       string          `json:"status"`
	Type         string          `json:"type"`
	Result       json.RawMessage `json:"result"`
	Error        string          `json:"error"`
	ErrorMessage string          `json:"error_message"`
}

// request 发送一条命令并等待对应ID的响应
func (c *Client) request(ctx context.Context, cmd map[string]interface{}) (json.RawMessage, error) {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.nextId++
	cmd["id"] = c.nextId

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := c.conn.WriteJSON(cmd); err != nil {
		return nil, fmt.Errorf("failed to send ledger command: %w", err)
	}

	for {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger response: %w", err)
		}

		var env wsEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("malformed ledger response: %w", err)
		}
		// 跳过订阅推送等与本次请求无关的消息
		if env.Type != "response" || env.Id != c.nextId {
			continue
		}

		if env.Status != "success" {
			if env.Error == "actNotFound" {
				return nil, ErrAccountNotFound
			}
			return nil, fmt.Errorf("ledger command failed: %s (%s)", env.Error, env.ErrorMessage)
		}
		return env.Result, nil
	}
}

// AccountBalance 查询已验证账本上的账户余额
func (c *Client) AccountBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	result, err := c.request(ctx, map[string]interface{}{
		"command":      "account_info",
		"account":      address,
		"ledger_index": "validated",
	})
	if err != nil {
		return decimal.Zero, err
	}

	var out struct {
		AccountData struct {
			Balance string `json:"Balance"`
		} `json:"account_data"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return decimal.Zero, fmt.Errorf("malformed account_info result: %w", err)
	}
	return ParseDrops(out.AccountData.Balance)
}

// SubmitEscrowCreate 提交托管创建交易
func (c *Client) SubmitEscrowCreate(ctx context.Context, tx EscrowCreateTx) (*SubmitResult, error) {
	drops, err := XRPToDrops(tx.Amount)
	if err != nil {
		return nil, err
	}

	txJSON := map[string]interface{}{
		"TransactionType": "EscrowCreate",
		"Account":         tx.Account,
		"Amount":          strconv.FormatInt(drops, 10),
		"Destination":     tx.Destination,
		"FinishAfter":     tx.FinishAfter,
	}
	if tx.CancelAfter > 0 {
		txJSON["CancelAfter"] = tx.CancelAfter
	}
	return c.submit(ctx, txJSON, tx.Secret)
}

// SubmitEscrowFinish 提交托管释放交易
func (c *Client) SubmitEscrowFinish(ctx context.Context, tx EscrowFinishTx) (*SubmitResult, error) {
	txJSON := map[string]interface{}{
		"TransactionType": "EscrowFinish",
		"Account":         tx.Owner,
		"Owner":           tx.Owner,
		"OfferSequence":   tx.OfferSequence,
	}
	return c.submit(ctx, txJSON, tx.Secret)
}

// SubmitPayment 提交转账交易
func (c *Client) SubmitPayment(ctx context.Context, tx PaymentTx) (*SubmitResult, error) {
	drops, err := XRPToDrops(tx.Amount)
	if err != nil {
		return nil, err
	}

	txJSON := map[string]interface{}{
		"TransactionType": "Payment",
		"Account":         tx.Account,
		"Amount":          strconv.FormatInt(drops, 10),
		"Destination":     tx.Destination,
	}
	return c.submit(ctx, txJSON, tx.Secret)
}

// submit 签名并提交交易（rippled 代签模式），要求交易立即进入应用队列
func (c *Client) submit(ctx context.Context, txJSON map[string]interface{}, secret string) (*SubmitResult, error) {
	result, err := c.request(ctx, map[string]interface{}{
		"command":   "submit",
		"secret":    secret,
		"tx_json":   txJSON,
		"fail_hard": true,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		EngineResult        string `json:"engine_result"`
		EngineResultMessage string `json:"engine_result_message"`
		TxJSON              struct {
			Hash     string `json:"hash"`
			Sequence uint32 `json:"Sequence"`
		} `json:"tx_json"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("malformed submit result: %w", err)
	}
	if out.EngineResult != "tesSUCCESS" {
		return nil, fmt.Errorf("transaction rejected: %s (%s)",
			out.EngineResult, out.EngineResultMessage)
	}
	return &SubmitResult{Sequence: out.TxJSON.Sequence, TxHash: out.TxJSON.Hash}, nil
}
