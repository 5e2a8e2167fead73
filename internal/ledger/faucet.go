package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FaucetClient 测试网水龙头客户端，生成并注资新账户
type FaucetClient struct {
	url    string
	client *http.Client
}

// NewFaucetClient 创建水龙头客户端
func NewFaucetClient(url string, timeout time.Duration) *FaucetClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &FaucetClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// FundedAccount 水龙头返回的已注资账户
type FundedAccount struct {
	Address string
	Secret  string
}

// Fund 申请一个新的已注资账户
func (f *FaucetClient) Fund(ctx context.Context) (*FundedAccount, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(nil))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("faucet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("faucet returned status %d", resp.StatusCode)
	}

	var out struct {
		Account struct {
			ClassicAddress string `json:"classicAddress"`
			Address        string `json:"address"`
			Secret         string `json:"secret"`
		} `json:"account"`
		Seed string `json:"seed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("malformed faucet response: %w", err)
	}

	address := out.Account.ClassicAddress
	if address == "" {
		address = out.Account.Address
	}
	secret := out.Account.Secret
	if secret == "" {
		secret = out.Seed
	}
	if address == "" || secret == "" {
		return nil, fmt.Errorf("faucet response missing address or secret")
	}
	return &FundedAccount{Address: address, Secret: secret}, nil
}
