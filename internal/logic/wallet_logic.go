package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/blues/des/internal/ledger"
	"github.com/blues/des/internal/logger"
	"github.com/blues/des/internal/model"
	"github.com/blues/des/internal/repository"
)

// WalletLogic 钱包业务逻辑
type WalletLogic struct {
	wallets *repository.WalletRepository
	dialer  ledger.Dialer
	faucet  *ledger.FaucetClient
}

// NewWalletLogic 创建钱包业务逻辑
func NewWalletLogic(wallets *repository.WalletRepository, dialer ledger.Dialer, faucet *ledger.FaucetClient) *WalletLogic {
	return &WalletLogic{
		wallets: wallets,
		dialer:  dialer,
		faucet:  faucet,
	}
}

// Provision 为用户生成并注资一个账本钱包；已有钱包时直接返回
func (l *WalletLogic) Provision(ctx context.Context, userId string) (*model.Wallet, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}

	existing, err := l.wallets.GetByUserId(userId)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	funded, err := l.faucet.Fund(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: faucet: %v", model.ErrLedgerUnavailable, err)
	}

	wallet := &model.Wallet{
		OwnerUserId: userId,
		Address:     funded.Address,
		Secret:      funded.Secret,
	}
	if err := l.wallets.Create(wallet); err != nil {
		return nil, err
	}

	logger.Info("Provisioned wallet %s for user %s at %s", wallet.Id, userId, wallet.Address)
	return wallet, nil
}

// Balance 读穿缓存：回查链上余额并写入钱包记录后返回
func (l *WalletLogic) Balance(ctx context.Context, walletId string) (*model.Wallet, error) {
	wallet, err := l.wallets.Get(walletId)
	if err != nil {
		return nil, err
	}

	gw, err := l.dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrLedgerUnavailable, err)
	}
	defer gw.Close()

	balance, err := gw.AccountBalance(ctx, wallet.Address)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: account %s has never been funded", model.ErrValidation, wallet.Address)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrLedgerUnavailable, err)
	}

	if err := l.wallets.UpdateBalance(wallet.Id, balance); err != nil {
		return nil, err
	}
	wallet.Balance = balance
	return wallet, nil
}
