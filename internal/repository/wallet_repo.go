package repository

import (
	"errors"

	"github.com/blues/des/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletRepository 用户钱包存储
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository 创建钱包存储
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create 创建钱包
func (r *WalletRepository) Create(wallet *model.Wallet) error {
	return r.db.Create(wallet).Error
}

// Get 按ID查询钱包
func (r *WalletRepository) Get(id string) (*model.Wallet, error) {
	var wallet model.Wallet
	if err := r.db.First(&wallet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// GetByUserId 按用户ID查询钱包
func (r *WalletRepository) GetByUserId(userId string) (*model.Wallet, error) {
	var wallet model.Wallet
	if err := r.db.First(&wallet, "owner_user_id = ?", userId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// UpdateBalance 刷新缓存余额
func (r *WalletRepository) UpdateBalance(id string, balance decimal.Decimal) error {
	return r.db.Model(&model.Wallet{}).Where("id = ?", id).
		Update("balance", balance).Error
}
