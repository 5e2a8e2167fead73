package repository

import (
	"errors"
	"time"

	"github.com/blues/des/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RequestRepository 捐助请求存储
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository 创建捐助请求存储
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create 创建捐助请求
func (r *RequestRepository) Create(req *model.FundingRequest) error {
	return r.db.Create(req).Error
}

// Get 按ID查询捐助请求
func (r *RequestRepository) Get(id string) (*model.FundingRequest, error) {
	var req model.FundingRequest
	if err := r.db.First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ListOpenOrPending 查询尚未创建托管的请求
func (r *RequestRepository) ListOpenOrPending() ([]model.FundingRequest, error) {
	var requests []model.FundingRequest
	err := r.db.Where("status IN ?", []model.RequestStatus{
		model.RequestStatusOpen,
		model.RequestStatusEscrowPending,
	}).Find(&requests).Error
	return requests, err
}

// ListEscrowCreated 查询已托管待结算的请求
func (r *RequestRepository) ListEscrowCreated() ([]model.FundingRequest, error) {
	var requests []model.FundingRequest
	err := r.db.Where("status = ? AND escrow_finish_tx_hash = ''",
		model.RequestStatusEscrowCreated).Find(&requests).Error
	return requests, err
}

// AppendPledge 追加捐款记录
func (r *RequestRepository) AppendPledge(pledge *model.Pledge) error {
	return r.db.Create(pledge).Error
}

// ListPledges 查询请求下的捐款记录
func (r *RequestRepository) ListPledges(requestId string) ([]model.Pledge, error) {
	var pledges []model.Pledge
	err := r.db.Where("request_id = ?", requestId).
		Order("created_at ASC").Find(&pledges).Error
	return pledges, err
}

// IncrementPledgedTotal 累加已捐总额，只增不减
func (r *RequestRepository) IncrementPledgedTotal(id string, amount decimal.Decimal) error {
	return r.db.Model(&model.FundingRequest{}).Where("id = ?", id).
		Update("pledged_total", gorm.Expr("pledged_total + ?", amount)).Error
}

// EscrowFields 托管创建成功后写入的字段
type EscrowFields struct {
	Sequence     uint32
	TxHash       string
	CreatedAt    time.Time
	ReleaseAfter time.Time
}

// TransitionIfUnescrowed 原子写入托管字段，仅当尚未创建托管时生效。
// 返回 false 表示其他调用方已抢先完成转换。
func (r *RequestRepository) TransitionIfUnescrowed(id string, fields EscrowFields) (bool, error) {
	res := r.db.Model(&model.FundingRequest{}).
		Where("id = ? AND escrow_sequence = 0", id).
		Updates(map[string]interface{}{
			"status":            model.RequestStatusEscrowCreated,
			"escrow_sequence":   fields.Sequence,
			"escrow_tx_hash":    fields.TxHash,
			"escrow_created_at": fields.CreatedAt,
			"release_after":     fields.ReleaseAfter,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FinishFields 托管释放成功后写入的字段
type FinishFields struct {
	FinishTxHash string
}

// TransitionIfUnfinished 原子写入结算字段，仅当尚未结算时生效。
// 返回 false 表示其他调用方已抢先完成结算。
func (r *RequestRepository) TransitionIfUnfinished(id string, fields FinishFields) (bool, error) {
	res := r.db.Model(&model.FundingRequest{}).
		Where("id = ? AND escrow_finish_tx_hash = ''", id).
		Updates(map[string]interface{}{
			"status":                model.RequestStatusSettled,
			"escrow_finish_tx_hash": fields.FinishTxHash,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
