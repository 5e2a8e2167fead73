package handler

import (
	"net/http"

	"github.com/blues/des/internal/logic"
	"github.com/blues/des/internal/model"
	"github.com/gin-gonic/gin"
)

// WalletHandler 钱包处理器
type WalletHandler struct {
	walletLogic *logic.WalletLogic
}

// NewWalletHandler 创建钱包处理器
func NewWalletHandler(walletLogic *logic.WalletLogic) *WalletHandler {
	return &WalletHandler{
		walletLogic: walletLogic,
	}
}

// CreateWallet 为用户生成并注资钱包
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	wallet, err := h.walletLogic.Provision(c.Request.Context(), req.UserId)
	if err != nil {
		RespondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "钱包创建成功", toWalletResponse(wallet))
}

// GetBalance 读取钱包余额（回查链上并刷新缓存）
func (h *WalletHandler) GetBalance(c *gin.Context) {
	walletId := c.Param("id")

	wallet, err := h.walletLogic.Balance(c.Request.Context(), walletId)
	if err != nil {
		RespondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取余额成功", toWalletResponse(wallet))
}

// toWalletResponse 转换为对外的钱包响应
func toWalletResponse(wallet *model.Wallet) WalletResponse {
	return WalletResponse{
		Id:          wallet.Id,
		OwnerUserId: wallet.OwnerUserId,
		Address:     wallet.Address,
		Balance:     wallet.Balance,
	}
}
