package handler

import (
	"net/http"

	"github.com/blues/des/internal/logic"
	"github.com/gin-gonic/gin"
)

// DonationHandler 捐款处理器
type DonationHandler struct {
	donationLogic *logic.DonationLogic
}

// NewDonationHandler 创建捐款处理器
func NewDonationHandler(donationLogic *logic.DonationLogic) *DonationHandler {
	return &DonationHandler{
		donationLogic: donationLogic,
	}
}

// Donate 接收一笔捐款
func (h *DonationHandler) Donate(c *gin.Context) {
	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	request, err := h.donationLogic.Donate(c.Request.Context(), req.RequestId, req.DonorId, req.Amount)
	if err != nil {
		RespondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "捐款成功", request)
}
