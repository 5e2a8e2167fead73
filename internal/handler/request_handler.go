package handler

import (
	"net/http"

	"github.com/blues/des/internal/logic"
	"github.com/gin-gonic/gin"
)

// RequestHandler 捐助请求处理器
type RequestHandler struct {
	requestLogic *logic.RequestLogic
}

// NewRequestHandler 创建捐助请求处理器
func NewRequestHandler(requestLogic *logic.RequestLogic) *RequestHandler {
	return &RequestHandler{
		requestLogic: requestLogic,
	}
}

// CreateRequest 创建捐助请求
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req CreateFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	request, err := h.requestLogic.CreateRequest(c.Request.Context(), logic.CreateRequestInput{
		BeneficiaryAddress: req.BeneficiaryAddress,
		BeneficiaryUserId:  req.BeneficiaryUserId,
		EstimatedAmount:    req.EstimatedAmount,
		BillText:           req.BillText,
		InsuranceName:      req.InsuranceName,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "捐助请求创建成功", request)
}

// GetRequest 查询捐助请求
func (h *RequestHandler) GetRequest(c *gin.Context) {
	request, err := h.requestLogic.GetRequest(c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取捐助请求成功", request)
}
