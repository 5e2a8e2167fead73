package handler

import (
	"net/http"

	"github.com/blues/des/internal/escrow"
	"github.com/gin-gonic/gin"
)

// SweepHandler 手动触发扫描的处理器
type SweepHandler struct {
	creator  *escrow.Creator
	finisher *escrow.Finisher
}

// NewSweepHandler 创建扫描处理器
func NewSweepHandler(creator *escrow.Creator, finisher *escrow.Finisher) *SweepHandler {
	return &SweepHandler{
		creator:  creator,
		finisher: finisher,
	}
}

// SweepCreate 手动触发一轮托管创建扫描
func (h *SweepHandler) SweepCreate(c *gin.Context) {
	result, err := h.creator.Sweep(c.Request.Context())
	if err != nil {
		ErrorResponse(c, http.StatusBadGateway, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "托管创建扫描完成", result)
}

// SweepFinish 手动触发一轮托管释放扫描
func (h *SweepHandler) SweepFinish(c *gin.Context) {
	result, err := h.finisher.Sweep(c.Request.Context())
	if err != nil {
		ErrorResponse(c, http.StatusBadGateway, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "托管释放扫描完成", result)
}
