package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"allegro_dev_v1_202608/internal/api/dto"
	"allegro_dev_v1_202608/internal/service"
)

// OrderController 订单控制器
type OrderController struct {
	svc *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(svc *service.OrderService) *OrderController {
	return &OrderController{svc: svc}
}

// Sync
// @Summary 同步订单
// @Description 拉取 Allegro 订单事件流并落库，返回本次摄取报告
// @Tags Order (订单模块)
// @Accept json
// @Produce json
// @Param owner_id query int true "账号 ID (Database Primary Key)"
// @Success 200 {object} dto.SyncOrdersResponse "摄取报告"
// @Failure 400 {string} string "错误信息"
// @Router /api/orders/sync [post]
func (c *OrderController) Sync(ctx *gin.Context) {
	ownerID, err := strconv.ParseInt(ctx.Query("owner_id"), 10, 64)
	if err != nil || ownerID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "owner_id 必须是正整数"})
		return
	}

	result, err := c.svc.SyncOrders(ctx.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, service.ErrNoCredential) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":  "同步失败",
			"detail": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// List
// @Summary 订单列表
// @Description 查询本地订单，支持按账号/状态/日期筛选
// @Tags Order (订单模块)
// @Accept json
// @Produce json
// @Param owner_id query int false "账号 ID"
// @Param status query string false "订单状态"
// @Param start_date query string false "开始日期 2006-01-02"
// @Param end_date query string false "结束日期 2006-01-02"
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} dto.ListOrdersResponse "订单列表"
// @Router /api/orders [get]
func (c *OrderController) List(ctx *gin.Context) {
	var req dto.ListOrdersRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := c.svc.ListOrders(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Detail
// @Summary 订单详情
// @Description 本地订单详情，含买家与订单行
// @Tags Order (订单模块)
// @Accept json
// @Produce json
// @Param id path int true "订单 ID"
// @Success 200 {object} dto.OrderDetailResponse "订单详情"
// @Failure 404 {string} string "订单不存在"
// @Router /api/orders/{id} [get]
func (c *OrderController) Detail(ctx *gin.Context) {
	orderID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "订单 ID 必须是正整数"})
		return
	}

	resp, err := c.svc.GetOrderDetail(ctx.Request.Context(), orderID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
