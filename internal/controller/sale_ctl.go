package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"allegro_dev_v1_202608/internal/service"
)

// SaleController 发布前置数据控制器
type SaleController struct {
	svc *service.SaleService
}

// NewSaleController 创建销售辅助控制器
func NewSaleController(svc *service.SaleService) *SaleController {
	return &SaleController{svc: svc}
}

// ownerID 解析公共的 owner_id 参数，非法时直接写响应并返回 false
func (c *SaleController) ownerID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Query("owner_id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "owner_id 必须是正整数"})
		return 0, false
	}
	return id, true
}

// ShippingRates
// @Summary 运费模板列表
// @Description 实时拉取卖家账号下的运费模板
// @Tags Sale (销售辅助)
// @Accept json
// @Produce json
// @Param owner_id query int true "账号 ID"
// @Success 200 {object} map[string]interface{} "运费模板列表"
// @Router /api/sale/shipping-rates [get]
func (c *SaleController) ShippingRates(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	rates, err := c.svc.ListShippingRates(ctx.Request.Context(), ownerID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"shipping_rates": rates})
}

// SearchCategories
// @Summary 搜索类目
// @Description 按名称实时搜索 Allegro 类目，关键字至少 2 个字符
// @Tags Sale (销售辅助)
// @Accept json
// @Produce json
// @Param owner_id query int true "账号 ID"
// @Param q query string true "搜索关键字"
// @Success 200 {object} map[string]interface{} "类目列表"
// @Router /api/sale/categories [get]
func (c *SaleController) SearchCategories(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	categories, err := c.svc.SearchCategories(ctx.Request.Context(), ownerID, ctx.Query("q"))
	if err != nil {
		if errors.Is(err, service.ErrQueryTooShort) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CategoryParameters
// @Summary 类目参数模板
// @Description 拉取类目参数模板并原样透传给前端渲染动态表单
// @Tags Sale (销售辅助)
// @Accept json
// @Produce json
// @Param owner_id query int true "账号 ID"
// @Param id path string true "类目 ID"
// @Success 200 {object} map[string]interface{} "参数模板"
// @Router /api/sale/categories/{id}/parameters [get]
func (c *SaleController) CategoryParameters(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	raw, err := c.svc.GetCategoryParameters(ctx.Request.Context(), ownerID, ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.Data(http.StatusOK, "application/json", raw)
}

// writeError 统一的下游错误响应
func (c *SaleController) writeError(ctx *gin.Context, err error) {
	if errors.Is(err, service.ErrNoCredential) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
