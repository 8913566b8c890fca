package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"allegro_dev_v1_202608/internal/api/dto"
	"allegro_dev_v1_202608/internal/service"
)

// OfferController Offer 发布控制器
type OfferController struct {
	svc *service.OfferService
}

// NewOfferController 创建 Offer 控制器
func NewOfferController(svc *service.OfferService) *OfferController {
	return &OfferController{svc: svc}
}

// Publish
// @Summary 发布 Offer
// @Description 校验表单输入，构建发布请求体并提交到 Allegro，返回受理的 command id
// @Tags Offer (发布模块)
// @Accept json
// @Produce json
// @Param body body dto.OfferCreateRequest true "发布表单"
// @Success 200 {object} dto.PublishOfferResponse "受理结果"
// @Failure 422 {object} map[string]interface{} "逐字段校验错误"
// @Router /api/offers [post]
func (c *OfferController) Publish(ctx *gin.Context) {
	var req dto.OfferCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, fieldErrs := c.svc.BuildPayload(&req)
	if len(fieldErrs) > 0 {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "表单校验未通过",
			"fields": fieldErrs,
		})
		return
	}

	resp, err := c.svc.Publish(ctx.Request.Context(), req.OwnerID, payload)
	if err != nil {
		if errors.Is(err, service.ErrNoCredential) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":  "发布失败",
			"detail": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
