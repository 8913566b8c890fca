package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"allegro_dev_v1_202608/internal/api/dto"
	"allegro_dev_v1_202608/internal/service"
)

// AuthController Allegro 授权控制器
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController 创建授权控制器
func NewAuthController(s *service.AuthService) *AuthController {
	return &AuthController{authService: s}
}

// Login
// @Summary 获取 Allegro 授权链接
// @Description 为指定账号生成带 PKCE 的 OAuth 授权跳转链接
// @Tags Auth (授权模块)
// @Accept json
// @Produce json
// @Param owner_id query int true "账号 ID (Database Primary Key)"
// @Success 200 {object} dto.LoginURLResponse "授权链接"
// @Failure 400 {string} string "错误信息"
// @Router /api/oauth/login [get]
func (ctrl *AuthController) Login(c *gin.Context) {
	ownerID, err := strconv.ParseInt(c.Query("owner_id"), 10, 64)
	if err != nil || ownerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id 必须是正整数"})
		return
	}

	url, err := ctrl.authService.GenerateLoginURL(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "生成授权链接失败",
			"detail": err.Error(),
		})
		return
	}

	// 前端自行跳转或复制链接
	c.JSON(http.StatusOK, dto.LoginURLResponse{AuthURL: url})
}

// Callback
// @Summary Allegro 授权回调
// @Description 接收 Allegro 返回的 code 和 state，换取 Token 并入库
// @Tags Auth (授权模块)
// @Accept json
// @Produce json
// @Param code query string true "授权码"
// @Param state query string true "安全校验码"
// @Success 200 {object} dto.CallbackResponse "授权成功信息"
// @Failure 400 {object} map[string]string "拒绝授权/参数错误/会话过期"
// @Router /api/oauth/callback [get]
func (ctrl *AuthController) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	errParam := c.Query("error")

	if errParam != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户拒绝了授权", "allegro_msg": errParam})
		return
	}

	cred, err := ctrl.authService.HandleCallback(c.Request.Context(), code, state)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCode), errors.Is(err, service.ErrSessionExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  "授权失败",
				"detail": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, dto.CallbackResponse{
		OwnerID:        cred.OwnerID,
		TokenExpiresAt: cred.TokenExpiresAt,
	})
}

// Refresh
// @Summary 刷新账号 Token
// @Description 手动强制刷新指定账号的 access token
// @Tags Auth (授权模块)
// @Accept json
// @Produce json
// @Param owner_id query int true "账号 ID (Database Primary Key)"
// @Success 200 {object} map[string]interface{} "成功消息"
// @Failure 400 {string} string "错误信息"
// @Router /api/oauth/refresh [post]
func (ctrl *AuthController) Refresh(c *gin.Context) {
	ownerID, err := strconv.ParseInt(c.Query("owner_id"), 10, 64)
	if err != nil || ownerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id 必须是正整数"})
		return
	}

	if err := ctrl.authService.RefreshOwnerToken(c.Request.Context(), ownerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "刷新失败",
			"detail": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "刷新成功"})
}

// RefreshAll
// @Summary 批量刷新即将过期的 Token
// @Description 扫描一小时内过期的凭证并逐个刷新，返回成功/失败计数
// @Tags Auth (授权模块)
// @Accept json
// @Produce json
// @Success 200 {object} dto.RefreshResultResponse "刷新结果"
// @Router /api/oauth/refresh-all [post]
func (ctrl *AuthController) RefreshAll(c *gin.Context) {
	refreshed, failed := ctrl.authService.RefreshExpiringCredentials(c.Request.Context(), time.Now(), time.Hour)
	c.JSON(http.StatusOK, dto.RefreshResultResponse{
		Refreshed: refreshed,
		Failed:    failed,
	})
}
