package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"allegro_dev_v1_202608/internal/api/dto"
	"allegro_dev_v1_202608/internal/service"
)

// UserController 系统用户控制器
type UserController struct {
	svc *service.UserService
}

// NewUserController 创建用户控制器
func NewUserController(svc *service.UserService) *UserController {
	return &UserController{svc: svc}
}

// Login
// @Summary 用户登录
// @Description 用户名密码登录，返回 JWT access token
// @Tags User (用户模块)
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录请求"
// @Success 200 {object} dto.LoginResponse "登录成功"
// @Failure 401 {string} string "用户名或密码错误"
// @Router /api/users/login [post]
func (c *UserController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := c.svc.Login(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserDisabled):
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败"})
		}
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Create
// @Summary 创建用户
// @Description 管理员创建运营账号
// @Tags User (用户模块)
// @Accept json
// @Produce json
// @Param body body dto.CreateUserRequest true "创建请求"
// @Success 200 {object} dto.UserInfo "创建成功"
// @Failure 409 {string} string "用户名已存在"
// @Router /api/users [post]
func (c *UserController) Create(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := c.svc.CreateUser(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameExists) {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "创建失败"})
		return
	}

	ctx.JSON(http.StatusOK, info)
}
