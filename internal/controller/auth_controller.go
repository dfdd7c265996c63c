package controller

import (
	"wellbeing_backend/internal/service"
	"wellbeing_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// RegisterRequest defines model for staff registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=wellbeing_officer wellbeing_team course_director"`
}

// Register godoc
// @Summary Register a staff account
// @Description Creates an account with one of the platform roles
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "Registration payload"
// @Success 201 {object} util.Response{data=object} "created"
// @Failure 400 {object} util.Response "invalid payload"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(req.Username, req.Password, req.Role)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"id": user.ID, "username": user.Username, "role": user.Role})
}

// LoginRequest defines model for login
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in
// @Description Verifies credentials and issues a JWT carrying the role claim
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "Credentials"
// @Success 200 {object} util.Response{data=object} "token"
// @Failure 403 {object} util.Response "invalid credentials"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(req.Username, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"token":    token,
		"username": user.Username,
		"role":     user.Role,
	})
}
