// internal/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kanistore/storefront/internal/config"
	"github.com/kanistore/storefront/internal/i18n"
	"github.com/kanistore/storefront/internal/services"
	"github.com/kanistore/storefront/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	jwtConfig   config.JWTConfig
}

func NewAuthHandler(authService *services.AuthService, jwtConfig config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtConfig:   jwtConfig,
	}
}

// POST /api/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.CreatedResponse(c, i18n.KeyAuthRegisterSuccess, user)
}

// POST /api/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err, i18n.KeyUserNotFound)
		return
	}

	h.setTokenCookie(c, authResponse.Token, authResponse.ExpiresIn)
	utils.MessageResponse(c, i18n.KeyAuthLoginSuccess, authResponse)
}

// GET /api/userLogout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	utils.MessageResponse(c, i18n.KeyAuthLogoutSuccess, []interface{}{})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	if h.jwtConfig.CookieSecure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(h.jwtConfig.CookieName, token, maxAge, "/", "", h.jwtConfig.CookieSecure, true)
}
