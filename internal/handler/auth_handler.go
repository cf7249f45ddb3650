package handler

import (
	"errors"
	"net/http"
	"strings"

	"hospital-admission/internal/middleware"
	"hospital-admission/internal/models"
	"hospital-admission/internal/service"
	"hospital-admission/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// homeRoute is where a page login lands when no safe next page is given
const homeRoute = "/patients/admit"

type AuthHandler struct {
	authService   *service.AuthService
	logger        zerolog.Logger
	secureCookies bool
}

func NewAuthHandler(authService *service.AuthService, secureCookies bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin doctor nurse"`
}

// Login handles staff authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.respondWithTokens(c, response)
}

// Refresh issues a new access token from the refresh token cookie
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(middleware.RefreshTokenCookie)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"access_token": accessToken,
	})
}

// Logout revokes the refresh token and clears its cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, err := c.Cookie(middleware.RefreshTokenCookie)
	if err == nil {
		if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
			h.logger.Error().Err(err).Msg("Failed to revoke refresh token")
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to logout")
			return
		}
	}

	h.clearCookies(c)
	utils.MessageResponse(c, "Logged out successfully")
}

// Register creates a staff account; role defaults to nurse
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	if req.Role == "" {
		req.Role = models.RoleNurse
	}

	response, err := h.authService.Register(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.respondWithTokens(c, response)
}

type loginPage struct {
	Username string
	Next     string
	Error    string
}

// LoginForm is the body of the HTML login form
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

// LoginPage renders the staff sign-in form for the HTML pages
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", loginPage{Next: safeNext(c.Query("next"))})
}

// SubmitLogin signs a staff member in from the HTML form, setting the access
// and refresh token cookies, and redirects to the requested page
func (h *AuthHandler) SubmitLogin(c *gin.Context) {
	var form LoginForm
	_ = c.ShouldBind(&form)
	page := loginPage{Username: form.Username, Next: safeNext(form.Next)}

	response, err := h.authService.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		status := http.StatusUnauthorized
		page.Error = "Invalid username or password"
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Error().Err(err).Msg("Page login failed")
			status = http.StatusInternalServerError
			page.Error = "Sign in failed, please try again"
		}
		c.HTML(status, "login.tmpl", page)
		return
	}

	h.setCookies(c, response)
	c.Redirect(http.StatusSeeOther, page.Next)
}

// SubmitLogout signs the staff member out of the HTML pages
func (h *AuthHandler) SubmitLogout(c *gin.Context) {
	if refreshToken, err := c.Cookie(middleware.RefreshTokenCookie); err == nil {
		if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
			h.logger.Error().Err(err).Msg("Failed to revoke refresh token")
		}
	}

	h.clearCookies(c)
	c.Redirect(http.StatusSeeOther, middleware.LoginRoute)
}

// safeNext keeps redirects on this site
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return homeRoute
	}
	return next
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, response *service.LoginResponse) {
	h.setCookies(c, response)
	utils.SuccessResponse(c, gin.H{
		"access_token": response.AccessToken,
		"user":         response.User,
	})
}

// setCookies stores both tokens as HttpOnly SameSite=Strict cookies; the
// access token cookie is what the HTML pages authenticate with
func (h *AuthHandler) setCookies(c *gin.Context, response *service.LoginResponse) {
	h.setRefreshCookie(c, response.RefreshToken, int(utils.GetRefreshTokenExpiry().Seconds()))
	middleware.SetAccessCookie(c, response.AccessToken, int(utils.GetAccessTokenExpiry().Seconds()), h.secureCookies)
}

func (h *AuthHandler) clearCookies(c *gin.Context) {
	h.setRefreshCookie(c, "", -1)
	middleware.SetAccessCookie(c, "", -1, h.secureCookies)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.RefreshTokenCookie, value, maxAge, "/", "", h.secureCookies, true)
}

func (h *AuthHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrRefreshTokenExpired):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("Auth request failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Authentication failed")
	}
}
