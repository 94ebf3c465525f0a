package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"car-rental-service/internal/auth"
	"car-rental-service/internal/middleware"
	"car-rental-service/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
	log *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.GET("/logout", h.Logout)
	rg.GET("/profile", h.Profile)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err, "")
		return
	}
	c.JSON(http.StatusCreated, u)
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err, "user not found")
		return
	}
	setTokenCookie(c, token, 0)
	c.JSON(http.StatusOK, u)
}

// GET /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, true)
}

// GET /api/profile answers "" when no token cookie is present.
func (h *AuthHandler) Profile(c *gin.Context) {
	res := h.svc.Verify(middleware.TokenFromCookie(c))
	switch res.Status {
	case auth.TokenMissing:
		c.JSON(http.StatusOK, "")
		return
	case auth.TokenValid:
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token " + res.Status.String()})
		return
	}

	u, err := h.svc.Profile(c.Request.Context(), res.UserID)
	if err != nil {
		respondError(c, h.log, err, "user not found")
		return
	}
	c.JSON(http.StatusOK, u)
}

// The frontend is served from another origin, so the cookie must be SameSite=None.
func setTokenCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
