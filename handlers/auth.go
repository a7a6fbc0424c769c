package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/config"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/sessions"
	"github.com/quillpress/blog-api/internal/tokens"
	"github.com/quillpress/blog-api/internal/users"
	"github.com/quillpress/blog-api/pkg/logger"
	"github.com/quillpress/blog-api/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgInvalidRefresh = "Invalid refresh token"

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         config.JWTConfig
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
	blacklist   *sessions.Blacklist
	verifier    *tokens.Verifier
}

func NewAuthHandler(cfg config.JWTConfig, u *users.Service, s *sessions.Service, bl *sessions.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, sessionsSvc: s, blacklist: bl, verifier: tokens.NewVerifier(cfg)}
}

// Register routes under /auth. auth guards logout and me.
func (h *AuthHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/register", h.SignUp)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", auth, h.Logout)
	a.GET("/me", auth, h.Me)
}

// issue creates an access token and a refresh session for u.
func (h *AuthHandler) issue(c *gin.Context, status int, u *models.User) {
	access, err := tokens.GenerateAccessToken(h.cfg, u)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	refresh, err := h.sessionsSvc.CreateSession(c.Request.Context(), u.ID.Hex(), h.cfg.RefreshTokenTTL)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(status, gin.H{"success": true, "data": gin.H{"token": access, "refreshToken": refresh, "user": u}})
}

// SignUp creates a local account and logs it in.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var in users.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Abort(c, apierr.BadRequest("Invalid request body", err))
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), in)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	logger.Infof("registered user %s", u.ID.Hex())
	h.issue(c, http.StatusCreated, u)
}

// Login exchanges email and password for tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var in users.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Abort(c, apierr.BadRequest("Invalid request body", err))
		return
	}
	u, err := h.usersSvc.Authenticate(c.Request.Context(), in)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	h.issue(c, http.StatusOK, u)
}

// Refresh accepts a refresh token and returns a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Abort(c, apierr.BadRequest("Invalid request body", err))
		return
	}
	ctx := c.Request.Context()
	sess, err := h.sessionsSvc.ValidateRefresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			err = apierr.Unauthenticated(msgInvalidRefresh)
		}
		apierr.Abort(c, err)
		return
	}
	id, err := primitive.ObjectIDFromHex(sess.UserID)
	if err != nil {
		apierr.Abort(c, apierr.Unauthenticated(msgInvalidRefresh))
		return
	}
	u, err := h.usersSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			_ = h.sessionsSvc.DeleteRefresh(ctx, req.RefreshToken)
			err = apierr.Unauthenticated(msgInvalidRefresh)
		}
		apierr.Abort(c, err)
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"token": access}})
}

// Logout revokes the presented access token and drops the refresh session when one is given.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierr.Abort(c, apierr.BadRequest("Invalid request body", err))
		return
	}
	ctx := c.Request.Context()
	raw := middleware.RawToken(c)
	ttl := h.verifier.RemainingTTL(raw)
	if ttl == 0 {
		ttl = h.cfg.AccessTokenTTL
	}
	if err := h.blacklist.Add(ctx, raw, ttl); err != nil {
		apierr.Abort(c, err)
		return
	}
	if req.RefreshToken != "" {
		if err := h.sessionsSvc.DeleteRefresh(ctx, req.RefreshToken); err != nil {
			apierr.Abort(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.Abort(c, apierr.Unauthenticated("Not authorized to access this route"))
		return
	}
	u, err := h.usersSvc.GetByID(c.Request.Context(), id.ID)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": u})
}
