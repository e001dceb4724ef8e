package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/utils"
)

// AuthHandler serves staff login, token refresh, logout and account
// creation.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
	Log    logrus.FieldLogger
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type staffReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // OWNER | STAFF, default STAFF
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	TenantID uint64 `json:"tenant_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, TenantID: u.TenantID, Email: u.Email, Role: u.Role}
}

// issue creates an access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret,
		utils.Identity{UserID: u.ID, TenantID: u.TenantID, Role: u.Role}, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, booking.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
	}
	if err != nil {
		return fail(c, h.Log, err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.Log.WithFields(logrus.Fields{"user_id": u.ID, "tenant_id": u.TenantID}).Info("staff logged in")
	return c.JSON(http.StatusOK, resp)
}

// Refresh validates a refresh token, revokes it and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := withTimeout(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, booking.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid refresh"})
	}
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return fail(c, h.Log, err)
	}
	u, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the refresh token in the body, or, when only a valid
// bearer token is supplied, every session of its user.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := withTimeout(c)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return fail(c, h.Log, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	if bearer, ok := middleware.BearerToken(c.Request()); ok {
		id, err := utils.ParseAccessToken(h.Cfg.JWTSecret, bearer)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		}
		if err := h.Tokens.RevokeAllForUser(ctx, id.UserID); err != nil {
			return fail(c, h.Log, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return badRequest(c, "provide Authorization header or refresh_token")
}

// Me echoes the caller's identity.
func (h *AuthHandler) Me(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":   id.UserID,
		"tenant_id": id.TenantID,
		"role":      id.Role,
	})
}

// CreateStaff lets an owner add an account to their own tenant.
func (h *AuthHandler) CreateStaff(c echo.Context) error {
	var req staffReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleStaff
	}
	if role != model.RoleStaff && role != model.RoleOwner {
		return badRequest(c, "role must be OWNER or STAFF")
	}
	u := model.User{
		TenantID: middleware.TenantID(c),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Role:     role,
		IsActive: true,
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return badRequest(c, "valid email required")
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if errors.Is(err, utils.ErrWeakPassword) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return fail(c, h.Log, err)
	}
	u.PasswordHash = hash

	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Users.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, booking.ErrConflict) {
			return c.JSON(http.StatusConflict, errorBody{Error: "email already exists", Code: "conflict"})
		}
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toUserPart(u))
}

// EnsureOwner creates the bootstrap owner account unless its email is
// already registered.
func EnsureOwner(ctx context.Context, users UserStore, b config.Bootstrap, cost int) (created bool, err error) {
	if b.Email == "" {
		return false, nil
	}
	if _, err := users.GetUserByEmail(ctx, b.Email); err == nil {
		return false, nil
	} else if !errors.Is(err, booking.ErrNotFound) {
		return false, err
	}
	hash, err := utils.HashPassword(b.Password, cost)
	if err != nil {
		return false, err
	}
	u := model.User{TenantID: b.TenantID, Email: b.Email, PasswordHash: hash, Role: model.RoleOwner, IsActive: true}
	if err := users.CreateUser(ctx, &u); err != nil {
		return false, err
	}
	return true, nil
}
