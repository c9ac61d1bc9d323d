package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/pkg/credential"
	"github.com/ekinaktas/klik/pkg/ratelimit"
	"github.com/ekinaktas/klik/services"
)

// AuthHandler, auth endpoint'lerini yöneten struct.
//
// Rate limiting auth endpoint'lerinde handler İÇİNDE uygulanır:
// login/register/reset key'leri IP + email kompozitidir ve body parse
// edilmeden bilinemez. Başarılı login kendi sayacını sıfırlar —
// meşru kullanıcı bloke olmaz.
type AuthHandler struct {
	authService services.AuthService
	limiter     *ratelimit.Limiter
	cookieOpts  credential.Options
}

// NewAuthHandler, constructor.
func NewAuthHandler(authService services.AuthService, limiter *ratelimit.Limiter, cookieOpts credential.Options) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		limiter:     limiter,
		cookieOpts:  cookieOpts,
	}
}

// authResponse, login/register yanıtı. Token body'de de döner —
// cookie kullanamayan API client'ları Bearer header'a koyar.
type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register godoc
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Kayıt limiti: IP + email kompoziti — tek IP'den email taraması da,
	// dağıtık tek-email denemesi de aynı sayaca düşmez ama ikisi de sınırlıdır.
	key := ratelimit.CompositeKey(ratelimit.ExtractIP(r), req.Email)
	if !h.allow(w, r, ratelimit.PolicyRegister, key) {
		return
	}

	user, session, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	credential.Issue(w, session.ID, session.ExpiresAt, h.cookieOpts)
	pkg.JSON(w, http.StatusCreated, authResponse{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	})
}

// Login godoc
// POST /api/auth/login
//
// Rate limiting: IP + email kompozit key ile brute-force koruması.
// Limit aşıldığında 429 + Retry-After döner; başarılı login sayacı sıfırlar.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := ratelimit.CompositeKey(ratelimit.ExtractIP(r), req.Email)
	if !h.allow(w, r, ratelimit.PolicyLogin, key) {
		return
	}

	user, session, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	// Başarılı login bu key'in sayacını temizler.
	h.limiter.Reset(r.Context(), ratelimit.PolicyLogin, key)

	credential.Issue(w, session.ID, session.ExpiresAt, h.cookieOpts)
	pkg.JSON(w, http.StatusOK, authResponse{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	})
}

// Logout godoc
// POST /api/auth/logout — auth gerektirir.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenStr, ok := SessionToken(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "session not found in context")
		return
	}

	if err := h.authService.Logout(r.Context(), tokenStr); err != nil {
		pkg.Error(w, err)
		return
	}

	credential.Clear(w, h.cookieOpts)
	pkg.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Refresh godoc
// POST /api/auth/refresh — auth gerektirir.
// Oturum ömrünü uzatır ve cookie'yi yeni son kullanma tarihiyle yeniden yazar.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tokenStr, ok := SessionToken(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "session not found in context")
		return
	}

	session, err := h.authService.Refresh(r.Context(), tokenStr)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	credential.Issue(w, session.ID, session.ExpiresAt, h.cookieOpts)
	pkg.JSON(w, http.StatusOK, map[string]any{
		"token":      session.ID,
		"expires_at": session.ExpiresAt,
	})
}

// ForgotPassword godoc
// POST /api/auth/forgot-password
// Her zaman generic başarı döner — email'in kayıtlı olup olmadığı sızmaz.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	key := ratelimit.CompositeKey(ratelimit.ExtractIP(r), req.Email)
	if !h.allow(w, r, ratelimit.PolicyPasswordReset, key) {
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

// ResetPassword godoc
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}

// VerifyEmail godoc
// POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), req.Token); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

// ChangePassword godoc
// POST /api/auth/change-password — auth gerektirir.
// Tüm oturumları kapatır ve yeni oturum cookie'si verir.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authService.ChangePassword(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	credential.Issue(w, session.ID, session.ExpiresAt, h.cookieOpts)
	pkg.JSON(w, http.StatusOK, map[string]string{
		"message": "password changed",
		"token":   session.ID,
	})
}

// allow, auth policy kontrolü yapar; reddedildiyse 429'u kendisi yazar.
func (h *AuthHandler) allow(w http.ResponseWriter, r *http.Request, policy ratelimit.Policy, key string) bool {
	result := h.limiter.Check(r.Context(), policy, key)
	if result.Allowed {
		return true
	}

	seconds := ratelimit.RetryAfterSeconds(result.RetryAfter)
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	pkg.ErrorWithMessage(w, http.StatusTooManyRequests, ratelimit.FormatRetryMessage(seconds))
	return false
}
