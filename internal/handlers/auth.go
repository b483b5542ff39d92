package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"blogd/internal/auth"
	"blogd/internal/middleware"
	"blogd/internal/models"
	"blogd/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	users    *store.UserStore
	denylist *auth.Denylist
	secret   []byte
	tokenTTL time.Duration
}

// NewAuth creates a new Auth handler group.
func NewAuth(users *store.UserStore, denylist *auth.Denylist, secret []byte, tokenTTL time.Duration) *Auth {
	return &Auth{
		users:    users,
		denylist: denylist,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totpCode"`
}

// tokenResponse is the payload returned by register and login.
type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new account and returns a bearer token.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := checkRules(registerRules, map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	}); len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	user, err := a.users.Create(strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), req.Password, models.RoleUser)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			respondError(w, http.StatusBadRequest, "An account with this email already exists")
			return
		}
		respondServerError(w, err)
		return
	}

	token, err := auth.IssueToken(user.ID, string(user.Role), a.secret, a.tokenTTL)
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondData(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

// Login verifies credentials (and the TOTP code when 2FA is enabled) and
// returns a bearer token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := checkRules(loginRules, map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}); len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	user, err := a.users.FindByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		respondServerError(w, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if user.TOTPEnabled {
		if user.TOTPSecret == nil || !totp.Validate(strings.TrimSpace(req.TOTPCode), *user.TOTPSecret) {
			respondError(w, http.StatusUnauthorized, "Invalid two-factor code")
			return
		}
	}

	token, err := auth.IssueToken(user.ID, string(user.Role), a.secret, a.tokenTTL)
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondData(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

// Me returns the authenticated user's account.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	user, err := a.users.FindByID(ident.UserID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}
	respondData(w, http.StatusOK, user)
}

type profileRequest struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// UpdateProfile changes the caller's display name and avatar.
func (a *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := checkRules(profileRules, map[string]string{"name": req.Name}); len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	current, err := a.users.FindByID(ident.UserID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if current == nil {
		respondError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	avatar := current.Avatar
	if req.Avatar != nil {
		avatar = *req.Avatar
	}

	user, err := a.users.UpdateProfile(ident.UserID, strings.TrimSpace(req.Name), avatar)
	if err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// Logout revokes the presented token until its natural expiry.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if err := a.denylist.Revoke(r.Context(), ident.TokenID, ident.TokenExpiry); err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{})
}

// twoFASetupResponse carries everything a client needs to enroll an
// authenticator app.
type twoFASetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode"` // base64-encoded PNG
}

// TwoFASetup generates a TOTP secret for the caller and returns the
// enrollment QR code. The secret stays inactive until verified.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	user, err := a.users.FindByID(ident.UserID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "blogd",
		AccountName: user.Email,
	})
	if err != nil {
		respondServerError(w, err)
		return
	}

	if err := a.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		respondServerError(w, err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondData(w, http.StatusOK, twoFASetupResponse{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRCode:     base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type twoFAVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify confirms the enrollment code and switches 2FA on for the
// caller's account.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())

	var req twoFAVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.users.FindByID(ident.UserID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}
	if user.TOTPSecret == nil {
		respondError(w, http.StatusBadRequest, "Two-factor setup has not been started")
		return
	}

	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		respondError(w, http.StatusBadRequest, "Invalid two-factor code")
		return
	}

	if err := a.users.EnableTOTP(user.ID); err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"enabled": true})
}
