package handlers

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"pagecraft/internal/middleware"
	"pagecraft/internal/models"
	"pagecraft/internal/session"
)

// totpIssuer names the account in authenticator apps.
const totpIssuer = "Pagecraft"

// errInvalidCredentials is the uniform login failure message. It does not
// reveal whether the email exists.
const errInvalidCredentials = "invalid email or password"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions SessionStore
	users    UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions SessionStore, users UserStore) *Auth {
	return &Auth{sessions: sessions, users: users}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// authResponse describes the signed-in account. TwoFactorPending is true
// while the session still has to present a TOTP code.
type authResponse struct {
	User             *models.User `json:"user"`
	TwoFactorPending bool         `json:"twoFactorPending"`
}

// Register creates a member account and signs it in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if msg := validateRegistration(in.Email, in.Password, in.DisplayName); msg != "" {
		invalidInput(w, msg)
		return
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(in.Email, "@", 2)[0]
	}

	user, err := a.users.Create(in.Email, in.Password, displayName, models.RoleMember)
	if err != nil {
		writeDomainError(w, r, "register", err)
		return
	}
	if !a.startSession(w, r, user) {
		return
	}
	slog.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{User: user})
}

// Login checks credentials and starts a session. Accounts with TOTP
// enabled get a session that only reaches the 2FA verify endpoint.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}

	user, err := a.users.FindByEmail(strings.TrimSpace(in.Email))
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil || !a.users.CheckPassword(user, in.Password) {
		writeError(w, http.StatusUnauthorized, errInvalidCredentials)
		return
	}
	if !a.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, TwoFactorPending: user.Requires2FA()})
}

// startSession replaces any session on r with a fresh one for user.
func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, user *models.User) bool {
	_, err := a.sessions.Replace(r.Context(), w, r, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TOTPEnabled: user.Requires2FA(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return false
	}
	return true
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in account. Mounted behind RequireSession so a
// client can learn that a second factor is still pending.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		slog.Error("me lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, TwoFactorPending: !sess.Authorized()})
}

// twoFASetupResponse carries the enrolment material. QRCode is a
// base64-encoded PNG of the otpauth URL.
type twoFASetupResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauthUrl"`
	QRCode string `json:"qrCode"`
}

// TwoFASetup generates a TOTP secret for the account and returns it with
// a QR code. The secret takes effect once a code is verified.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := a.users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	qr, err := qrPNG(key)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, twoFASetupResponse{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: qr,
	})
}

func qrPNG(key *otp.Key) (string, error) {
	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// TwoFAVerify validates a TOTP code. The first valid code after setup
// enables 2FA on the account; every valid code completes the session.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var in struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user.TOTPSecret == nil {
		invalidInput(w, "two-factor setup has not been started")
		return
	}
	if !totp.Validate(strings.TrimSpace(in.Code), *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "invalid code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		user.TOTPEnabled = true
	}

	sess.TOTPEnabled = true
	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		slog.Error("session update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user})
}
