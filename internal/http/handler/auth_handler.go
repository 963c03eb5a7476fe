package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/apperr"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/response"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/service"
)

const (
	MsgRegistered      = "User register successfully"
	MsgAccountVerified = "User account validation successfully"
	MsgLoggedIn        = "Login successful"
	MsgResetMailSent   = "You have received an email with the password recovery link"
	MsgResetUserFound  = "User found"
	MsgPasswordChanged = "Password changed successfully!"
	MsgTokenRefreshed  = "Token refreshed successfully!"
)

type AuthHandler struct {
	authSvc service.AuthServiceInterface
}

func NewAuthHandler(authSvc service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "register", status, time.Since(start))
	}()

	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		status = "failure"
		response.Error(w, r, err)
		return
	}
	user, err := h.authSvc.Register(r.Context(), in)
	if err != nil {
		status = "failure"
		auditAuth(r, "auth.register", "", "register", err)
		response.Error(w, r, err)
		return
	}
	auditAuth(r, "auth.register", user.ID, "register", nil)
	response.Message(w, r, http.StatusCreated, MsgRegistered, response.Fields{"userId": user.ID})
}

func (h *AuthHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "verify", status, time.Since(start))
	}()

	user, err := h.authSvc.VerifyAccount(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		status = "failure"
		auditAuth(r, "auth.verify", "", "verify", err)
		response.Error(w, r, err)
		return
	}
	auditAuth(r, "auth.verify", user.ID, "verify", nil)
	response.Message(w, r, http.StatusCreated, MsgAccountVerified, response.Fields{"userId": user.ID})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var in service.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		status = "failure"
		response.Error(w, r, err)
		return
	}
	result, err := h.authSvc.Login(r.Context(), in)
	if err != nil {
		status = "failure"
		auditAuth(r, "auth.login", "", "login", err)
		response.Error(w, r, err)
		return
	}
	auditAuth(r, "auth.login", result.User.ID, "login", nil)
	response.Message(w, r, http.StatusOK, MsgLoggedIn, response.Fields{
		"token":        result.AccessToken,
		"refreshToken": result.RefreshToken,
		"userId":       result.User.ID,
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "forgot_password", status, time.Since(start))
	}()

	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &in); err != nil {
		status = "failure"
		response.Error(w, r, err)
		return
	}
	if err := h.authSvc.ForgotPassword(r.Context(), in.Email); err != nil {
		status = "failure"
		auditAuth(r, "auth.password_reset.request", "", "request", err)
		response.Error(w, r, err)
		return
	}
	auditAuth(r, "auth.password_reset.request", "", "request", nil)
	response.Message(w, r, http.StatusOK, MsgResetMailSent, nil)
}

func (h *AuthHandler) LookupResetToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	user, err := h.authSvc.LookupResetToken(r.Context(), token)
	if err != nil {
		auditAuth(r, "auth.password_reset.lookup", "", "lookup", err)
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, http.StatusOK, MsgResetUserFound, response.Fields{
		"token": token,
		"email": user.Email,
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "reset_password", status, time.Since(start))
	}()

	var in service.ResetPasswordInput
	if err := decodeJSON(r, &in); err != nil {
		status = "failure"
		response.Error(w, r, err)
		return
	}
	if err := h.authSvc.ResetPassword(r.Context(), in); err != nil {
		status = "failure"
		auditAuth(r, "auth.password_reset.complete", "", "complete", err)
		response.Error(w, r, err)
		return
	}
	auditAuth(r, "auth.password_reset.complete", "", "complete", nil)
	response.Message(w, r, http.StatusOK, MsgPasswordChanged, nil)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "refresh", status, time.Since(start))
	}()

	token, err := h.authSvc.Refresh(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		status = "failure"
		auditAuth(r, "auth.refresh", "", "refresh", err)
		response.Error(w, r, err)
		return
	}
	auditAuth(r, "auth.refresh", "", "refresh", nil)
	response.Message(w, r, http.StatusOK, MsgTokenRefreshed, response.Fields{"token": token})
}

func auditAuth(r *http.Request, event, userID, action string, err error) {
	in := observability.AuditInput{
		EventName:   event,
		ActorUserID: userID,
		TargetType:  "user",
		TargetID:    userID,
		Action:      action,
		Outcome:     "success",
	}
	if err != nil {
		in.Outcome = "failure"
		in.Reason = string(apperr.From(err).Kind)
	}
	observability.EmitAudit(r, in)
}
