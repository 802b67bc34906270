package httpapi

import (
	"net/http"
	"strings"

	"github.com/fixacareer/fixauth"
	"github.com/fixacareer/fixauth/middleware"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondBadRequest(w, "email and password are required")
		return
	}

	result, err := a.engine.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respond(w, http.StatusOK, result, "Logged in successfully")
}

func (a *API) handleSecondFactorStatus(w http.ResponseWriter, r *http.Request) {
	result, err := a.engine.SecondFactorStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respond(w, http.StatusOK, result, "Verification status fetched")
}

type chooseMethodRequest struct {
	Method string `json:"method"`
}

func (a *API) handleChooseMethod(w http.ResponseWriter, r *http.Request) {
	var req chooseMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	method := fixauth.SecondFactorMethod(strings.ToLower(strings.TrimSpace(req.Method)))
	result, err := a.engine.ChooseSecondFactorMethod(r.Context(), r.PathValue("id"), method)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respond(w, http.StatusOK, result, "Verification method chosen")
}

// verifyRequest accepts the one-time code under either field name; existing
// clients send it as "token".
type verifyRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

func (r verifyRequest) code() string {
	if r.Token != "" {
		return r.Token
	}
	return r.Code
}

func (a *API) handleVerifySecondFactor(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	code := req.code()
	if code == "" {
		respondBadRequest(w, "token is required")
		return
	}

	result, err := a.engine.VerifySecondFactor(r.Context(), r.PathValue("id"), code)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respond(w, http.StatusOK, result, "Logged in successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		respondBadRequest(w, "refreshToken is required")
		return
	}

	pair, err := a.engine.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respond(w, http.StatusOK, pair, "Token refreshed")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondBadRequest(w, "currentPassword and newPassword are required")
		return
	}

	if err := a.engine.ChangePassword(r.Context(), r.PathValue("id"), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, a.logger, err)
		return
	}
	respond(w, http.StatusOK, nil, "Password changed successfully")
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" {
		respondBadRequest(w, "email is required")
		return
	}

	if err := a.engine.ForgotPassword(r.Context(), req.Email); err != nil {
		respondError(w, a.logger, err)
		return
	}
	respond(w, http.StatusOK, nil, "A temporary password has been sent to your email")
}

type createAdminRequest struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Gender      string   `json:"gender"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Avatar      string   `json:"avatar"`
	Permissions []string `json:"permissions"`
}

func (a *API) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		respondBadRequest(w, "firstName, lastName and email are required")
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	input := fixauth.CreateAdminInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		Email:       req.Email,
		Phone:       req.Phone,
		Avatar:      req.Avatar,
		Permissions: req.Permissions,
	}
	if principal != nil {
		input.AddedBy = principal.RecordID
	}

	result, err := a.engine.CreateAdmin(r.Context(), input)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respond(w, http.StatusCreated, result, "Admin created successfully")
}
