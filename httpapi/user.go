package httpapi

import (
	"net/http"

	"github.com/fixacareer/fixauth"
)

type userLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	var req userLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondBadRequest(w, "email and password are required")
		return
	}

	result, err := a.engine.UserLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respond(w, http.StatusOK, result, "Logged in successfully")
}

type registerUserRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Phone          string `json:"phone"`
	EducationLevel string `json:"educationLevel"`
}

func (a *API) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		respondBadRequest(w, "firstName, lastName, email and password are required")
		return
	}

	result, err := a.engine.RegisterUser(r.Context(), fixauth.RegisterUserInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Password:       req.Password,
		Phone:          req.Phone,
		EducationLevel: req.EducationLevel,
	})
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respond(w, http.StatusCreated, result, "Account created successfully")
}
