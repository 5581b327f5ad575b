package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raushankrgupta/marketchoice-admin/auth"
	"github.com/raushankrgupta/marketchoice-admin/utils"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *auth.Principal `json:"user"`
}

// LoginHandler signs an operator in and returns a session token.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Login API]")

	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		utils.RespondError(w, &logMessageBuilder, "Username and password are required", http.StatusBadRequest)
		return
	}

	principal, err := s.Auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Login failed for %s: %v", req.Username, err))
		status := loginStatus(err)
		message := auth.Message(err)
		if status == http.StatusInternalServerError {
			message = "Could not sign in, please try again"
		}
		utils.RespondError(w, &logMessageBuilder, message, status)
		return
	}

	token, exp, err := s.Tokens.Issue(principal)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Token error: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Could not create session", http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Login successful: %s", principal.Email))
	utils.RespondJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp, User: principal})
}

// MeHandler returns the signed-in operator.
func (s *Server) MeHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	utils.RespondJSON(w, http.StatusOK, p)
}

func loginStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserDisabled):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
