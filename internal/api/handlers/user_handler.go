package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/ledger-be/internal/auth"
	"github.com/isdelr/ledger-be/internal/models"
	"github.com/isdelr/ledger-be/internal/services"
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	GenerateJWT(user models.User) (string, error)
}

// UserHandler handles HTTP requests for registration and login.
type UserHandler struct {
	service services.UserServiceProvider
	tokens  TokenIssuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens TokenIssuer) *UserHandler {
	return &UserHandler{service: service, tokens: tokens}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.service.Register(r.Context(), payload.Name, payload.Username, payload.Email, payload.Password); err != nil {
		writeServiceError(w, r, err, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

// Login handles user authentication and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		writeServiceError(w, r, err, "Failed to log in")
		return
	}

	token, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user.Public()})
}

// GetMe retrieves the currently authenticated user from the token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing auth token")
		return
	}

	user, err := h.service.GetByID(r.Context(), claims.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User from token not found in DB")
		writeServiceError(w, r, err, "Failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}
