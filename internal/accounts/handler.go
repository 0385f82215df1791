package accounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/markethaus/marketplace-api/internal/domain"
	"github.com/markethaus/marketplace-api/internal/pkg/httputil"
)

// Handler handles HTTP requests for the accounts module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new accounts handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers routes reachable without authentication:
// registration and token issuance.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/users", h.CreateUser)
	r.Post("/api/token", h.ObtainToken)
	r.Post("/api/token/refresh", h.RefreshToken)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/users", h.ListUsers)
	r.Get("/users/{id}", h.GetUser)
	r.Put("/users/{id}", h.UpdateUser)
	r.Patch("/users/{id}", h.PatchUser)
	r.Delete("/users/{id}", h.DeleteUser)
	r.Get("/me", h.Me)
}

// UserResponse is the outward representation of a user. The credential hash
// and elevation flags are not part of the wire format.
type UserResponse struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Role       domain.Role `json:"role"`
	IsActive   bool        `json:"is_active"`
	DateJoined time.Time   `json:"date_joined"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
	}
}

// CreateUserRequest represents the registration request body.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=customer vendor delivery"`
}

// CreateUser handles POST /users (public registration).
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.Role(req.Role),
	})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, toUserResponse(user))
}

// ListUsers handles GET /users. Records are ordered newest-first.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateUserRequest represents a full replace (PUT) body. Like the
// registration body, email and password are required.
type UpdateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=customer vendor delivery"`
	IsActive  *bool  `json:"is_active"`
}

// UpdateUser handles PUT /users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input := UpdateInput{
		Email:     &req.Email,
		Password:  &req.Password,
		FirstName: &req.FirstName,
		LastName:  &req.LastName,
		IsActive:  req.IsActive,
	}
	if req.Role != "" {
		role := domain.Role(req.Role)
		input.Role = &role
	}

	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toUserResponse(user))
}

// PatchUserRequest represents a partial update (PATCH) body. Absent fields
// leave the stored values untouched.
type PatchUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Role      *string `json:"role" validate:"omitempty,oneof=customer vendor delivery"`
	IsActive  *bool   `json:"is_active"`
}

// PatchUser handles PATCH /users/{id}.
func (h *Handler) PatchUser(w http.ResponseWriter, r *http.Request) {
	var req PatchUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input := UpdateInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteUser handles DELETE /users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me, returning the authenticated caller's record.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toUserResponse(user))
}

// ObtainTokenRequest represents the login request body.
type ObtainTokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ObtainToken handles POST /api/token. On success the response carries the
// access and refresh tokens; the access token claims include email, role and
// full_name.
func (h *Handler) ObtainToken(w http.ResponseWriter, r *http.Request) {
	var req ObtainTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	_, tokens, err := h.service.Login(r.Context(), LoginInput(req))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tokens)
}

// RefreshTokenRequest represents the token refresh request body.
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// RefreshTokenResponse carries the newly minted access token.
type RefreshTokenResponse struct {
	Access string `json:"access"`
}

// RefreshToken handles POST /api/token/refresh.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	access, err := h.service.RefreshAccessToken(r.Context(), req.Refresh)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, RefreshTokenResponse{Access: access})
}

var serviceErrorMappings = []httputil.ErrorMapping{
	{Error: ErrUserNotFound, Status: http.StatusNotFound},
	{Error: ErrEmailExists, Status: http.StatusConflict},
	{Error: ErrEmailRequired, Status: http.StatusBadRequest},
	{Error: ErrInvalidRole, Status: http.StatusBadRequest},
	{Error: ErrInvalidCredentials, Status: http.StatusUnauthorized},
	{Error: ErrInvalidToken, Status: http.StatusUnauthorized},
	{Error: ErrUserInactive, Status: http.StatusUnauthorized},
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	// Password policy failures carry a dynamic reason, so they cannot be
	// matched by sentinel.
	var policyErr *PasswordPolicyError
	if errors.As(err, &policyErr) {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
}
