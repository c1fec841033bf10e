package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vivesalud/productiva/internal/domain"
	"github.com/vivesalud/productiva/internal/service"
)

type AuthHandler struct {
	authSvc *service.AuthService
}

func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, pair)
}

type registerUserRequest struct {
	Email          string     `json:"email" binding:"required,email"`
	Name           string     `json:"nombre" binding:"required"`
	Password       string     `json:"password" binding:"required"`
	Role           string     `json:"rol"`
	ProfessionalID *uuid.UUID `json:"profesional_id"`
}

type userResponse struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"nombre"`
	Role           string     `json:"rol"`
	ProfessionalID *uuid.UUID `json:"profesional_id,omitempty"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerUserRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.authSvc.RegisterUser(
		c.Request.Context(),
		req.Email, req.Name, req.Password,
		domain.Role(req.Role), req.ProfessionalID,
		callerFrom(c),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, userResponse{
		ID: u.ID, Email: u.Email, Name: u.Name,
		Role: string(u.Role), ProfessionalID: u.ProfessionalID,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := claimsFrom(c)
	if claims == nil {
		respondError(c, 401, "unauthenticated")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"changed": true})
}
