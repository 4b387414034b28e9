package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/larkes/communities-api/domain"
	"github.com/larkes/communities-api/internal/http/respond"
)

// AuthHandlers exposes the phone OTP and password login flows
type AuthHandlers struct {
	authSvc domain.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc}
}

// PhoneRequest represents an OTP request
type PhoneRequest struct {
	Phone string `json:"phone" binding:"required,e164"`
}

// OTPVerifyRequest represents OTP verification request
type OTPVerifyRequest struct {
	Phone string `json:"phone" binding:"required,e164"`
	Code  string `json:"code" binding:"required,numeric,min=4,max=8"`
}

// CompanySignupRequest represents company registration request
type CompanySignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=255"`
}

// AdminSignupRequest represents admin registration request.
// SignupToken is checked by the service so a missing token reads as forbidden.
type AdminSignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	SignupToken string `json:"signup_token"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by every flow that issues an access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	CompanyID   string `json:"company_id,omitempty"`
}

func writeToken(c *gin.Context, result *domain.AuthResult) {
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   result.ExpiresIn,
		CompanyID:   result.CompanyID,
	})
}

// RequestOTP sends a code to the phone. It answers 204 whether or not an account exists.
func (h *AuthHandlers) RequestOTP(c *gin.Context) {
	var req PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	if err := h.authSvc.RequestOTP(c.Request.Context(), req.Phone); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// VerifyOTP exchanges a phone code for a student access token
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	result, err := h.authSvc.VerifyOTP(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		respond.Error(c, err)
		return
	}
	writeToken(c, result)
}

// CompanySignup registers a company account and its company
func (h *AuthHandlers) CompanySignup(c *gin.Context) {
	var req CompanySignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	result, err := h.authSvc.CompanySignup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respond.Error(c, err)
		return
	}
	writeToken(c, result)
}

// CompanyLogin handles company password login
func (h *AuthHandlers) CompanyLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	result, err := h.authSvc.CompanyLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}
	writeToken(c, result)
}

// AdminSignup registers an admin when the bootstrap token matches
func (h *AuthHandlers) AdminSignup(c *gin.Context) {
	var req AdminSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	result, err := h.authSvc.AdminSignup(c.Request.Context(), req.Email, req.Password, req.SignupToken)
	if err != nil {
		respond.Error(c, err)
		return
	}
	writeToken(c, result)
}

// AdminLogin handles admin password login
func (h *AuthHandlers) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	result, err := h.authSvc.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}
	writeToken(c, result)
}
