package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/larkes/communities-api/domain"
	"github.com/larkes/communities-api/internal/http/middleware"
	"github.com/larkes/communities-api/internal/http/respond"
)

// AccountHandlers serves the signed-in user, their company and the admin user list
type AccountHandlers struct {
	userRepo    domain.UserRepository
	companyRepo domain.CompanyRepository
}

// NewAccountHandlers creates new account handlers
func NewAccountHandlers(userRepo domain.UserRepository, companyRepo domain.CompanyRepository) *AccountHandlers {
	return &AccountHandlers{userRepo: userRepo, companyRepo: companyRepo}
}

type UserResponse struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}

type CompanyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CompanyUpdateRequest holds optional company changes
type CompanyUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Role:        string(u.Role),
		Phone:       u.Phone,
		Email:       u.Email,
		HasPassword: u.HasPassword(),
		CreatedAt:   u.CreatedAt,
	}
}

func toCompanyResponse(co *domain.Company) CompanyResponse {
	return CompanyResponse{ID: co.ID, Name: co.Name, Description: co.Description}
}

// Me returns the authenticated user
func (h *AccountHandlers) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respond.Error(c, domain.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// MyCompany returns the company resolved by the current-company middleware
func (h *AccountHandlers) MyCompany(c *gin.Context) {
	company, ok := middleware.CurrentCompanyOf(c)
	if !ok {
		respond.Error(c, domain.ErrCompanyNotSet)
		return
	}
	c.JSON(http.StatusOK, toCompanyResponse(company))
}

// UpdateMyCompany changes the name or description of the current company
func (h *AccountHandlers) UpdateMyCompany(c *gin.Context) {
	company, ok := middleware.CurrentCompanyOf(c)
	if !ok {
		respond.Error(c, domain.ErrCompanyNotSet)
		return
	}

	var req CompanyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	updated, err := h.companyRepo.Update(c.Request.Context(), company.ID, domain.UpdateCompanyCommand{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toCompanyResponse(updated))
}

// ListUsers returns every user, newest first
func (h *AccountHandlers) ListUsers(c *gin.Context) {
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}
