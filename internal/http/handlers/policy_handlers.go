package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/larkes/communities-api/domain"
	"github.com/larkes/communities-api/internal/http/respond"
)

type PolicyHandlers struct {
	policySvc domain.PolicyService
}

func NewPolicyHandlers(policySvc domain.PolicyService) *PolicyHandlers {
	return &PolicyHandlers{policySvc: policySvc}
}

type policyReq struct {
	Sub string `json:"sub" binding:"required"`
	Obj string `json:"obj" binding:"required"`
	Act string `json:"act" binding:"required"`
}

func (h *PolicyHandlers) List(c *gin.Context) {
	policies, err := h.policySvc.GetPolicies()
	if err != nil {
		respond.Error(c, err)
		return
	}
	if policies == nil {
		policies = [][]string{}
	}
	c.JSON(http.StatusOK, policies)
}

func (h *PolicyHandlers) Add(c *gin.Context) {
	var r policyReq
	if err := c.ShouldBindJSON(&r); err != nil {
		respond.BadRequest(c, err)
		return
	}
	if err := h.policySvc.AddPolicy(r.Sub, r.Obj, r.Act); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PolicyHandlers) Remove(c *gin.Context) {
	var r policyReq
	if err := c.ShouldBindJSON(&r); err != nil {
		respond.BadRequest(c, err)
		return
	}
	if err := h.policySvc.RemovePolicy(r.Sub, r.Obj, r.Act); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
