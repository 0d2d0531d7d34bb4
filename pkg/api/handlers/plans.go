package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/database/repositories"
)

// PlanHandlers handles the plan catalog endpoints
type PlanHandlers struct {
	planRepo *repositories.PlanRepository
}

// NewPlanHandlers creates a new PlanHandlers instance
func NewPlanHandlers(planRepo *repositories.PlanRepository) *PlanHandlers {
	return &PlanHandlers{planRepo: planRepo}
}

// List handles GET /api/plans
func (h *PlanHandlers) List(c *gin.Context) {
	plans, err := h.planRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch plans"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// Get handles GET /api/plans/:id
func (h *PlanHandlers) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	plan, err := h.planRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch plan"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// PlanRequest is the create/update body for plans
type PlanRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	RAM         string `json:"ram" binding:"required"`
	CPUCores    string `json:"cpuCores" binding:"required"`
	DiskSize    string `json:"diskSize" binding:"required"`
}

// Create handles POST /api/plans
func (h *PlanHandlers) Create(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	plan := &models.Plan{
		Name:        req.Name,
		Description: req.Description,
		RAM:         req.RAM,
		CPUCores:    req.CPUCores,
		DiskSize:    req.DiskSize,
	}
	if err := h.planRepo.Create(plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create plan"})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// Update handles PUT /api/plans/:id
func (h *PlanHandlers) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	plan, err := h.planRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch plan"})
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	plan.Name = req.Name
	plan.Description = req.Description
	plan.RAM = req.RAM
	plan.CPUCores = req.CPUCores
	plan.DiskSize = req.DiskSize

	if err := h.planRepo.Update(plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update plan"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Delete handles DELETE /api/plans/:id
func (h *PlanHandlers) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	if err := h.planRepo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete plan"})
		return
	}
	c.Status(http.StatusNoContent)
}
