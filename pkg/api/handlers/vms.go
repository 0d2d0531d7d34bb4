package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/auth"
	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/database/repositories"
	"github.com/provizor/provizor/pkg/hypervisor"
	"github.com/provizor/provizor/pkg/provision"
)

// VMHandlers handles virtual machine endpoints. Creation goes through
// the provisioning orchestrator; everything else is plain CRUD.
type VMHandlers struct {
	vmRepo       *repositories.VMRepository
	orchestrator *provision.Orchestrator
}

// NewVMHandlers creates a new VMHandlers instance
func NewVMHandlers(vmRepo *repositories.VMRepository, orchestrator *provision.Orchestrator) *VMHandlers {
	return &VMHandlers{vmRepo: vmRepo, orchestrator: orchestrator}
}

// List handles GET /api/virtual-machines. The clientId and userId query
// parameters narrow the listing to one client or submitting user.
func (h *VMHandlers) List(c *gin.Context) {
	var (
		vms []models.VirtualMachine
		err error
	)

	switch {
	case c.Query("clientId") != "":
		id, perr := strconv.ParseUint(c.Query("clientId"), 10, 32)
		if perr != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid clientId filter"})
			return
		}
		vms, err = h.vmRepo.ListByClient(uint(id))
	case c.Query("userId") != "":
		id, perr := strconv.ParseUint(c.Query("userId"), 10, 32)
		if perr != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid userId filter"})
			return
		}
		vms, err = h.vmRepo.ListByUser(uint(id))
	default:
		vms, err = h.vmRepo.List()
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch virtual machines"})
		return
	}
	c.JSON(http.StatusOK, vms)
}

// Get handles GET /api/virtual-machines/:id
func (h *VMHandlers) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	vm, err := h.vmRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Virtual machine not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch virtual machine"})
		return
	}
	c.JSON(http.StatusOK, vm)
}

// Create handles POST /api/virtual-machines.
//
// The response status reflects request-shape validity only: a request
// that passes validation gets 201 even when provisioning fails, with the
// operational outcome carried in the body's status and message.
func (h *VMHandlers) Create(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewAPIError(
			http.StatusUnauthorized, "Unauthorized", "Authentication required"))
		return
	}

	var req provision.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request data",
			"errors":  []provision.FieldError{{Field: "body", Message: "malformed JSON payload"}},
		})
		return
	}

	result, err := h.orchestrator.Create(c.Request.Context(), &req, claims.UserID)
	if err != nil {
		var verr *provision.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Invalid request data",
				"errors":  verr.Errors,
			})
			return
		}
		if errors.Is(err, hypervisor.ErrUnsupportedType) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create virtual machine"})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// VMStatusRequest is the body for manual lifecycle changes
type VMStatusRequest struct {
	Status models.VMStatus `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/virtual-machines/:id/status. Only the
// manual lifecycle states are accepted; rows still in "creating" belong
// to the provisioning pipeline and cannot be changed here.
func (h *VMHandlers) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	var req VMStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}
	if req.Status != models.VMStatusRunning && req.Status != models.VMStatusStopped {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status must be one of: running, stopped"})
		return
	}

	vm, err := h.vmRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Virtual machine not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch virtual machine"})
		return
	}
	if vm.Status == models.VMStatusCreating {
		c.JSON(http.StatusConflict, gin.H{"message": "Virtual machine is still being created"})
		return
	}

	if err := h.vmRepo.UpdateStatus(id, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update virtual machine status"})
		return
	}

	vm.Status = req.Status
	c.JSON(http.StatusOK, vm)
}

// Delete handles DELETE /api/virtual-machines/:id
func (h *VMHandlers) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	if _, err := h.vmRepo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Virtual machine not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch virtual machine"})
		return
	}

	if err := h.vmRepo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete virtual machine"})
		return
	}
	c.Status(http.StatusNoContent)
}
