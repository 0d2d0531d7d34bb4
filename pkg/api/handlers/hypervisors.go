package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/database/repositories"
)

// HypervisorHandlers handles hypervisor connection profile endpoints
type HypervisorHandlers struct {
	hypervisorRepo *repositories.HypervisorRepository
}

// NewHypervisorHandlers creates a new HypervisorHandlers instance
func NewHypervisorHandlers(hypervisorRepo *repositories.HypervisorRepository) *HypervisorHandlers {
	return &HypervisorHandlers{hypervisorRepo: hypervisorRepo}
}

// List handles GET /api/hypervisors
func (h *HypervisorHandlers) List(c *gin.Context) {
	hvs, err := h.hypervisorRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch hypervisors"})
		return
	}
	c.JSON(http.StatusOK, hvs)
}

// Get handles GET /api/hypervisors/:id
func (h *HypervisorHandlers) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	hv, err := h.hypervisorRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Hypervisor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch hypervisor"})
		return
	}
	c.JSON(http.StatusOK, hv)
}

// HypervisorRequest is the create/update body for hypervisor profiles.
// Credentials and API token are mutually exclusive by authType.
type HypervisorRequest struct {
	Name       string                  `json:"name" binding:"required"`
	Type       models.HypervisorType   `json:"type" binding:"required"`
	APIURL     string                  `json:"apiUrl" binding:"required"`
	AuthType   models.AuthType         `json:"authType"`
	Username   string                  `json:"username"`
	Password   string                  `json:"password"`
	APIToken   string                  `json:"apiToken"`
	VerifyTLS  *bool                   `json:"verifyTls"`
	Status     models.HypervisorStatus `json:"status"`
	Datacenter string                  `json:"datacenter"`
	Version    string                  `json:"version"`
}

func (req *HypervisorRequest) validate() string {
	if !req.Type.Valid() {
		return "type must be one of: proxmox, vcenter"
	}
	switch req.AuthType {
	case "", models.AuthCredentials:
		if req.Username == "" || req.Password == "" {
			return "username and password are required for credential authentication"
		}
		if req.APIToken != "" {
			return "apiToken must not be set for credential authentication"
		}
	case models.AuthToken:
		if req.APIToken == "" {
			return "apiToken is required for token authentication"
		}
		if req.Username != "" || req.Password != "" {
			return "username and password must not be set for token authentication"
		}
	default:
		return "authType must be one of: credentials, token"
	}
	return ""
}

func (req *HypervisorRequest) apply(hv *models.Hypervisor) {
	hv.Name = req.Name
	hv.Type = req.Type
	hv.APIURL = req.APIURL
	hv.AuthType = req.AuthType
	if hv.AuthType == "" {
		hv.AuthType = models.AuthCredentials
	}
	hv.Username = req.Username
	hv.Password = req.Password
	hv.APIToken = req.APIToken
	if req.VerifyTLS != nil {
		hv.VerifyTLS = *req.VerifyTLS
	} else {
		hv.VerifyTLS = true
	}
	hv.Status = req.Status
	if hv.Status == "" {
		hv.Status = models.HypervisorActive
	}
	hv.Datacenter = req.Datacenter
	hv.Version = req.Version
}

// Create handles POST /api/hypervisors
func (h *HypervisorHandlers) Create(c *gin.Context) {
	var req HypervisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	var hv models.Hypervisor
	req.apply(&hv)
	if err := h.hypervisorRepo.Create(&hv); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create hypervisor"})
		return
	}
	c.JSON(http.StatusCreated, hv)
}

// Update handles PUT /api/hypervisors/:id
func (h *HypervisorHandlers) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	hv, err := h.hypervisorRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Hypervisor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch hypervisor"})
		return
	}

	var req HypervisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	req.apply(hv)
	if err := h.hypervisorRepo.Update(hv); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update hypervisor"})
		return
	}
	c.JSON(http.StatusOK, hv)
}

// Delete handles DELETE /api/hypervisors/:id. Profiles referenced by VM
// records are deactivated instead of removed.
func (h *HypervisorHandlers) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	hv, err := h.hypervisorRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Hypervisor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch hypervisor"})
		return
	}

	count, err := h.hypervisorRepo.CountDependentVMs(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to check dependent virtual machines"})
		return
	}
	if count > 0 {
		if hv.Active() {
			if err := h.hypervisorRepo.Deactivate(id); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to deactivate hypervisor"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"message":        "Hypervisor deactivated; virtual machines still reference it",
			"dependentCount": count,
		})
		return
	}

	if err := h.hypervisorRepo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete hypervisor"})
		return
	}
	c.Status(http.StatusNoContent)
}
