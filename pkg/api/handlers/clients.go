package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/database/repositories"
)

// ClientHandlers handles client (tenant) endpoints
type ClientHandlers struct {
	clientRepo *repositories.ClientRepository
}

// NewClientHandlers creates a new ClientHandlers instance
func NewClientHandlers(clientRepo *repositories.ClientRepository) *ClientHandlers {
	return &ClientHandlers{clientRepo: clientRepo}
}

// List handles GET /api/clients
func (h *ClientHandlers) List(c *gin.Context) {
	clients, err := h.clientRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch clients"})
		return
	}
	c.JSON(http.StatusOK, clients)
}

// Get handles GET /api/clients/:id
func (h *ClientHandlers) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	client, err := h.clientRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch client"})
		return
	}
	c.JSON(http.StatusOK, client)
}

// ClientRequest is the create/update body for clients
type ClientRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Department  string `json:"department"`
	Notes       string `json:"notes"`
}

// Create handles POST /api/clients
func (h *ClientHandlers) Create(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	if _, err := h.clientRepo.GetByName(req.Name); err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "A client with this name already exists"})
		return
	}

	client := &models.Client{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Department:  req.Department,
		Notes:       req.Notes,
	}
	if err := h.clientRepo.Create(client); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create client"})
		return
	}
	c.JSON(http.StatusCreated, client)
}

// Update handles PUT /api/clients/:id
func (h *ClientHandlers) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	client, err := h.clientRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch client"})
		return
	}

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	client.Name = req.Name
	client.ContactName = req.ContactName
	client.Email = req.Email
	client.Phone = req.Phone
	client.Department = req.Department
	client.Notes = req.Notes

	if err := h.clientRepo.Update(client); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update client"})
		return
	}
	c.JSON(http.StatusOK, client)
}

// Delete handles DELETE /api/clients/:id. Deletion is rejected while VM
// records still reference the client; the response carries the dependent
// count.
func (h *ClientHandlers) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return
	}

	if _, err := h.clientRepo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch client"})
		return
	}

	count, err := h.clientRepo.CountDependentVMs(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to check dependent virtual machines"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"message":        fmt.Sprintf("Cannot delete client: %d virtual machine(s) reference it", count),
			"dependentCount": count,
		})
		return
	}

	if err := h.clientRepo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete client"})
		return
	}
	c.Status(http.StatusNoContent)
}
