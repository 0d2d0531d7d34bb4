package unit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provizor/provizor/pkg/database"
	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/provision"
)

func seedCreationFixtures(t *testing.T, db *database.DB) *models.Client {
	t.Helper()
	plans := models.DefaultPlans()
	require.NoError(t, db.DB.Create(&plans).Error)

	client := &models.Client{Name: "Sample Client", ContactName: "John Doe"}
	require.NoError(t, db.DB.Create(client).Error)
	return client
}

func catalogedCreateBody(clientID uint) map[string]interface{} {
	return map[string]interface{}{
		"name":             "web-01",
		"hypervisorType":   "proxmox",
		"planType":         "cataloged",
		"planId":           2,
		"operatingSystem":  "ubuntu-22.04",
		"networkInterface": "prod-net",
		"hostGroup":        "node1",
		"datastore":        "local-lvm",
		"clientId":         clientID,
		"reportNumber":     "RPT-100",
	}
}

func TestVMCreationEndpoint(t *testing.T) {
	server, db, jwtManager, roll := setupTestAPIServer(t)
	router := server.GetRouter()
	client := seedCreationFixtures(t, db)

	operator := createTestUser(t, db, "operator", models.RoleOperator)
	token := tokenFor(t, jwtManager, operator)

	t.Run("cataloged plan creation returns 201 running", func(t *testing.T) {
		*roll = 0.1
		w := doJSON(router, "POST", "/api/virtual-machines", token, catalogedCreateBody(client.ID))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var result provision.CreateResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "web-01", result.Name)
		assert.Equal(t, models.VMStatusRunning, result.Status)
		assert.Contains(t, result.Message, "Successfully created")

		vm, err := fetchVM(db, result.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VMStatusRunning, vm.Status)
		assert.Equal(t, "4 GB", vm.RAM)
		assert.Equal(t, "2", vm.CPUCores)
		assert.Equal(t, "40 GB", vm.DiskSize)
		assert.Equal(t, operator.ID, vm.UserID)
	})

	t.Run("failed provisioning still returns 201", func(t *testing.T) {
		*roll = 0.99
		body := catalogedCreateBody(client.ID)
		body["name"] = "web-02"
		w := doJSON(router, "POST", "/api/virtual-machines", token, body)
		require.Equal(t, http.StatusCreated, w.Code)

		var result provision.CreateResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, models.VMStatusError, result.Status)
		assert.Equal(t, "Failed to connect to Proxmox API", result.Message)

		vm, err := fetchVM(db, result.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VMStatusError, vm.Status)
	})

	t.Run("retry after failure creates an independent record", func(t *testing.T) {
		*roll = 0.99
		body := catalogedCreateBody(client.ID)
		body["name"] = "web-03"
		w := doJSON(router, "POST", "/api/virtual-machines", token, body)
		require.Equal(t, http.StatusCreated, w.Code)
		var first provision.CreateResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

		*roll = 0.1
		w = doJSON(router, "POST", "/api/virtual-machines", token, body)
		require.Equal(t, http.StatusCreated, w.Code)
		var second provision.CreateResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, models.VMStatusRunning, second.Status)

		failed, err := fetchVM(db, first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VMStatusError, failed.Status, "the failed record keeps its status")
	})

	t.Run("custom plan creation", func(t *testing.T) {
		*roll = 0.1
		w := doJSON(router, "POST", "/api/virtual-machines", token, map[string]interface{}{
			"name":             "db-01",
			"hypervisorType":   "vcenter",
			"planType":         "custom",
			"ram":              "12 GB",
			"cpuCores":         "6",
			"diskSize":         "200 GB",
			"diskType":         "hdd",
			"operatingSystem":  "centos-8",
			"networkInterface": "prod-net",
			"cluster":          "prod-cluster",
			"datastore":        "ds-ssd-01",
			"clientId":         client.ID,
			"reportNumber":     "RPT-101",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var result provision.CreateResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

		vm, err := fetchVM(db, result.ID)
		require.NoError(t, err)
		assert.Equal(t, "12 GB", vm.RAM)
		assert.Equal(t, "6", vm.CPUCores)
		assert.Equal(t, models.DiskHDD, vm.DiskType)
	})

	t.Run("invalid request returns 400 with field errors and no record", func(t *testing.T) {
		var before int64
		require.NoError(t, db.DB.Model(&models.VirtualMachine{}).Count(&before).Error)

		w := doJSON(router, "POST", "/api/virtual-machines", token, map[string]interface{}{
			"planType": "custom",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp struct {
			Message string                 `json:"message"`
			Errors  []provision.FieldError `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid request data", resp.Message)
		assert.NotEmpty(t, resp.Errors)

		var after int64
		require.NoError(t, db.DB.Model(&models.VirtualMachine{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})

	t.Run("custom plan carrying a plan id returns 400", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/virtual-machines", token, map[string]interface{}{
			"name":             "db-02",
			"hypervisorType":   "vcenter",
			"planType":         "custom",
			"planId":           2,
			"ram":              "4 GB",
			"cpuCores":         "2",
			"diskSize":         "40 GB",
			"operatingSystem":  "centos-8",
			"networkInterface": "prod-net",
			"clientId":         client.ID,
			"reportNumber":     "RPT-102",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "must not be set for custom plans")
	})

	t.Run("unknown plan returns 400", func(t *testing.T) {
		body := catalogedCreateBody(client.ID)
		body["planId"] = 999
		w := doJSON(router, "POST", "/api/virtual-machines", token, body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Plan not found")
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/virtual-machines", strings.NewReader(`{"name":`))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func fetchVM(db *database.DB, id uint) (*models.VirtualMachine, error) {
	var vm models.VirtualMachine
	err := db.DB.First(&vm, id).Error
	return &vm, err
}

func TestVMListAndDelete(t *testing.T) {
	server, db, jwtManager, roll := setupTestAPIServer(t)
	router := server.GetRouter()
	client := seedCreationFixtures(t, db)

	admin := tokenFor(t, jwtManager, createTestUser(t, db, "admin", models.RoleAdmin))
	viewer := tokenFor(t, jwtManager, createTestUser(t, db, "viewer", models.RoleViewer))

	*roll = 0.1
	w := doJSON(router, "POST", "/api/virtual-machines", admin, catalogedCreateBody(client.ID))
	require.Equal(t, http.StatusCreated, w.Code)
	var result provision.CreateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	t.Run("list includes the created vm", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/virtual-machines", viewer, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var vms []models.VirtualMachine
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vms))
		require.Len(t, vms, 1)
		assert.Equal(t, "web-01", vms[0].Name)
	})

	t.Run("viewer cannot delete", func(t *testing.T) {
		w := doJSON(router, "DELETE", fmt.Sprintf("/api/virtual-machines/%d", result.ID), viewer, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin deletes the vm", func(t *testing.T) {
		w := doJSON(router, "DELETE", fmt.Sprintf("/api/virtual-machines/%d", result.ID), admin, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(router, "GET", fmt.Sprintf("/api/virtual-machines/%d", result.ID), admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestVMListFilters(t *testing.T) {
	server, db, jwtManager, roll := setupTestAPIServer(t)
	router := server.GetRouter()
	clientA := seedCreationFixtures(t, db)

	clientB := &models.Client{Name: "Other Client"}
	require.NoError(t, db.DB.Create(clientB).Error)

	adminUser := createTestUser(t, db, "admin", models.RoleAdmin)
	operatorUser := createTestUser(t, db, "operator", models.RoleOperator)
	admin := tokenFor(t, jwtManager, adminUser)
	operator := tokenFor(t, jwtManager, operatorUser)

	*roll = 0.1
	w := doJSON(router, "POST", "/api/virtual-machines", admin, catalogedCreateBody(clientA.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	bodyB := catalogedCreateBody(clientB.ID)
	bodyB["name"] = "web-02"
	w = doJSON(router, "POST", "/api/virtual-machines", operator, bodyB)
	require.Equal(t, http.StatusCreated, w.Code)

	listNames := func(t *testing.T, path string) []string {
		t.Helper()
		w := doJSON(router, "GET", path, admin, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var vms []models.VirtualMachine
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vms))
		names := make([]string, len(vms))
		for i, vm := range vms {
			names[i] = vm.Name
		}
		return names
	}

	t.Run("clientId filter narrows the listing", func(t *testing.T) {
		names := listNames(t, fmt.Sprintf("/api/virtual-machines?clientId=%d", clientB.ID))
		assert.Equal(t, []string{"web-02"}, names)
	})

	t.Run("userId filter narrows the listing", func(t *testing.T) {
		names := listNames(t, fmt.Sprintf("/api/virtual-machines?userId=%d", adminUser.ID))
		assert.Equal(t, []string{"web-01"}, names)
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		names := listNames(t, "/api/virtual-machines")
		assert.Len(t, names, 2)
	})

	t.Run("non-numeric clientId returns 400", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/virtual-machines?clientId=abc", admin, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero userId returns 400", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/virtual-machines?userId=0", admin, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVMStatusEndpoint(t *testing.T) {
	server, db, jwtManager, roll := setupTestAPIServer(t)
	router := server.GetRouter()
	client := seedCreationFixtures(t, db)

	operator := tokenFor(t, jwtManager, createTestUser(t, db, "operator", models.RoleOperator))
	viewer := tokenFor(t, jwtManager, createTestUser(t, db, "viewer", models.RoleViewer))

	*roll = 0.1
	w := doJSON(router, "POST", "/api/virtual-machines", operator, catalogedCreateBody(client.ID))
	require.Equal(t, http.StatusCreated, w.Code)
	var result provision.CreateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	statusPath := fmt.Sprintf("/api/virtual-machines/%d/status", result.ID)

	t.Run("stop a running vm", func(t *testing.T) {
		w := doJSON(router, "PUT", statusPath, operator, map[string]string{"status": "stopped"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		vm, err := fetchVM(db, result.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VMStatusStopped, vm.Status)
	})

	t.Run("start it again", func(t *testing.T) {
		w := doJSON(router, "PUT", statusPath, operator, map[string]string{"status": "running"})
		require.Equal(t, http.StatusOK, w.Code)

		vm, err := fetchVM(db, result.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VMStatusRunning, vm.Status)
	})

	t.Run("unknown status returns 400", func(t *testing.T) {
		w := doJSON(router, "PUT", statusPath, operator, map[string]string{"status": "paused"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "running, stopped")
	})

	t.Run("viewer cannot change status", func(t *testing.T) {
		w := doJSON(router, "PUT", statusPath, viewer, map[string]string{"status": "stopped"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown vm returns 404", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/virtual-machines/999/status", operator, map[string]string{"status": "stopped"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("a row still provisioning returns 409", func(t *testing.T) {
		pending := &models.VirtualMachine{
			Name:             "pending-01",
			HypervisorType:   models.HypervisorProxmox,
			PlanType:         models.PlanCustom,
			RAM:              "4 GB",
			CPUCores:         "2",
			DiskSize:         "40 GB",
			DiskType:         models.DiskSSD,
			OperatingSystem:  "ubuntu-22.04",
			NetworkInterface: "prod-net",
			Status:           models.VMStatusCreating,
			ClientID:         client.ID,
			ReportNumber:     "RPT-900",
			UserID:           1,
		}
		require.NoError(t, db.DB.Create(pending).Error)

		w := doJSON(router, "PUT", fmt.Sprintf("/api/virtual-machines/%d/status", pending.ID),
			operator, map[string]string{"status": "stopped"})
		assert.Equal(t, http.StatusConflict, w.Code)

		vm, err := fetchVM(db, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VMStatusCreating, vm.Status)
	})
}
