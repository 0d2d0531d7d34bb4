package unit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provizor/provizor/pkg/database/models"
)

func TestClientEndpoints(t *testing.T) {
	server, db, jwtManager, roll := setupTestAPIServer(t)
	router := server.GetRouter()
	client := seedCreationFixtures(t, db)

	admin := tokenFor(t, jwtManager, createTestUser(t, db, "admin", models.RoleAdmin))

	t.Run("create and fetch", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/clients", admin, map[string]string{
			"name":        "Acme Corp",
			"contactName": "Jane Smith",
			"email":       "jane@acme.example.com",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var created models.Client
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		w = doJSON(router, "GET", fmt.Sprintf("/api/clients/%d", created.ID), admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("duplicate name returns 409", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/clients", admin, map[string]string{"name": "Acme Corp"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete is blocked while VMs reference the client", func(t *testing.T) {
		*roll = 0.1
		w := doJSON(router, "POST", "/api/virtual-machines", admin, catalogedCreateBody(client.ID))
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(router, "DELETE", fmt.Sprintf("/api/clients/%d", client.ID), admin, nil)
		require.Equal(t, http.StatusConflict, w.Code)

		var resp struct {
			Message        string `json:"message"`
			DependentCount int64  `json:"dependentCount"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.DependentCount)
		assert.Contains(t, resp.Message, "1 virtual machine(s) reference it")

		// The client is still there.
		w = doJSON(router, "GET", fmt.Sprintf("/api/clients/%d", client.ID), admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete succeeds once no VMs remain", func(t *testing.T) {
		require.NoError(t, db.DB.Where("client_id = ?", client.ID).Delete(&models.VirtualMachine{}).Error)

		w := doJSON(router, "DELETE", fmt.Sprintf("/api/clients/%d", client.ID), admin, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(router, "GET", fmt.Sprintf("/api/clients/%d", client.ID), admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHypervisorEndpoints(t *testing.T) {
	server, db, jwtManager, roll := setupTestAPIServer(t)
	router := server.GetRouter()
	client := seedCreationFixtures(t, db)

	admin := tokenFor(t, jwtManager, createTestUser(t, db, "admin", models.RoleAdmin))

	var created models.Hypervisor
	t.Run("create profile", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/hypervisors", admin, map[string]interface{}{
			"name":     "Proxmox Cluster 1",
			"type":     "proxmox",
			"apiUrl":   "https://proxmox1.example.com:8006/api2/json",
			"username": "root",
			"password": "secret",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, models.HypervisorActive, created.Status)

		t.Run("credentials are never serialized", func(t *testing.T) {
			assert.NotContains(t, w.Body.String(), "secret")
		})
	})

	t.Run("token auth rejects mixed credentials", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/hypervisors", admin, map[string]interface{}{
			"name":     "vCenter",
			"type":     "vcenter",
			"apiUrl":   "https://vcenter.example.com/sdk",
			"authType": "token",
			"apiToken": "tok",
			"username": "admin",
			"password": "secret",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown type returns 400", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/hypervisors", admin, map[string]interface{}{
			"name":     "Xen",
			"type":     "xen",
			"apiUrl":   "https://xen.example.com",
			"username": "root",
			"password": "secret",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete with dependent VMs deactivates instead", func(t *testing.T) {
		*roll = 0.1
		body := catalogedCreateBody(client.ID)
		body["hypervisorId"] = created.ID
		w := doJSON(router, "POST", "/api/virtual-machines", admin, body)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(router, "DELETE", fmt.Sprintf("/api/hypervisors/%d", created.ID), admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "deactivated")

		var hv models.Hypervisor
		require.NoError(t, db.DB.First(&hv, created.ID).Error)
		assert.Equal(t, models.HypervisorInactive, hv.Status)
	})

	t.Run("repeat delete on the inactive profile still reports dependents", func(t *testing.T) {
		w := doJSON(router, "DELETE", fmt.Sprintf("/api/hypervisors/%d", created.ID), admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			DependentCount int64 `json:"dependentCount"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.DependentCount)

		var hv models.Hypervisor
		require.NoError(t, db.DB.First(&hv, created.ID).Error)
		assert.Equal(t, models.HypervisorInactive, hv.Status)
	})

	t.Run("delete without dependents removes the profile", func(t *testing.T) {
		require.NoError(t, db.DB.Where("hypervisor_id = ?", created.ID).Delete(&models.VirtualMachine{}).Error)

		w := doJSON(router, "DELETE", fmt.Sprintf("/api/hypervisors/%d", created.ID), admin, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
