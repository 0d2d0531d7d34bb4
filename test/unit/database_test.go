package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/config"
	"github.com/provizor/provizor/pkg/database"
	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/database/repositories"
)

func setupTestDB(t *testing.T) *database.DB {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = gormDB.AutoMigrate(&models.User{}, &models.Client{}, &models.Plan{}, &models.Hypervisor{}, &models.VirtualMachine{})
	require.NoError(t, err)

	return &database.DB{DB: gormDB}
}

func seedConfig() *config.Config {
	cfg := &config.Config{}
	cfg.InitialAdmin.Enabled = true
	cfg.InitialAdmin.Username = "admin"
	cfg.InitialAdmin.Password = "admin123"
	cfg.InitialAdmin.Email = "admin@example.com"
	cfg.InitialAdmin.FullName = "Administrator"
	return cfg
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)
	cfg := seedConfig()

	require.NoError(t, db.Seed(cfg))

	t.Run("admin user", func(t *testing.T) {
		var admin models.User
		require.NoError(t, db.DB.Where("username = ?", "admin").First(&admin).Error)
		assert.Equal(t, models.RoleAdmin, admin.Role)
		assert.True(t, admin.CheckPassword("admin123"))
	})

	t.Run("plan catalog", func(t *testing.T) {
		var plans []models.Plan
		require.NoError(t, db.DB.Order("id").Find(&plans).Error)
		require.Len(t, plans, 6)
		assert.Equal(t, "S", plans[0].Name)
		assert.Equal(t, "2 GB", plans[0].RAM)
		assert.Equal(t, "XXXL", plans[5].Name)
		assert.Equal(t, "64 GB", plans[5].RAM)
		assert.Equal(t, "32", plans[5].CPUCores)
		assert.Equal(t, "640 GB", plans[5].DiskSize)
	})

	t.Run("sample client and hypervisors", func(t *testing.T) {
		var clients []models.Client
		require.NoError(t, db.DB.Find(&clients).Error)
		require.Len(t, clients, 1)
		assert.Equal(t, "Sample Client", clients[0].Name)

		var hvs []models.Hypervisor
		require.NoError(t, db.DB.Order("id").Find(&hvs).Error)
		require.Len(t, hvs, 2)
		assert.Equal(t, models.HypervisorProxmox, hvs[0].Type)
		assert.Equal(t, models.HypervisorVCenter, hvs[1].Type)
	})

	t.Run("seed is idempotent", func(t *testing.T) {
		require.NoError(t, db.Seed(cfg))

		var users int64
		require.NoError(t, db.DB.Model(&models.User{}).Count(&users).Error)
		assert.Equal(t, int64(1), users)

		var plans int64
		require.NoError(t, db.DB.Model(&models.Plan{}).Count(&plans).Error)
		assert.Equal(t, int64(6), plans)
	})

	t.Run("disabled initial admin skips seeding", func(t *testing.T) {
		empty := setupTestDB(t)
		cfg := seedConfig()
		cfg.InitialAdmin.Enabled = false
		require.NoError(t, empty.Seed(cfg))

		var users int64
		require.NoError(t, empty.DB.Model(&models.User{}).Count(&users).Error)
		assert.Zero(t, users)
	})

	t.Run("missing admin password fails", func(t *testing.T) {
		empty := setupTestDB(t)
		cfg := seedConfig()
		cfg.InitialAdmin.Password = ""
		assert.Error(t, empty.Seed(cfg))
	})
}

func TestVMStatusTransition(t *testing.T) {
	db := setupTestDB(t)
	vmRepo := repositories.NewVMRepository(db.DB)

	vm := &models.VirtualMachine{
		Name:           "web-01",
		HypervisorType: models.HypervisorProxmox,
		PlanType:       models.PlanCustom,
		Status:         models.VMStatusCreating,
		ClientID:       1,
	}
	require.NoError(t, vmRepo.Create(vm))

	t.Run("guarded transition succeeds from the expected status", func(t *testing.T) {
		require.NoError(t, vmRepo.TransitionStatus(vm.ID, models.VMStatusCreating, models.VMStatusRunning))

		got, err := vmRepo.GetByID(vm.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VMStatusRunning, got.Status)
	})

	t.Run("transition from the wrong status fails", func(t *testing.T) {
		err := vmRepo.TransitionStatus(vm.ID, models.VMStatusCreating, models.VMStatusError)
		assert.Error(t, err)

		got, err := vmRepo.GetByID(vm.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VMStatusRunning, got.Status, "status is unchanged")
	})

	t.Run("transition on a missing row fails", func(t *testing.T) {
		err := vmRepo.TransitionStatus(9999, models.VMStatusCreating, models.VMStatusRunning)
		assert.Error(t, err)
	})
}

func TestHypervisorRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewHypervisorRepository(db.DB)

	active := &models.Hypervisor{
		Name: "px1", Type: models.HypervisorProxmox,
		APIURL: "https://px1.example.com", AuthType: models.AuthCredentials,
		Status: models.HypervisorActive,
	}
	inactive := &models.Hypervisor{
		Name: "px2", Type: models.HypervisorProxmox,
		APIURL: "https://px2.example.com", AuthType: models.AuthCredentials,
		Status: models.HypervisorInactive,
	}
	require.NoError(t, repo.Create(active))
	require.NoError(t, repo.Create(inactive))

	t.Run("GetActiveByType skips inactive profiles", func(t *testing.T) {
		hv, err := repo.GetActiveByType(models.HypervisorProxmox)
		require.NoError(t, err)
		assert.Equal(t, "px1", hv.Name)

		_, err = repo.GetActiveByType(models.HypervisorVCenter)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("CountDependentVMs and Deactivate", func(t *testing.T) {
		vm := &models.VirtualMachine{
			Name: "web-01", HypervisorType: models.HypervisorProxmox,
			PlanType: models.PlanCustom, Status: models.VMStatusRunning,
			HypervisorID: &active.ID, ClientID: 1,
		}
		require.NoError(t, db.DB.Create(vm).Error)

		count, err := repo.CountDependentVMs(active.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		require.NoError(t, repo.Deactivate(active.ID))
		hv, err := repo.GetByID(active.ID)
		require.NoError(t, err)
		assert.Equal(t, models.HypervisorInactive, hv.Status)
	})
}

func TestClientRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewClientRepository(db.DB)

	client := &models.Client{Name: "Acme Corp"}
	require.NoError(t, repo.Create(client))

	t.Run("GetByName", func(t *testing.T) {
		got, err := repo.GetByName("Acme Corp")
		require.NoError(t, err)
		assert.Equal(t, client.ID, got.ID)

		_, err = repo.GetByName("Nobody")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("CountDependentVMs", func(t *testing.T) {
		count, err := repo.CountDependentVMs(client.ID)
		require.NoError(t, err)
		assert.Zero(t, count)

		vm := &models.VirtualMachine{
			Name: "web-01", HypervisorType: models.HypervisorProxmox,
			PlanType: models.PlanCustom, Status: models.VMStatusRunning,
			ClientID: client.ID,
		}
		require.NoError(t, db.DB.Create(vm).Error)

		count, err = repo.CountDependentVMs(client.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
