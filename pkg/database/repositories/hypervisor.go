package repositories

import (
	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/database/models"
)

type HypervisorRepository struct {
	db *gorm.DB
}

func NewHypervisorRepository(db *gorm.DB) *HypervisorRepository {
	return &HypervisorRepository{db: db}
}

func (r *HypervisorRepository) Create(hv *models.Hypervisor) error {
	return r.db.Create(hv).Error
}

func (r *HypervisorRepository) GetByID(id uint) (*models.Hypervisor, error) {
	var hv models.Hypervisor
	err := r.db.Where("id = ?", id).First(&hv).Error
	if err != nil {
		return nil, err
	}
	return &hv, nil
}

// GetActiveByType returns the first active profile for a backend type.
func (r *HypervisorRepository) GetActiveByType(t models.HypervisorType) (*models.Hypervisor, error) {
	var hv models.Hypervisor
	err := r.db.Where("type = ? AND status = ?", t, models.HypervisorActive).First(&hv).Error
	if err != nil {
		return nil, err
	}
	return &hv, nil
}

func (r *HypervisorRepository) List() ([]models.Hypervisor, error) {
	var hvs []models.Hypervisor
	err := r.db.Order("id").Find(&hvs).Error
	return hvs, err
}

func (r *HypervisorRepository) Update(hv *models.Hypervisor) error {
	return r.db.Save(hv).Error
}

// CountDependentVMs returns how many VM records reference the hypervisor.
func (r *HypervisorRepository) CountDependentVMs(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.VirtualMachine{}).Where("hypervisor_id = ?", id).Count(&count).Error
	return count, err
}

// Deactivate marks the profile inactive without removing it. Used instead
// of deletion while VM records still reference it.
func (r *HypervisorRepository) Deactivate(id uint) error {
	return r.db.Model(&models.Hypervisor{}).Where("id = ?", id).
		Update("status", models.HypervisorInactive).Error
}

func (r *HypervisorRepository) Delete(id uint) error {
	return r.db.Delete(&models.Hypervisor{}, id).Error
}
