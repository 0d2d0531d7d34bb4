package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/database/models"
)

type VMRepository struct {
	db *gorm.DB
}

func NewVMRepository(db *gorm.DB) *VMRepository {
	return &VMRepository{db: db}
}

func (r *VMRepository) Create(vm *models.VirtualMachine) error {
	return r.db.Create(vm).Error
}

func (r *VMRepository) GetByID(id uint) (*models.VirtualMachine, error) {
	var vm models.VirtualMachine
	err := r.db.Where("id = ?", id).First(&vm).Error
	if err != nil {
		return nil, err
	}
	return &vm, nil
}

func (r *VMRepository) List() ([]models.VirtualMachine, error) {
	var vms []models.VirtualMachine
	err := r.db.Order("id").Find(&vms).Error
	return vms, err
}

func (r *VMRepository) ListByClient(clientID uint) ([]models.VirtualMachine, error) {
	var vms []models.VirtualMachine
	err := r.db.Where("client_id = ?", clientID).Order("id").Find(&vms).Error
	return vms, err
}

func (r *VMRepository) ListByUser(userID uint) ([]models.VirtualMachine, error) {
	var vms []models.VirtualMachine
	err := r.db.Where("user_id = ?", userID).Order("id").Find(&vms).Error
	return vms, err
}

func (r *VMRepository) Update(vm *models.VirtualMachine) error {
	return r.db.Save(vm).Error
}

// UpdateStatus sets the status unconditionally. General CRUD use only;
// the creation pipeline goes through TransitionStatus.
func (r *VMRepository) UpdateStatus(id uint, status models.VMStatus) error {
	return r.db.Model(&models.VirtualMachine{}).Where("id = ?", id).
		Update("status", status).Error
}

// TransitionStatus moves a VM from one status to another as a single
// atomic row update. It fails when the row is not currently in the
// expected status, which keeps the creation pipeline the sole writer of
// a row while it is in "creating".
func (r *VMRepository) TransitionStatus(id uint, from, to models.VMStatus) error {
	result := r.db.Model(&models.VirtualMachine{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("vm %d is not in status %q", id, from)
	}
	return nil
}

func (r *VMRepository) Delete(id uint) error {
	return r.db.Delete(&models.VirtualMachine{}, id).Error
}
