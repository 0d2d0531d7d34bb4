package repositories

import (
	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/database/models"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(client *models.Client) error {
	return r.db.Create(client).Error
}

func (r *ClientRepository) GetByID(id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.Where("id = ?", id).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) GetByName(name string) (*models.Client, error) {
	var client models.Client
	err := r.db.Where("name = ?", name).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) List() ([]models.Client, error) {
	var clients []models.Client
	err := r.db.Order("id").Find(&clients).Error
	return clients, err
}

func (r *ClientRepository) Update(client *models.Client) error {
	return r.db.Save(client).Error
}

// CountDependentVMs returns how many VM records reference the client.
// Deletion is blocked while this is non-zero.
func (r *ClientRepository) CountDependentVMs(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.VirtualMachine{}).Where("client_id = ?", id).Count(&count).Error
	return count, err
}

func (r *ClientRepository) Delete(id uint) error {
	return r.db.Delete(&models.Client{}, id).Error
}
