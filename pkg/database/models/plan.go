package models

import "time"

// Plan is a predefined resource bundle selectable during VM creation.
// Plans are seeded reference data; ram, cpuCores and diskSize keep the
// unit-tagged string encoding used on the wire (e.g. "4 GB", "2").
type Plan struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"not null" json:"description"`
	RAM         string    `gorm:"not null" json:"ram"`
	CPUCores    string    `gorm:"not null" json:"cpuCores"`
	DiskSize    string    `gorm:"not null" json:"diskSize"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// DefaultPlans returns the predefined plan catalog that gets seeded on
// first startup.
func DefaultPlans() []Plan {
	return []Plan{
		{ID: 1, Name: "S", Description: "Small workloads", RAM: "2 GB", CPUCores: "1", DiskSize: "20 GB"},
		{ID: 2, Name: "M", Description: "Medium workloads", RAM: "4 GB", CPUCores: "2", DiskSize: "40 GB"},
		{ID: 3, Name: "L", Description: "Large workloads", RAM: "8 GB", CPUCores: "4", DiskSize: "80 GB"},
		{ID: 4, Name: "XL", Description: "Extra large workloads", RAM: "16 GB", CPUCores: "8", DiskSize: "160 GB"},
		{ID: 5, Name: "XXL", Description: "Heavy workloads", RAM: "32 GB", CPUCores: "16", DiskSize: "320 GB"},
		{ID: 6, Name: "XXXL", Description: "Enterprise workloads", RAM: "64 GB", CPUCores: "32", DiskSize: "640 GB"},
	}
}
