package models

import "time"

// VirtualMachine is the central entity produced by the creation pipeline.
//
// Exactly one of PlanID (planType=cataloged) or the custom resource fields
// (planType=custom) is populated; the resource spec strings mirror the
// Plan encoding either way. Within the creation pipeline the status only
// moves creating -> running or creating -> error.
type VirtualMachine struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`

	HypervisorType HypervisorType `gorm:"not null" json:"hypervisorType"`
	HypervisorID   *uint          `json:"hypervisorId,omitempty"`
	PlanType       PlanType       `gorm:"not null" json:"planType"`
	PlanID         *uint          `json:"planId,omitempty"`

	RAM      string   `gorm:"not null" json:"ram"`
	CPUCores string   `gorm:"not null" json:"cpuCores"`
	DiskSize string   `gorm:"not null" json:"diskSize"`
	DiskType DiskType `gorm:"not null" json:"diskType"`

	OperatingSystem  string `gorm:"not null" json:"operatingSystem"`
	NetworkInterface string `gorm:"not null" json:"networkInterface"`
	IPAddress        string `json:"ipAddress,omitempty"`
	Gateway          string `json:"gateway,omitempty"`
	DNS              string `json:"dns,omitempty"`

	Datastore string `json:"datastore,omitempty"`

	// Proxmox placement
	HostGroup string `json:"hostGroup,omitempty"`
	VNCAccess bool   `gorm:"default:false" json:"vncAccess"`

	// vCenter placement
	Cluster      string `json:"cluster,omitempty"`
	ResourcePool string `json:"resourcePool,omitempty"`
	Folder       string `json:"folder,omitempty"`
	Snapshot     bool   `gorm:"default:false" json:"snapshot"`

	Backup bool `gorm:"default:false" json:"backup"`

	Status       VMStatus `gorm:"not null" json:"status"`
	ClientID     uint     `gorm:"not null" json:"clientId"`
	ReportNumber string   `gorm:"not null" json:"reportNumber"`
	UserID       uint     `gorm:"not null" json:"userId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relationships
	Plan       *Plan       `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Hypervisor *Hypervisor `gorm:"foreignKey:HypervisorID" json:"hypervisor,omitempty"`
	Client     *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}
