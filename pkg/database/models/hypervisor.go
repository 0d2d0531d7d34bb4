package models

import "time"

// Hypervisor is a connection profile for a virtualization backend.
// Credentials and API tokens are mutually exclusive, selected by AuthType.
// Profiles that are still referenced by VM records are deactivated rather
// than deleted.
type Hypervisor struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Name       string           `gorm:"not null" json:"name"`
	Type       HypervisorType   `gorm:"not null" json:"type"`
	APIURL     string           `gorm:"not null" json:"apiUrl"`
	AuthType   AuthType         `gorm:"not null;default:credentials" json:"authType"`
	Username   string           `json:"username"`
	Password   string           `json:"-"`
	APIToken   string           `json:"-"`
	VerifyTLS  bool             `gorm:"default:true" json:"verifyTls"`
	Status     HypervisorStatus `gorm:"not null;default:active" json:"status"`
	Datacenter string           `json:"datacenter,omitempty"`
	Version    string           `json:"version,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Active reports whether the profile may be used for provisioning.
func (h *Hypervisor) Active() bool {
	return h.Status == HypervisorActive
}
