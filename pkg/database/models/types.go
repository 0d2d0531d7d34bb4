package models

// HypervisorType identifies which virtualization backend a VM targets.
type HypervisorType string

const (
	HypervisorProxmox HypervisorType = "proxmox"
	HypervisorVCenter HypervisorType = "vcenter"
)

// Valid checks if the hypervisor type is one of the supported backends
func (t HypervisorType) Valid() bool {
	switch t {
	case HypervisorProxmox, HypervisorVCenter:
		return true
	default:
		return false
	}
}

// String returns the string representation
func (t HypervisorType) String() string {
	return string(t)
}

// PlanType distinguishes cataloged resource bundles from custom sizing.
type PlanType string

const (
	PlanCataloged PlanType = "cataloged"
	PlanCustom    PlanType = "custom"
)

// Valid checks if the plan type is valid
func (t PlanType) Valid() bool {
	switch t {
	case PlanCataloged, PlanCustom:
		return true
	default:
		return false
	}
}

// DiskType is the storage class for a VM's primary disk.
type DiskType string

const (
	DiskSSD DiskType = "ssd"
	DiskHDD DiskType = "hdd"
)

// Valid checks if the disk type is valid
func (t DiskType) Valid() bool {
	switch t {
	case DiskSSD, DiskHDD:
		return true
	default:
		return false
	}
}

// VMStatus is the lifecycle state of a virtual machine record.
type VMStatus string

const (
	VMStatusCreating VMStatus = "creating"
	VMStatusRunning  VMStatus = "running"
	VMStatusError    VMStatus = "error"
	VMStatusStopped  VMStatus = "stopped"
)

// String returns the string representation
func (s VMStatus) String() string {
	return string(s)
}

// HypervisorStatus is the lifecycle state of a hypervisor connection profile.
type HypervisorStatus string

const (
	HypervisorActive      HypervisorStatus = "active"
	HypervisorInactive    HypervisorStatus = "inactive"
	HypervisorMaintenance HypervisorStatus = "maintenance"
)

// AuthType selects how a hypervisor connection authenticates.
type AuthType string

const (
	AuthCredentials AuthType = "credentials"
	AuthToken       AuthType = "token"
)

// Role constants
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// ValidRole checks if the role is one of the defined roles
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	default:
		return false
	}
}
