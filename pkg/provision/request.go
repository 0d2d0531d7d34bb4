package provision

import (
	"fmt"
	"strings"

	"github.com/provizor/provizor/pkg/database/models"
)

// CreateRequest is the VM creation payload accepted by the API. Field
// names mirror the wire format used by the wizard.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	HypervisorType models.HypervisorType `json:"hypervisorType"`
	HypervisorID   *uint                 `json:"hypervisorId"`
	PlanType       models.PlanType       `json:"planType"`
	PlanID         *uint                 `json:"planId"`

	RAM      string          `json:"ram"`
	CPUCores string          `json:"cpuCores"`
	DiskSize string          `json:"diskSize"`
	DiskType models.DiskType `json:"diskType"`

	OperatingSystem  string `json:"operatingSystem"`
	NetworkInterface string `json:"networkInterface"`
	IPAddress        string `json:"ipAddress"`
	Gateway          string `json:"gateway"`
	DNS              string `json:"dns"`

	Datastore    string `json:"datastore"`
	HostGroup    string `json:"hostGroup"`
	VNCAccess    bool   `json:"vncAccess"`
	Cluster      string `json:"cluster"`
	ResourcePool string `json:"resourcePool"`
	Folder       string `json:"folder"`
	Snapshot     bool   `json:"snapshot"`
	Backup       bool   `json:"backup"`

	ClientID     uint   `json:"clientId"`
	ReportNumber string `json:"reportNumber"`
}

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full field-error list for an invalid
// request. The caller must reject the request without any persistence
// side effect.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		fields[i] = fe.Field
	}
	return fmt.Sprintf("invalid request data: %s", strings.Join(fields, ", "))
}

// Validate schema-checks the request and returns the list of field-level
// errors. It performs no lookups; referential checks (client, plan)
// happen in the orchestrator before anything is written.
func Validate(req *CreateRequest) []FieldError {
	var errs []FieldError

	if !req.HypervisorType.Valid() {
		errs = append(errs, FieldError{Field: "hypervisorType", Message: "must be one of: proxmox, vcenter"})
	}
	if !req.PlanType.Valid() {
		errs = append(errs, FieldError{Field: "planType", Message: "must be one of: cataloged, custom"})
	}
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "VM name is required"})
	}
	if strings.TrimSpace(req.OperatingSystem) == "" {
		errs = append(errs, FieldError{Field: "operatingSystem", Message: "Operating system is required"})
	}
	if strings.TrimSpace(req.NetworkInterface) == "" {
		errs = append(errs, FieldError{Field: "networkInterface", Message: "Network interface is required"})
	}
	if strings.TrimSpace(req.ReportNumber) == "" {
		errs = append(errs, FieldError{Field: "reportNumber", Message: "Report number is required"})
	}
	if req.ClientID == 0 {
		errs = append(errs, FieldError{Field: "clientId", Message: "Client ID must be a positive integer"})
	}
	if req.DiskType != "" && !req.DiskType.Valid() {
		errs = append(errs, FieldError{Field: "diskType", Message: "must be one of: ssd, hdd"})
	}

	switch req.PlanType {
	case models.PlanCataloged:
		if req.PlanID == nil || *req.PlanID == 0 {
			errs = append(errs, FieldError{Field: "planId", Message: "Plan ID is required for cataloged plans"})
		}
	case models.PlanCustom:
		if req.PlanID != nil && *req.PlanID != 0 {
			errs = append(errs, FieldError{Field: "planId", Message: "Plan ID must not be set for custom plans"})
		}
		if strings.TrimSpace(req.RAM) == "" {
			errs = append(errs, FieldError{Field: "ram", Message: "RAM is required for custom plans"})
		}
		if strings.TrimSpace(req.CPUCores) == "" {
			errs = append(errs, FieldError{Field: "cpuCores", Message: "CPU cores are required for custom plans"})
		}
		if strings.TrimSpace(req.DiskSize) == "" {
			errs = append(errs, FieldError{Field: "diskSize", Message: "Disk size is required for custom plans"})
		}
	}

	return errs
}
