package provision

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/database/repositories"
	"github.com/provizor/provizor/pkg/hypervisor"
)

// CreateResult is returned to the caller after the pipeline completes.
// Message is the adapter's human-readable outcome; it is not stored
// separately from the status.
type CreateResult struct {
	ID      uint            `json:"id"`
	Name    string          `json:"name"`
	Status  models.VMStatus `json:"status"`
	Message string          `json:"message"`
}

// Orchestrator runs the creation pipeline: validate, persist a VM in
// "creating" state, dispatch to the matching adapter, persist the
// terminal status. It owns a VM row's status exclusively between the
// insert and the final transition.
type Orchestrator struct {
	vmRepo          *repositories.VMRepository
	planRepo        *repositories.PlanRepository
	clientRepo      *repositories.ClientRepository
	registry        *hypervisor.Registry
	dispatchTimeout time.Duration
}

// NewOrchestrator creates a creation orchestrator. A non-positive
// dispatchTimeout disables the timeout around the adapter call.
func NewOrchestrator(vmRepo *repositories.VMRepository, planRepo *repositories.PlanRepository, clientRepo *repositories.ClientRepository, registry *hypervisor.Registry, dispatchTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		vmRepo:          vmRepo,
		planRepo:        planRepo,
		clientRepo:      clientRepo,
		registry:        registry,
		dispatchTimeout: dispatchTimeout,
	}
}

// Create runs the full pipeline for one request. Validation failures are
// returned as *ValidationError with no state change. A failed
// provisioning attempt is not an error: the VM row exists with status
// "error" and the result carries the adapter's message.
func (o *Orchestrator) Create(ctx context.Context, req *CreateRequest, userID uint) (*CreateResult, error) {
	errs := Validate(req)

	ram, cpuCores, diskSize := req.RAM, req.CPUCores, req.DiskSize
	if req.PlanType == models.PlanCataloged && req.PlanID != nil && *req.PlanID > 0 {
		plan, err := o.planRepo.GetByID(*req.PlanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errs = append(errs, FieldError{Field: "planId", Message: "Plan not found"})
			} else {
				return nil, fmt.Errorf("failed to look up plan: %w", err)
			}
		} else {
			ram, cpuCores, diskSize = plan.RAM, plan.CPUCores, plan.DiskSize
		}
	}

	if req.ClientID > 0 {
		if _, err := o.clientRepo.GetByID(req.ClientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errs = append(errs, FieldError{Field: "clientId", Message: "Client not found"})
			} else {
				return nil, fmt.Errorf("failed to look up client: %w", err)
			}
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	diskType := req.DiskType
	if diskType == "" {
		diskType = models.DiskSSD
	}

	vm := &models.VirtualMachine{
		Name:             req.Name,
		Description:      req.Description,
		HypervisorType:   req.HypervisorType,
		HypervisorID:     req.HypervisorID,
		PlanType:         req.PlanType,
		PlanID:           req.PlanID,
		RAM:              ram,
		CPUCores:         cpuCores,
		DiskSize:         diskSize,
		DiskType:         diskType,
		OperatingSystem:  req.OperatingSystem,
		NetworkInterface: req.NetworkInterface,
		IPAddress:        req.IPAddress,
		Gateway:          req.Gateway,
		DNS:              req.DNS,
		Datastore:        req.Datastore,
		HostGroup:        req.HostGroup,
		VNCAccess:        req.VNCAccess,
		Cluster:          req.Cluster,
		ResourcePool:     req.ResourcePool,
		Folder:           req.Folder,
		Snapshot:         req.Snapshot,
		Backup:           req.Backup,
		Status:           models.VMStatusCreating,
		ClientID:         req.ClientID,
		ReportNumber:     req.ReportNumber,
		UserID:           userID,
	}

	if err := o.vmRepo.Create(vm); err != nil {
		return nil, fmt.Errorf("failed to persist virtual machine: %w", err)
	}

	adapter, err := o.registry.ForType(req.HypervisorType)
	if err != nil {
		// Impossible after validation unless the enum drifted. The row
		// must not stay in "creating", so mark it failed before bailing.
		if terr := o.vmRepo.TransitionStatus(vm.ID, models.VMStatusCreating, models.VMStatusError); terr != nil {
			log.Printf("failed to mark vm %d as error: %v", vm.ID, terr)
		}
		return nil, fmt.Errorf("hypervisor type %q: %w", req.HypervisorType, err)
	}

	dispatchID := uuid.NewString()
	log.Printf("dispatching vm %d (%s) to %s [dispatch %s]", vm.ID, vm.Name, req.HypervisorType, dispatchID)

	result := o.dispatch(ctx, adapter, vm)

	status := models.VMStatusError
	if result.Success {
		status = models.VMStatusRunning
	}
	if err := o.vmRepo.TransitionStatus(vm.ID, models.VMStatusCreating, status); err != nil {
		return nil, fmt.Errorf("failed to update vm status: %w", err)
	}

	log.Printf("vm %d provisioning finished with status %s [dispatch %s]", vm.ID, status, dispatchID)

	return &CreateResult{
		ID:      vm.ID,
		Name:    vm.Name,
		Status:  status,
		Message: result.Message,
	}, nil
}

// dispatch calls the adapter under the configured timeout, converting
// errors and panics into failed results so the VM row always reaches a
// terminal status.
func (o *Orchestrator) dispatch(ctx context.Context, adapter hypervisor.Adapter, vm *models.VirtualMachine) (result *hypervisor.Result) {
	if o.dispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.dispatchTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("adapter panic while provisioning vm %d: %v", vm.ID, r)
			result = &hypervisor.Result{Success: false, Message: fmt.Sprintf("provisioning aborted: %v", r)}
		}
	}()

	res, err := adapter.CreateVM(ctx, vm)
	if err != nil {
		return &hypervisor.Result{Success: false, Message: err.Error()}
	}
	return res
}
