// Package wizard implements the multi-step VM creation state machine:
// hypervisor choice, resource plan, configuration form, then review and
// submission. It holds in-progress form state until final submission and
// is transport-agnostic; callers plug in a Submitter.
package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/provision"
)

// Step identifies a wizard step. Steps are linear with back-navigation.
type Step int

const (
	StepHypervisor Step = iota
	StepResources
	StepConfiguration
	StepReview
)

// String returns the step label
func (s Step) String() string {
	switch s {
	case StepHypervisor:
		return "Hypervisor"
	case StepResources:
		return "Resources"
	case StepConfiguration:
		return "Configuration"
	case StepReview:
		return "Review"
	default:
		return "Unknown"
	}
}

// Phase is the review step's display sub-state. Submission never
// advances the step index; it moves the phase instead.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

var (
	// ErrNoHypervisor is returned when advancing past the hypervisor step without a selection
	ErrNoHypervisor = errors.New("select a hypervisor type before continuing")
	// ErrResourcesIncomplete is returned when advancing past the resources step without a plan or complete custom config
	ErrResourcesIncomplete = errors.New("select a plan or fill in all custom resource fields")
	// ErrNotConfigured is returned when advancing past the configuration step before the form was submitted
	ErrNotConfigured = errors.New("complete the configuration form before continuing")
	// ErrNotAtReview is returned when submitting from any step but review
	ErrNotAtReview = errors.New("wizard is not at the review step")
	// ErrSubmitInFlight rejects a second submission while one is outstanding
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	// ErrNothingToRetry is returned when retrying before any submission was made
	ErrNothingToRetry = errors.New("no previous submission to retry")
)

// CustomConfig holds the custom resource sizing collected on the
// resources step.
type CustomConfig struct {
	RAM      string
	CPUCores string
	DiskSize string
	DiskType models.DiskType
}

func (c CustomConfig) complete() bool {
	return strings.TrimSpace(c.RAM) != "" &&
		strings.TrimSpace(c.CPUCores) != "" &&
		strings.TrimSpace(c.DiskSize) != ""
}

// Configuration holds the configuration-step form values.
type Configuration struct {
	Name             string
	Description      string
	OperatingSystem  string
	NetworkInterface string
	IPAddress        string
	Gateway          string
	DNS              string
	Datastore        string
	HostGroup        string
	Cluster          string
	ResourcePool     string
	Folder           string
	VNCAccess        bool
	Snapshot         bool
	Backup           bool
	ClientID         uint
	ReportNumber     string
}

// Submitter issues the creation request built by the wizard. The API
// client and tests provide implementations.
type Submitter interface {
	Submit(ctx context.Context, req *provision.CreateRequest) (*provision.CreateResult, error)
}

// Wizard drives a user through the creation steps, holding all collected
// state. Exactly one outbound request is issued per Submit or Retry call,
// and a second call while one is in flight is rejected.
type Wizard struct {
	mu        sync.Mutex
	submitter Submitter

	step           Step
	hypervisorType models.HypervisorType
	planType       models.PlanType
	plan           *models.Plan
	custom         CustomConfig
	config         Configuration
	configured     bool

	phase       Phase
	inFlight    bool
	lastRequest *provision.CreateRequest
	result      *provision.CreateResult
	lastError   string
}

// New creates a wizard at the initial step.
func New(submitter Submitter) *Wizard {
	return &Wizard{
		submitter: submitter,
		step:      StepHypervisor,
		planType:  models.PlanCataloged,
		custom:    CustomConfig{DiskType: models.DiskSSD},
	}
}

// CurrentStep returns the active step.
func (w *Wizard) CurrentStep() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Phase returns the review display sub-state.
func (w *Wizard) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// HypervisorType returns the selected backend type, empty before the
// first selection.
func (w *Wizard) HypervisorType() models.HypervisorType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hypervisorType
}

// Preview assembles the request that Submit would send, for display on
// the review step. It does not record anything.
func (w *Wizard) Preview() *provision.CreateRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buildRequest()
}

// Result returns the last successful submission result, if any.
func (w *Wizard) Result() *provision.CreateResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// LastError returns the message shown on the error panel.
func (w *Wizard) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastError
}

// SelectHypervisor records the chosen backend type.
func (w *Wizard) SelectHypervisor(t models.HypervisorType) error {
	if !t.Valid() {
		return ErrNoHypervisor
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hypervisorType = t
	return nil
}

// SelectPlan chooses a cataloged plan; nil clears the selection.
func (w *Wizard) SelectPlan(plan *models.Plan) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.planType = models.PlanCataloged
	w.plan = plan
}

// SetCustomConfig switches to custom sizing with the given values.
func (w *Wizard) SetCustomConfig(ram, cpuCores, diskSize string, diskType models.DiskType) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.planType = models.PlanCustom
	w.custom = CustomConfig{RAM: ram, CPUCores: cpuCores, DiskSize: diskSize, DiskType: diskType}
}

// SubmitConfiguration validates and stores the configuration form, then
// advances to the review step.
func (w *Wizard) SubmitConfiguration(cfg Configuration) error {
	if strings.TrimSpace(cfg.Name) == "" ||
		strings.TrimSpace(cfg.OperatingSystem) == "" ||
		strings.TrimSpace(cfg.NetworkInterface) == "" {
		return ErrNotConfigured
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepConfiguration {
		return ErrNotConfigured
	}
	w.config = cfg
	w.configured = true
	w.step = StepReview
	return nil
}

// Advance moves one step forward. It is a no-op at the last step and
// fails when the current step's requirements are not met.
func (w *Wizard) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepHypervisor:
		if w.hypervisorType == "" {
			return ErrNoHypervisor
		}
	case StepResources:
		if !w.resourcesChosen() {
			return ErrResourcesIncomplete
		}
	case StepConfiguration:
		if !w.configured {
			return ErrNotConfigured
		}
	case StepReview:
		return nil
	}

	w.step++
	return nil
}

// Retreat moves one step back, clamped at the first step.
func (w *Wizard) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepHypervisor {
		w.step--
	}
}

func (w *Wizard) resourcesChosen() bool {
	switch w.planType {
	case models.PlanCataloged:
		return w.plan != nil
	case models.PlanCustom:
		return w.custom.complete()
	default:
		return false
	}
}

// Submit builds the creation request from the collected state and issues
// it. It rejects a second call while one is outstanding.
func (w *Wizard) Submit(ctx context.Context) (*provision.CreateResult, error) {
	w.mu.Lock()
	if w.step != StepReview {
		w.mu.Unlock()
		return nil, ErrNotAtReview
	}
	if w.inFlight {
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	req := w.buildRequest()
	w.lastRequest = req
	w.inFlight = true
	w.phase = PhaseLoading
	w.mu.Unlock()

	return w.issue(ctx, req)
}

// Retry re-issues the identical last request without re-collecting
// input. Used after a failed outcome.
func (w *Wizard) Retry(ctx context.Context) (*provision.CreateResult, error) {
	w.mu.Lock()
	if w.lastRequest == nil {
		w.mu.Unlock()
		return nil, ErrNothingToRetry
	}
	if w.inFlight {
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	req := w.lastRequest
	w.inFlight = true
	w.phase = PhaseLoading
	w.mu.Unlock()

	return w.issue(ctx, req)
}

func (w *Wizard) issue(ctx context.Context, req *provision.CreateRequest) (*provision.CreateResult, error) {
	result, err := w.submitter.Submit(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false

	if err != nil {
		w.phase = PhaseError
		w.lastError = err.Error()
		return nil, err
	}

	w.result = result
	if result.Status == models.VMStatusRunning {
		w.phase = PhaseSuccess
		w.lastError = ""
	} else {
		w.phase = PhaseError
		w.lastError = result.Message
	}
	return result, nil
}

// Reset clears all collected state and returns to the initial step. It
// serves both "create another" after success and "start over" after an
// error.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrSubmitInFlight
	}
	w.step = StepHypervisor
	w.hypervisorType = ""
	w.planType = models.PlanCataloged
	w.plan = nil
	w.custom = CustomConfig{DiskType: models.DiskSSD}
	w.config = Configuration{}
	w.configured = false
	w.phase = PhaseIdle
	w.lastRequest = nil
	w.result = nil
	w.lastError = ""
	return nil
}

// buildRequest assembles the payload from the collected state. Cataloged
// plans contribute their resource strings; custom sizing passes through.
// Callers must hold w.mu.
func (w *Wizard) buildRequest() *provision.CreateRequest {
	req := &provision.CreateRequest{
		Name:             w.config.Name,
		Description:      w.config.Description,
		HypervisorType:   w.hypervisorType,
		PlanType:         w.planType,
		DiskType:         w.custom.DiskType,
		OperatingSystem:  w.config.OperatingSystem,
		NetworkInterface: w.config.NetworkInterface,
		IPAddress:        w.config.IPAddress,
		Gateway:          w.config.Gateway,
		DNS:              w.config.DNS,
		Datastore:        w.config.Datastore,
		HostGroup:        w.config.HostGroup,
		VNCAccess:        w.config.VNCAccess,
		Cluster:          w.config.Cluster,
		ResourcePool:     w.config.ResourcePool,
		Folder:           w.config.Folder,
		Snapshot:         w.config.Snapshot,
		Backup:           w.config.Backup,
		ClientID:         w.config.ClientID,
		ReportNumber:     w.config.ReportNumber,
	}

	if w.planType == models.PlanCataloged && w.plan != nil {
		id := w.plan.ID
		req.PlanID = &id
		req.RAM = w.plan.RAM
		req.CPUCores = w.plan.CPUCores
		req.DiskSize = w.plan.DiskSize
	} else {
		req.RAM = w.custom.RAM
		req.CPUCores = w.custom.CPUCores
		req.DiskSize = w.custom.DiskSize
	}

	return req
}
