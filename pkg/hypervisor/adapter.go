package hypervisor

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/provizor/provizor/pkg/database/models"
)

// ErrUnsupportedType is returned when no adapter is registered for a
// hypervisor type. The request validator rejects unknown types before
// dispatch, so hitting this indicates schema drift.
var ErrUnsupportedType = errors.New("unsupported hypervisor type")

// Result is the outcome of a provisioning call. A failed provisioning
// attempt is a valid Result, not an error; errors are reserved for the
// call not completing at all (e.g. context cancellation).
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Adapter translates a generic VM spec into a backend-specific
// provisioning call. The simulated adapters in this package are one
// implementation; an HTTP-backed implementation satisfies the same
// interface.
type Adapter interface {
	CreateVM(ctx context.Context, vm *models.VirtualMachine) (*Result, error)
}

// Simulation controls the stubbed backend behavior: a fixed latency
// followed by a coin flip. Rand may be injected for deterministic tests;
// nil uses the shared math/rand source.
type Simulation struct {
	Latency     time.Duration
	SuccessRate float64
	Rand        func() float64
}

// DefaultSimulation mirrors the upstream stub: one second of latency and
// a 90% success rate.
func DefaultSimulation() Simulation {
	return Simulation{
		Latency:     time.Second,
		SuccessRate: 0.9,
	}
}

// outcome sleeps for the configured latency and flips the coin. It
// returns an error only when the context expires during the sleep.
func (s Simulation) outcome(ctx context.Context) (bool, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	roll := s.Rand
	if roll == nil {
		roll = rand.Float64
	}
	return roll() < s.SuccessRate, nil
}

// Registry maps hypervisor types to their adapters.
type Registry struct {
	adapters map[models.HypervisorType]Adapter
}

// NewRegistry creates a registry with the simulated Proxmox and vCenter
// adapters sharing one simulation configuration.
func NewRegistry(sim Simulation) *Registry {
	return &Registry{
		adapters: map[models.HypervisorType]Adapter{
			models.HypervisorProxmox: NewProxmoxAdapter(sim),
			models.HypervisorVCenter: NewVCenterAdapter(sim),
		},
	}
}

// ForType returns the adapter for the given backend type.
func (r *Registry) ForType(t models.HypervisorType) (Adapter, error) {
	adapter, ok := r.adapters[t]
	if !ok {
		return nil, ErrUnsupportedType
	}
	return adapter, nil
}
