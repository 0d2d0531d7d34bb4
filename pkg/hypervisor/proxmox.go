package hypervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strconv"

	"github.com/provizor/provizor/pkg/database/models"
)

// proxmoxOSMap translates the generic OS identifiers to Proxmox ostype
// values. Unknown values fall back to "other".
var proxmoxOSMap = map[string]string{
	"ubuntu-20.04":        "l26",
	"ubuntu-22.04":        "l26",
	"centos-7":            "l26",
	"centos-8":            "l26",
	"windows-server-2019": "win10",
	"windows-server-2022": "win10",
	"windows-10":          "win10",
	"windows-11":          "win11",
}

var gbPattern = regexp.MustCompile(`(?i)(\d+)\s*GB`)

const vncPasswordChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ProxmoxAdapter simulates VM creation against a Proxmox cluster.
type ProxmoxAdapter struct {
	sim Simulation
}

// NewProxmoxAdapter creates a Proxmox adapter with the given simulation settings.
func NewProxmoxAdapter(sim Simulation) *ProxmoxAdapter {
	return &ProxmoxAdapter{sim: sim}
}

// proxmoxPayload is the request shape a live Proxmox qemu create call
// would receive. It is synthesized and logged; no backend exists in the
// simulated adapter.
type proxmoxPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Node        string `json:"node"`
	Storage     string `json:"storage"`
	OSType      string `json:"ostype"`
	Cores       int    `json:"cores"`
	Memory      int    `json:"memory"`
	Disk        int    `json:"disk"`
	DiskType    string `json:"disktype"`
	Net0        string `json:"net0"`
	IPConfig0   string `json:"ipconfig0"`
	Nameserver  string `json:"nameserver,omitempty"`
	OnBoot      bool   `json:"onboot"`
	Agent       int    `json:"agent"`
	Protection  bool   `json:"protection"`
	Startup     string `json:"startup"`
	VNCPassword string `json:"vncpassword,omitempty"`
	Backup      bool   `json:"backup"`
}

// CreateVM simulates creating the VM on a Proxmox node.
func (a *ProxmoxAdapter) CreateVM(ctx context.Context, vm *models.VirtualMachine) (*Result, error) {
	ok, err := a.sim.outcome(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Result{Success: false, Message: "Failed to connect to Proxmox API"}, nil
	}

	payload := proxmoxPayload{
		Name:        vm.Name,
		Description: vm.Description,
		Node:        vm.HostGroup,
		Storage:     vm.Datastore,
		OSType:      MapProxmoxOS(vm.OperatingSystem),
		Cores:       parseCores(vm.CPUCores),
		Memory:      ParseProxmoxMemoryMB(vm.RAM),
		Disk:        ParseProxmoxDiskGB(vm.DiskSize),
		DiskType:    string(vm.DiskType),
		Net0:        fmt.Sprintf("model=virtio,bridge=%s", vm.NetworkInterface),
		IPConfig0:   "ip=dhcp",
		Nameserver:  vm.DNS,
		OnBoot:      true,
		Agent:       1,
		Backup:      vm.Backup,
	}
	if vm.IPAddress != "" {
		payload.IPConfig0 = fmt.Sprintf("ip=%s/24,gw=%s", vm.IPAddress, vm.Gateway)
	}
	if vm.VNCAccess {
		// Generated for the provisioning call only; the password is not
		// persisted or returned to the caller.
		payload.VNCPassword = GenerateVNCPassword()
	}

	if body, err := json.Marshal(payload); err == nil {
		log.Printf("Proxmox VM creation payload: %s", body)
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Successfully created VM %q on Proxmox node %s", vm.Name, vm.HostGroup),
	}, nil
}

// MapProxmoxOS maps a generic OS identifier to a Proxmox ostype value.
func MapProxmoxOS(os string) string {
	if mapped, ok := proxmoxOSMap[os]; ok {
		return mapped
	}
	return "other"
}

// ParseProxmoxMemoryMB converts a RAM string such as "4 GB" to megabytes.
// Unparseable input falls back to 1024 MB.
func ParseProxmoxMemoryMB(ram string) int {
	if m := gbPattern.FindStringSubmatch(ram); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 1024
	}
	return 1024
}

// ParseProxmoxDiskGB converts a disk size string such as "20 GB" to
// gigabytes. Unparseable input falls back to 20 GB.
func ParseProxmoxDiskGB(disk string) int {
	if m := gbPattern.FindStringSubmatch(disk); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 20
}

// GenerateVNCPassword returns a random 8-character mixed-case
// alphanumeric password.
func GenerateVNCPassword() string {
	password := make([]byte, 8)
	for i := range password {
		password[i] = vncPasswordChars[rand.Intn(len(vncPasswordChars))]
	}
	return string(password)
}

func parseCores(cores string) int {
	n, err := strconv.Atoi(cores)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
