package hypervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/provizor/provizor/pkg/database/models"
)

// vcenterOSMap translates the generic OS identifiers to vCenter guest OS
// values. Unknown values fall back to "OTHER_64".
var vcenterOSMap = map[string]string{
	"ubuntu-20.04":        "UBUNTU_64",
	"ubuntu-22.04":        "UBUNTU_64",
	"centos-7":            "CENTOS_64",
	"centos-8":            "CENTOS_64",
	"windows-server-2019": "WINDOWS_SERVER_2019",
	"windows-server-2022": "WINDOWS_SERVER_2022",
	"windows-10":          "WINDOWS_10_64",
	"windows-11":          "WINDOWS_11_64",
}

var tbPattern = regexp.MustCompile(`(?i)(\d+)\s*TB`)

// VCenterAdapter simulates VM creation against a vCenter server.
type VCenterAdapter struct {
	sim Simulation
}

// NewVCenterAdapter creates a vCenter adapter with the given simulation settings.
func NewVCenterAdapter(sim Simulation) *VCenterAdapter {
	return &VCenterAdapter{sim: sim}
}

// vcenterPayload is the request shape a live vCenter VM create call would
// receive. Synthesized and logged only.
type vcenterPayload struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	GuestOS     string           `json:"guest_OS"`
	Placement   vcenterPlacement `json:"placement"`
	Compute     vcenterCompute   `json:"compute"`
	Disks       []vcenterDisk    `json:"disks"`
	NICs        []vcenterNIC     `json:"nics"`
	HWVersion   string           `json:"hardware_version"`
	Boot        vcenterBoot      `json:"boot"`
	VMOptions   vcenterVMOptions `json:"vm_options"`
	GuestCustom vcenterGuest     `json:"guest_customization"`
}

type vcenterPlacement struct {
	Cluster      string `json:"cluster"`
	ResourcePool string `json:"resource_pool"`
	Folder       string `json:"folder"`
	Datastore    string `json:"datastore"`
}

type vcenterCompute struct {
	CPU    vcenterCPU    `json:"cpu"`
	Memory vcenterMemory `json:"memory"`
}

type vcenterCPU struct {
	Count          int  `json:"count"`
	CoresPerSocket int  `json:"cores_per_socket"`
	HotAddEnabled  bool `json:"hot_add_enabled"`
}

type vcenterMemory struct {
	SizeMiB       int  `json:"size_MiB"`
	HotAddEnabled bool `json:"hot_add_enabled"`
}

type vcenterDisk struct {
	Type    string      `json:"type"`
	NewVMDK vcenterVMDK `json:"new_vmdk"`
}

type vcenterVMDK struct {
	Capacity  int64  `json:"capacity"`
	Name      string `json:"name"`
	Datastore string `json:"datastore"`
}

type vcenterNIC struct {
	Network string `json:"network"`
	Type    string `json:"type"`
}

type vcenterBoot struct {
	Type string `json:"type"`
}

type vcenterVMOptions struct {
	Snapshot bool `json:"snapshot"`
}

type vcenterGuest struct {
	Name       string          `json:"name"`
	Domain     string          `json:"domain"`
	IPSettings vcenterIPv4Wrap `json:"ip_settings"`
	DNS        vcenterDNS      `json:"dns_settings"`
}

type vcenterIPv4Wrap struct {
	IPv4 vcenterIPv4 `json:"ipv4"`
}

type vcenterIPv4 struct {
	Type    string `json:"type"`
	Address string `json:"address,omitempty"`
	Gateway string `json:"gateway,omitempty"`
	Prefix  int    `json:"prefix"`
}

type vcenterDNS struct {
	Servers []string `json:"dns_servers"`
}

// CreateVM simulates creating the VM on a vCenter cluster.
func (a *VCenterAdapter) CreateVM(ctx context.Context, vm *models.VirtualMachine) (*Result, error) {
	ok, err := a.sim.outcome(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Result{Success: false, Message: "Failed to connect to vCenter API"}, nil
	}

	cores := parseCores(vm.CPUCores)
	coresPerSocket := cores
	if coresPerSocket > 8 {
		coresPerSocket = 8
	}

	ipType := "DHCP"
	if vm.IPAddress != "" {
		ipType = "STATIC"
	}

	var dnsServers []string
	if vm.DNS != "" {
		for _, server := range strings.Split(vm.DNS, ",") {
			dnsServers = append(dnsServers, strings.TrimSpace(server))
		}
	}

	payload := vcenterPayload{
		Name:        vm.Name,
		Description: vm.Description,
		GuestOS:     MapVCenterOS(vm.OperatingSystem),
		Placement: vcenterPlacement{
			Cluster:      vm.Cluster,
			ResourcePool: vm.ResourcePool,
			Folder:       vm.Folder,
			Datastore:    vm.Datastore,
		},
		Compute: vcenterCompute{
			CPU: vcenterCPU{
				Count:          cores,
				CoresPerSocket: coresPerSocket,
				HotAddEnabled:  true,
			},
			Memory: vcenterMemory{
				SizeMiB:       ParseVCenterMemoryMiB(vm.RAM),
				HotAddEnabled: true,
			},
		},
		Disks: []vcenterDisk{{
			Type: "SCSI",
			NewVMDK: vcenterVMDK{
				Capacity:  ParseVCenterDiskBytes(vm.DiskSize),
				Name:      fmt.Sprintf("%s_disk1", vm.Name),
				Datastore: vm.Datastore,
			},
		}},
		NICs: []vcenterNIC{{
			Network: vm.NetworkInterface,
			Type:    "VMXNET3",
		}},
		HWVersion: "VMX_13",
		Boot:      vcenterBoot{Type: "BIOS"},
		VMOptions: vcenterVMOptions{Snapshot: vm.Snapshot},
		GuestCustom: vcenterGuest{
			Name:   vm.Name,
			Domain: "local",
			IPSettings: vcenterIPv4Wrap{IPv4: vcenterIPv4{
				Type:    ipType,
				Address: vm.IPAddress,
				Gateway: vm.Gateway,
				Prefix:  24,
			}},
			DNS: vcenterDNS{Servers: dnsServers},
		},
	}

	if body, err := json.Marshal(payload); err == nil {
		log.Printf("vCenter VM creation payload: %s", body)
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Successfully created VM %q on vCenter cluster %s", vm.Name, vm.Cluster),
	}, nil
}

// MapVCenterOS maps a generic OS identifier to a vCenter guest OS value.
func MapVCenterOS(os string) string {
	if mapped, ok := vcenterOSMap[os]; ok {
		return mapped
	}
	return "OTHER_64"
}

// ParseVCenterMemoryMiB converts a RAM string such as "4 GB" to MiB.
// Unparseable input falls back to 1024 MiB.
func ParseVCenterMemoryMiB(ram string) int {
	if m := gbPattern.FindStringSubmatch(ram); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 1024
	}
	return 1024
}

// ParseVCenterDiskBytes converts a disk size string such as "20 GB" or
// "2 TB" to bytes. Unparseable input falls back to 20 GB.
func ParseVCenterDiskBytes(disk string) int64 {
	if m := gbPattern.FindStringSubmatch(disk); m != nil {
		n, _ := strconv.ParseInt(m[1], 10, 64)
		return n * 1024 * 1024 * 1024
	}
	if m := tbPattern.FindStringSubmatch(disk); m != nil {
		n, _ := strconv.ParseInt(m[1], 10, 64)
		return n * 1024 * 1024 * 1024 * 1024
	}
	return 20 * 1024 * 1024 * 1024
}
