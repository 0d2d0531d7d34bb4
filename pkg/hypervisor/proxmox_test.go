package hypervisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provizor/provizor/pkg/database/models"
)

func TestMapProxmoxOS(t *testing.T) {
	tests := []struct {
		os       string
		expected string
	}{
		{"ubuntu-20.04", "l26"},
		{"ubuntu-22.04", "l26"},
		{"centos-7", "l26"},
		{"centos-8", "l26"},
		{"windows-server-2019", "win10"},
		{"windows-server-2022", "win10"},
		{"windows-10", "win10"},
		{"windows-11", "win11"},
		{"freebsd-14", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapProxmoxOS(tt.os), "os %q", tt.os)
	}
}

func TestParseProxmoxMemoryMB(t *testing.T) {
	assert.Equal(t, 4096, ParseProxmoxMemoryMB("4 GB"))
	assert.Equal(t, 2048, ParseProxmoxMemoryMB("2GB"))
	assert.Equal(t, 8192, ParseProxmoxMemoryMB("8 gb"))
	assert.Equal(t, 65536, ParseProxmoxMemoryMB("64 GB"))

	t.Run("unparseable input falls back to 1024", func(t *testing.T) {
		assert.Equal(t, 1024, ParseProxmoxMemoryMB(""))
		assert.Equal(t, 1024, ParseProxmoxMemoryMB("lots"))
		assert.Equal(t, 1024, ParseProxmoxMemoryMB("4096 MB"))
	})
}

func TestParseProxmoxDiskGB(t *testing.T) {
	assert.Equal(t, 40, ParseProxmoxDiskGB("40 GB"))
	assert.Equal(t, 640, ParseProxmoxDiskGB("640GB"))

	t.Run("unparseable input falls back to 20", func(t *testing.T) {
		assert.Equal(t, 20, ParseProxmoxDiskGB(""))
		assert.Equal(t, 20, ParseProxmoxDiskGB("big"))
	})
}

func TestGenerateVNCPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		password := GenerateVNCPassword()
		require.Len(t, password, 8)
		for _, c := range password {
			valid := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			assert.True(t, valid, "unexpected character %q in password %q", c, password)
		}
		seen[password] = true
	}
	// 50 draws from a 62^8 space should not collide into one value
	assert.Greater(t, len(seen), 1)
}

func TestProxmoxAdapterCreateVM(t *testing.T) {
	vm := &models.VirtualMachine{
		Name:             "web-01",
		HypervisorType:   models.HypervisorProxmox,
		RAM:              "4 GB",
		CPUCores:         "2",
		DiskSize:         "40 GB",
		DiskType:         models.DiskSSD,
		OperatingSystem:  "ubuntu-22.04",
		NetworkInterface: "prod-net",
		HostGroup:        "node1",
		Datastore:        "local-lvm",
		VNCAccess:        true,
	}

	t.Run("successful outcome", func(t *testing.T) {
		adapter := NewProxmoxAdapter(Simulation{SuccessRate: 0.9, Rand: func() float64 { return 0.5 }})
		result, err := adapter.CreateVM(context.Background(), vm)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, `Successfully created VM "web-01" on Proxmox node node1`, result.Message)
	})

	t.Run("failed outcome", func(t *testing.T) {
		adapter := NewProxmoxAdapter(Simulation{SuccessRate: 0.9, Rand: func() float64 { return 0.95 }})
		result, err := adapter.CreateVM(context.Background(), vm)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "Failed to connect to Proxmox API", result.Message)
	})

	t.Run("cancelled context during latency", func(t *testing.T) {
		adapter := NewProxmoxAdapter(DefaultSimulation())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := adapter.CreateVM(ctx, vm)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
