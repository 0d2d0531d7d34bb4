package main

// option pairs a wire value with its menu label.
type option struct {
	value string
	label string
}

var osOptions = []option{
	{"ubuntu-20.04", "Ubuntu 20.04 LTS"},
	{"ubuntu-22.04", "Ubuntu 22.04 LTS"},
	{"centos-7", "CentOS 7"},
	{"centos-8", "CentOS 8"},
	{"windows-server-2019", "Windows Server 2019"},
	{"windows-server-2022", "Windows Server 2022"},
	{"windows-10", "Windows 10"},
	{"windows-11", "Windows 11"},
}

var networkOptions = []option{
	{"prod-net", "Production Network"},
	{"dev-net", "Development Network"},
	{"test-net", "Test Network"},
	{"dmz-net", "DMZ Network"},
}

var proxmoxStorageOptions = []option{
	{"local-lvm", "local-lvm"},
	{"local-zfs", "local-zfs"},
	{"ceph-pool", "ceph-pool"},
	{"nfs-storage", "nfs-storage"},
}

var proxmoxNodeOptions = []option{
	{"node1", "node1"},
	{"node2", "node2"},
	{"node3", "node3"},
}

var vcenterDatastoreOptions = []option{
	{"ds-ssd-01", "ds-ssd-01"},
	{"ds-ssd-02", "ds-ssd-02"},
	{"ds-sas-01", "ds-sas-01"},
	{"ds-sas-02", "ds-sas-02"},
}

var vcenterClusterOptions = []option{
	{"prod-cluster", "prod-cluster"},
	{"dev-cluster", "dev-cluster"},
	{"test-cluster", "test-cluster"},
}

var vcenterResourcePoolOptions = []option{
	{"high", "High Priority"},
	{"medium", "Medium Priority"},
	{"low", "Low Priority"},
}

var vcenterFolderOptions = []option{
	{"web-servers", "Web Servers"},
	{"app-servers", "App Servers"},
	{"db-servers", "DB Servers"},
	{"utility-servers", "Utility Servers"},
}

func labels(opts []option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.label
	}
	return out
}

func valueFor(opts []option, label string) string {
	for _, o := range opts {
		if o.label == label {
			return o.value
		}
	}
	return label
}
