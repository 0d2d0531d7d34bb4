package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/wizard"
)

const customPlanLabel = "Custom configuration"

// runWizard drives the four-step creation flow until the user exits.
// Each loop iteration provisions one VM; the state machine in pkg/wizard
// owns step gating and submission bookkeeping.
func runWizard(ctx context.Context, client *apiClient) error {
	plans, err := client.Plans(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch plans: %w", err)
	}
	clients, err := client.Clients(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch clients: %w", err)
	}
	if len(clients) == 0 {
		return fmt.Errorf("no clients registered; create one before provisioning VMs")
	}

	w := wizard.New(client)

	for {
		if err := stepHypervisor(w); err != nil {
			return err
		}
		if err := stepResources(w, plans); err != nil {
			return err
		}
		if err := stepConfiguration(w, clients); err != nil {
			return err
		}

		again, err := stepReview(ctx, w)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		if err := w.Reset(); err != nil {
			return err
		}
	}
}

func stepHypervisor(w *wizard.Wizard) error {
	fmt.Printf("\nStep 1/4: %s\n", w.CurrentStep())

	var choice string
	if err := survey.AskOne(&survey.Select{
		Message: "Hypervisor type:",
		Options: []string{"Proxmox VE", "VMware vCenter"},
	}, &choice); err != nil {
		return err
	}

	t := models.HypervisorProxmox
	if choice == "VMware vCenter" {
		t = models.HypervisorVCenter
	}
	if err := w.SelectHypervisor(t); err != nil {
		return err
	}
	return w.Advance()
}

func stepResources(w *wizard.Wizard, plans []models.Plan) error {
	fmt.Printf("\nStep 2/4: %s\n", w.CurrentStep())

	opts := make([]string, 0, len(plans)+1)
	byLabel := make(map[string]*models.Plan, len(plans))
	for i := range plans {
		p := &plans[i]
		label := fmt.Sprintf("%s: %s RAM, %s cores, %s disk", p.Name, p.RAM, p.CPUCores, p.DiskSize)
		opts = append(opts, label)
		byLabel[label] = p
	}
	opts = append(opts, customPlanLabel)

	var choice string
	if err := survey.AskOne(&survey.Select{
		Message: "Resource plan:",
		Options: opts,
	}, &choice); err != nil {
		return err
	}

	if choice == customPlanLabel {
		answers := struct {
			RAM      string
			CPUCores string
			DiskSize string
			DiskType string
		}{}
		qs := []*survey.Question{
			{Name: "ram", Prompt: &survey.Input{Message: "RAM (e.g. 4 GB):"}, Validate: survey.Required},
			{Name: "cpuCores", Prompt: &survey.Input{Message: "CPU cores:"}, Validate: survey.Required},
			{Name: "diskSize", Prompt: &survey.Input{Message: "Disk size (e.g. 40 GB):"}, Validate: survey.Required},
			{Name: "diskType", Prompt: &survey.Select{Message: "Disk type:", Options: []string{"ssd", "hdd"}, Default: "ssd"}},
		}
		if err := survey.Ask(qs, &answers); err != nil {
			return err
		}
		w.SetCustomConfig(answers.RAM, answers.CPUCores, answers.DiskSize, models.DiskType(answers.DiskType))
	} else {
		w.SelectPlan(byLabel[choice])
	}

	return w.Advance()
}

func stepConfiguration(w *wizard.Wizard, clients []models.Client) error {
	fmt.Printf("\nStep 3/4: %s\n", w.CurrentStep())

	var cfg wizard.Configuration

	if err := survey.AskOne(&survey.Input{Message: "VM name:"}, &cfg.Name, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Input{Message: "Description (optional):"}, &cfg.Description); err != nil {
		return err
	}

	var osLabel string
	if err := survey.AskOne(&survey.Select{
		Message: "Operating system:",
		Options: labels(osOptions),
	}, &osLabel); err != nil {
		return err
	}
	cfg.OperatingSystem = valueFor(osOptions, osLabel)

	var netLabel string
	if err := survey.AskOne(&survey.Select{
		Message: "Network interface:",
		Options: labels(networkOptions),
	}, &netLabel); err != nil {
		return err
	}
	cfg.NetworkInterface = valueFor(networkOptions, netLabel)

	var static bool
	if err := survey.AskOne(&survey.Confirm{Message: "Use a static IP address?", Default: false}, &static); err != nil {
		return err
	}
	if static {
		qs := []*survey.Question{
			{Name: "ipAddress", Prompt: &survey.Input{Message: "IP address (CIDR, e.g. 10.0.0.5/24):"}, Validate: survey.Required},
			{Name: "gateway", Prompt: &survey.Input{Message: "Gateway:"}, Validate: survey.Required},
			{Name: "dns", Prompt: &survey.Input{Message: "DNS servers (comma separated):"}},
		}
		answers := struct {
			IPAddress string
			Gateway   string
			DNS       string
		}{}
		if err := survey.Ask(qs, &answers); err != nil {
			return err
		}
		cfg.IPAddress = answers.IPAddress
		cfg.Gateway = answers.Gateway
		cfg.DNS = answers.DNS
	}

	if err := askBackendFields(w, &cfg); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Confirm{Message: "Enable scheduled snapshots?", Default: false}, &cfg.Snapshot); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Confirm{Message: "Enable backups?", Default: false}, &cfg.Backup); err != nil {
		return err
	}

	clientLabels := make([]string, len(clients))
	clientByLabel := make(map[string]uint, len(clients))
	for i, c := range clients {
		clientLabels[i] = c.Name
		clientByLabel[c.Name] = c.ID
	}
	var clientLabel string
	if err := survey.AskOne(&survey.Select{
		Message: "Client:",
		Options: clientLabels,
	}, &clientLabel); err != nil {
		return err
	}
	cfg.ClientID = clientByLabel[clientLabel]

	if err := survey.AskOne(&survey.Input{Message: "Report number:"}, &cfg.ReportNumber, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	return w.SubmitConfiguration(cfg)
}

// askBackendFields collects the backend-specific placement fields. The
// proxmox form maps its node selection onto the host group field.
func askBackendFields(w *wizard.Wizard, cfg *wizard.Configuration) error {
	if w.HypervisorType() == models.HypervisorProxmox {
		var nodeLabel, storageLabel string
		if err := survey.AskOne(&survey.Select{
			Message: "Proxmox node:",
			Options: labels(proxmoxNodeOptions),
		}, &nodeLabel); err != nil {
			return err
		}
		if err := survey.AskOne(&survey.Select{
			Message: "Storage:",
			Options: labels(proxmoxStorageOptions),
		}, &storageLabel); err != nil {
			return err
		}
		cfg.HostGroup = valueFor(proxmoxNodeOptions, nodeLabel)
		cfg.Datastore = valueFor(proxmoxStorageOptions, storageLabel)

		return survey.AskOne(&survey.Confirm{Message: "Enable VNC access?", Default: false}, &cfg.VNCAccess)
	}

	var dsLabel, clusterLabel, poolLabel, folderLabel string
	if err := survey.AskOne(&survey.Select{
		Message: "Datastore:",
		Options: labels(vcenterDatastoreOptions),
	}, &dsLabel); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Select{
		Message: "Cluster:",
		Options: labels(vcenterClusterOptions),
	}, &clusterLabel); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Select{
		Message: "Resource pool:",
		Options: labels(vcenterResourcePoolOptions),
	}, &poolLabel); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Select{
		Message: "VM folder:",
		Options: labels(vcenterFolderOptions),
	}, &folderLabel); err != nil {
		return err
	}

	cfg.Datastore = valueFor(vcenterDatastoreOptions, dsLabel)
	cfg.Cluster = valueFor(vcenterClusterOptions, clusterLabel)
	cfg.ResourcePool = valueFor(vcenterResourcePoolOptions, poolLabel)
	cfg.Folder = valueFor(vcenterFolderOptions, folderLabel)
	return nil
}

// stepReview shows the summary, submits, and walks the outcome panels.
// It returns true when the user wants to create another VM.
func stepReview(ctx context.Context, w *wizard.Wizard) (bool, error) {
	fmt.Printf("\nStep 4/4: %s\n", w.CurrentStep())
	printSummary(w)

	var confirmed bool
	if err := survey.AskOne(&survey.Confirm{Message: "Create this virtual machine?", Default: true}, &confirmed); err != nil {
		return false, err
	}
	if !confirmed {
		return false, nil
	}

	fmt.Println("Provisioning...")
	result, err := w.Submit(ctx)

	for {
		if err == nil && w.Phase() == wizard.PhaseSuccess {
			fmt.Printf("\n✓ VM %q created (id %d, status %s)\n", result.Name, result.ID, result.Status)
			fmt.Printf("  %s\n", result.Message)

			var again bool
			if err := survey.AskOne(&survey.Confirm{Message: "Create another VM?", Default: false}, &again); err != nil {
				return false, err
			}
			return again, nil
		}

		msg := w.LastError()
		if msg == "" && err != nil {
			msg = err.Error()
		}
		fmt.Printf("\n✗ Provisioning failed: %s\n", msg)

		var choice string
		if err := survey.AskOne(&survey.Select{
			Message: "What next?",
			Options: []string{"Try again", "Start over", "Exit"},
		}, &choice); err != nil {
			return false, err
		}

		switch choice {
		case "Try again":
			fmt.Println("Retrying...")
			result, err = w.Retry(ctx)
		case "Start over":
			return true, nil
		default:
			return false, nil
		}
	}
}

func printSummary(w *wizard.Wizard) {
	req := w.Preview()

	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("  Name:        %s\n", req.Name)
	fmt.Printf("  Hypervisor:  %s\n", req.HypervisorType)
	fmt.Printf("  Resources:   %s RAM, %s cores, %s %s disk\n", req.RAM, req.CPUCores, req.DiskSize, req.DiskType)
	fmt.Printf("  OS:          %s\n", req.OperatingSystem)
	fmt.Printf("  Network:     %s", req.NetworkInterface)
	if req.IPAddress != "" {
		fmt.Printf(" (static %s)", req.IPAddress)
	} else {
		fmt.Printf(" (DHCP)")
	}
	fmt.Println()
	if req.Datastore != "" {
		fmt.Printf("  Storage:     %s\n", req.Datastore)
	}
	fmt.Printf("  Report:      %s\n", req.ReportNumber)
	fmt.Println(strings.Repeat("─", 50))
}
