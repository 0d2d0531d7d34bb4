package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/provizor/provizor/pkg/database/models"
)

func validCatalogedRequest() *CreateRequest {
	planID := uint(2)
	return &CreateRequest{
		Name:             "web-01",
		HypervisorType:   models.HypervisorProxmox,
		PlanType:         models.PlanCataloged,
		PlanID:           &planID,
		OperatingSystem:  "ubuntu-22.04",
		NetworkInterface: "prod-net",
		ClientID:         1,
		ReportNumber:     "RPT-100",
	}
}

func fieldsOf(errs []FieldError) []string {
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	return fields
}

func TestValidate(t *testing.T) {
	t.Run("valid cataloged request has no errors", func(t *testing.T) {
		assert.Empty(t, Validate(validCatalogedRequest()))
	})

	t.Run("valid custom request has no errors", func(t *testing.T) {
		req := validCatalogedRequest()
		req.PlanType = models.PlanCustom
		req.PlanID = nil
		req.RAM = "4 GB"
		req.CPUCores = "2"
		req.DiskSize = "40 GB"
		assert.Empty(t, Validate(req))
	})

	t.Run("empty request reports every missing field", func(t *testing.T) {
		errs := Validate(&CreateRequest{})
		fields := fieldsOf(errs)
		assert.Contains(t, fields, "hypervisorType")
		assert.Contains(t, fields, "planType")
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "operatingSystem")
		assert.Contains(t, fields, "networkInterface")
		assert.Contains(t, fields, "reportNumber")
		assert.Contains(t, fields, "clientId")
	})

	t.Run("unknown hypervisor type", func(t *testing.T) {
		req := validCatalogedRequest()
		req.HypervisorType = "xen"
		assert.Equal(t, []string{"hypervisorType"}, fieldsOf(Validate(req)))
	})

	t.Run("cataloged plan requires plan id", func(t *testing.T) {
		req := validCatalogedRequest()
		req.PlanID = nil
		assert.Equal(t, []string{"planId"}, fieldsOf(Validate(req)))

		zero := uint(0)
		req.PlanID = &zero
		assert.Equal(t, []string{"planId"}, fieldsOf(Validate(req)))
	})

	t.Run("custom plan rejects a plan id", func(t *testing.T) {
		req := validCatalogedRequest()
		req.PlanType = models.PlanCustom
		req.RAM = "4 GB"
		req.CPUCores = "2"
		req.DiskSize = "40 GB"
		assert.Equal(t, []string{"planId"}, fieldsOf(Validate(req)))
	})

	t.Run("custom plan requires resource fields", func(t *testing.T) {
		req := validCatalogedRequest()
		req.PlanType = models.PlanCustom
		req.PlanID = nil
		fields := fieldsOf(Validate(req))
		assert.ElementsMatch(t, []string{"ram", "cpuCores", "diskSize"}, fields)
	})

	t.Run("whitespace-only name is rejected", func(t *testing.T) {
		req := validCatalogedRequest()
		req.Name = "   "
		assert.Equal(t, []string{"name"}, fieldsOf(Validate(req)))
	})

	t.Run("invalid disk type", func(t *testing.T) {
		req := validCatalogedRequest()
		req.DiskType = "nvme"
		assert.Equal(t, []string{"diskType"}, fieldsOf(Validate(req)))
	})

	t.Run("empty disk type is allowed", func(t *testing.T) {
		req := validCatalogedRequest()
		req.DiskType = ""
		assert.Empty(t, Validate(req))
	})
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "name", Message: "VM name is required"},
		{Field: "clientId", Message: "Client ID must be a positive integer"},
	}}
	assert.Equal(t, "invalid request data: name, clientId", err.Error())
}
