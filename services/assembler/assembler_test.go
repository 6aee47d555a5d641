package assembler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estuary/models"
)

func strPtr(s string) *string { return &s }

func TestAssemblePackageOverridesBaseFields(t *testing.T) {
	draft := models.NewServiceDraft()
	draft.ServiceType = models.ServiceTypePackage
	draft.Name = "Restore"
	draft.Price = 999
	draft.DurationMinutes = 10
	draft.MaxParticipants = 8
	draft.PackageDiscount = 20
	draft.PackageSessions = []models.PackageSessionItem{
		{ServiceID: "s1", Service: models.ServiceSummary{ID: "s1", Price: 40, DurationMinutes: 30}, Order: 0},
		{ServiceID: "s2", Service: models.ServiceSummary{ID: "s2", Price: 50, DurationMinutes: 45}, Order: 1},
		{ServiceID: "s3", Service: models.ServiceSummary{ID: "s3", Price: 60, DurationMinutes: 60}, Order: 2},
	}

	req := Assemble(draft)
	assert.Equal(t, "120.00", req.Price)
	assert.Equal(t, 135, req.DurationMinutes)
	assert.Equal(t, 1, req.MaxParticipants)
	require.Len(t, req.ChildServiceConfigs, 3)
	for i, cfg := range req.ChildServiceConfigs {
		assert.Equal(t, 1, cfg.Quantity)
		assert.Equal(t, i, cfg.Order)
	}
	assert.Equal(t, "s2", req.ChildServiceConfigs[1].ChildServiceID)
	assert.Nil(t, req.SessionsIncluded)
}

func TestAssembleBundle(t *testing.T) {
	draft := models.NewServiceDraft()
	draft.ServiceType = models.ServiceTypeBundle
	draft.Price = 425
	draft.Bundle = &models.BundleConfig{SessionServiceID: "X", PricePerSession: 50, SessionsIncluded: 10}

	req := Assemble(draft)
	require.NotNil(t, req.SessionsIncluded)
	assert.Equal(t, 10, *req.SessionsIncluded)
	assert.Equal(t, []models.ChildServiceConfig{{ChildServiceID: "X", Quantity: 10}}, req.ChildServiceConfigs)
	assert.Equal(t, "425.00", req.Price)
}

func TestAssembleOptionalFieldsOnlyWhenSet(t *testing.T) {
	draft := models.NewServiceDraft()
	draft.ServiceType = models.ServiceTypeSession
	draft.Price = 60
	draft.ScheduleID = strPtr(models.NoneSentinel)

	raw, err := json.Marshal(Assemble(draft))
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotContains(t, body, "schedule")
	assert.NotContains(t, body, "modality_ids")
	assert.NotContains(t, body, "practitioner_category_id")
	assert.NotContains(t, body, "child_service_configs")
	assert.Equal(t, "60.00", body["price"])

	draft.ScheduleID = strPtr("sched-1")
	draft.ModalityIDs = []string{"m1"}
	draft.PractitionerCategoryID = strPtr("cat-9")
	req := Assemble(draft)
	assert.Equal(t, "sched-1", *req.Schedule)
	assert.Equal(t, []string{"m1"}, req.ModalityIDs)
	assert.Equal(t, "cat-9", *req.PractitionerCategoryID)
}

func TestAssembleCarriesCollections(t *testing.T) {
	draft := models.NewServiceDraft()
	draft.ServiceType = models.ServiceTypeWorkshop
	draft.WorkshopSessions = []models.WorkshopSession{
		{ID: "w1", StartTime: "2026-01-01T10:00:00Z", EndTime: "2026-01-01T12:00:00Z", Order: 0},
	}
	draft.Benefits = []models.Benefit{{ID: "b1", Title: "Calm", Icon: "leaf"}}
	draft.Resources = []models.Resource{
		{ID: "r1", Title: "Guide", ResourceType: models.ResourceLink, ExternalURL: strPtr("https://x.test"), FileURL: strPtr("ignored")},
	}
	draft.RevenueShares = []models.RevenueShare{{PractitionerID: "p2", RevenueSharePercentage: 30, Role: "co_host"}}

	req := Assemble(draft)
	require.Len(t, req.Sessions, 1)
	assert.Equal(t, "2026-01-01T10:00:00Z", req.Sessions[0].StartTime)
	require.Len(t, req.Resources, 1)
	assert.Nil(t, req.Resources[0].FileURL)
	assert.Equal(t, "https://x.test", *req.Resources[0].ExternalURL)
	assert.Equal(t, "Calm", req.Benefits[0].Title)
	assert.Equal(t, 30, req.AdditionalPractitioners[0].RevenueSharePercentage)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0.00", FormatPrice(0))
	assert.Equal(t, "19.99", FormatPrice(19.994))
	assert.Equal(t, "20.00", FormatPrice(19.999))
}
