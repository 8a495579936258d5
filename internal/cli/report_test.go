package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/weave/internal/interception"
	"github.com/toyz/weave/internal/models"
)

func sampleReport() *Report {
	return &Report{
		RunID:     "3f1c",
		StartedAt: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Packages:  2,
		Components: []ComponentOutcome{
			{
				Identity:   "shop.Cart",
				Registered: true,
				Snapshot: &interception.ModelSnapshot{
					Identity: "shop.Cart",
					Class: map[models.InterceptionType][]models.TypeIdentity{
						models.PostConstruct: {"shop.Lifecycle"},
					},
					Methods: map[string]map[models.InterceptionType][]models.TypeIdentity{
						"Checkout": {models.AroundInvoke: {"shop.Logging", "shop.Audit"}},
						"Expire":   {models.AroundTimeout: {"shop.Logging"}},
					},
					IgnoringGlobal: []string{"Checkout"},
					TargetClass:    []models.InterceptionType{models.AroundInvoke},
				},
			},
			{Identity: "shop.Catalog"},
			{Identity: "shop.Ledger", Code: "FinalClassWithInterceptors", Error: "component class shop.Ledger with interceptors must not be final"},
		},
	}
}

func TestReportCounts(t *testing.T) {
	report := sampleReport()
	assert.Equal(t, 1, report.Registered())
	assert.Equal(t, 1, report.Failed())
}

func TestReportWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteText(&buf))

	expected := `run 3f1c: 1 registered, 1 failed, 3 components in 2 packages (1.5s)
  OK   shop.Cart
         post_construct: [shop.Lifecycle]
         Checkout around_invoke: [shop.Logging shop.Audit]
         Expire around_timeout: [shop.Logging]
         ignoring class interceptors: Checkout
         self interception: around_invoke
  SKIP shop.Catalog (no interception)
  FAIL shop.Ledger [FinalClassWithInterceptors] component class shop.Ledger with interceptors must not be final
`
	assert.Equal(t, expected, buf.String())
}

func TestReportWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteJSON(&buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "3f1c", decoded["run_id"])
	assert.EqualValues(t, 1500, decoded["duration_ms"])
	assert.EqualValues(t, 2, decoded["packages"])

	components := decoded["components"].([]interface{})
	require.Len(t, components, 3)

	cart := components[0].(map[string]interface{})
	assert.Equal(t, true, cart["registered"])
	model := cart["model"].(map[string]interface{})
	methods := model["methods"].(map[string]interface{})
	checkout := methods["Checkout"].(map[string]interface{})
	assert.Equal(t, []interface{}{"shop.Logging", "shop.Audit"}, checkout["around_invoke"])

	ledger := components[2].(map[string]interface{})
	assert.Equal(t, "FinalClassWithInterceptors", ledger["code"])
	assert.NotContains(t, ledger, "model")
}
