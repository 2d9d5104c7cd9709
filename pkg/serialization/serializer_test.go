package serialization

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meterbridge/telemetry-go/pkg/contracts"
)

// unknownTelemetry has no registered writer.
type unknownTelemetry struct {
	contracts.Common
}

func (*unknownTelemetry) EnvelopeName() string { return "Custom.Unregistered" }

func parseEnvelope(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope
}

func baseData(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "envelope has no data object")
	base, ok := data["baseData"].(map[string]any)
	require.True(t, ok, "data has no baseData object")
	return base
}

var testTime = time.Date(2026, 8, 27, 9, 30, 0, 123456700, time.UTC)

func TestDependencyPropertiesAtEnvelopeRoot(t *testing.T) {
	item := &contracts.Dependency{
		Common: contracts.Common{
			Timestamp:  testTime,
			Properties: map[string]string{"k": "v"},
		},
		Name:     "GET example.com",
		ID:       "dep-1",
		Duration: 1500 * time.Millisecond,
		Success:  true,
		Target:   "example.com",
		Type:     "Http",
	}

	raw := NewSerializer().Serialize("ikey-1", item, nil)
	envelope := parseEnvelope(t, raw)

	props, ok := envelope["properties"].(map[string]any)
	require.True(t, ok, "dependency properties belong at the envelope root")
	assert.Equal(t, "v", props["k"])

	base := baseData(t, envelope)
	assert.NotContains(t, base, "properties")
	assert.Equal(t, "RemoteDependencyData", envelope["data"].(map[string]any)["baseType"])
	assert.Equal(t, "GET example.com", base["name"])
	assert.Equal(t, "0.00:00:01.5000000", base["duration"])
	assert.Equal(t, true, base["success"])
}

func TestAvailabilityPropertiesInsideBaseData(t *testing.T) {
	item := &contracts.Availability{
		Common: contracts.Common{
			Timestamp:  testTime,
			Properties: map[string]string{"k": "v"},
		},
		Name:     "homepage probe",
		Duration: 2 * time.Second,
		Success:  true,
	}

	raw := NewSerializer().Serialize("ikey-1", item, nil)
	envelope := parseEnvelope(t, raw)

	assert.NotContains(t, envelope, "properties")
	base := baseData(t, envelope)
	props, ok := base["properties"].(map[string]any)
	require.True(t, ok, "availability properties belong inside baseData")
	assert.Equal(t, "v", props["k"])
}

func TestMinimalTraceOmitsOptionalKeys(t *testing.T) {
	item := &contracts.Trace{
		Common:  contracts.Common{Timestamp: testTime},
		Message: "hello",
	}

	raw := NewSerializer().Serialize("ikey-1", item, nil)
	envelope := parseEnvelope(t, raw)

	assert.NotContains(t, envelope, "properties")
	assert.NotContains(t, envelope, "tags")
	base := baseData(t, envelope)
	assert.NotContains(t, base, "severityLevel")
	assert.Equal(t, "hello", base["message"])
	assert.Equal(t, "2026-08-27T09:30:00.1234567Z", envelope["time"])
	assert.Equal(t, contracts.TraceEnvelopeName, envelope["name"])
	assert.Equal(t, "ikey-1", envelope["iKey"])
}

func TestSeverityRendersSymbolicName(t *testing.T) {
	item := &contracts.Trace{
		Common:   contracts.Common{Timestamp: testTime},
		Message:  "boom",
		Severity: contracts.Severity(contracts.Critical),
	}

	envelope := parseEnvelope(t, NewSerializer().Serialize("ikey-1", item, nil))
	assert.Equal(t, "Critical", baseData(t, envelope)["severityLevel"])
}

func TestUnknownKindSerializesToNothing(t *testing.T) {
	raw := NewSerializer().Serialize("ikey-1", &unknownTelemetry{}, nil)
	assert.Empty(t, raw)

	assert.Empty(t, NewSerializer().Serialize("ikey-1", nil, nil))
}

func TestOperationFoldsIntoTags(t *testing.T) {
	item := &contracts.Event{
		Common: contracts.Common{
			Timestamp: testTime,
			Operation: contracts.Operation{
				ID:       "trace-1",
				Name:     "GET /orders",
				ParentID: "span-2",
			},
		},
		Name: "checkout",
	}

	envelope := parseEnvelope(t, NewSerializer().Serialize("ikey-1", item, map[string]string{"ai.cloud.role": "web"}))
	tags, ok := envelope["tags"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "trace-1", tags["ai.operation.id"])
	assert.Equal(t, "GET /orders", tags["ai.operation.name"])
	assert.Equal(t, "span-2", tags["ai.operation.parentId"])
	assert.Equal(t, "web", tags["ai.cloud.role"])
}

func TestBlankPropertiesAreDropped(t *testing.T) {
	item := &contracts.Event{
		Common: contracts.Common{
			Timestamp: testTime,
			Properties: map[string]string{
				"":     "x",
				"  ":   "y",
				"keep": "me",
				"gone": "   ",
			},
		},
		Name: "cleanup",
	}

	envelope := parseEnvelope(t, NewSerializer().Serialize("ikey-1", item, nil))
	props, ok := envelope["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"keep": "me"}, props)
}

func TestExceptionChainOnTheWire(t *testing.T) {
	item := &contracts.Exception{
		Common: contracts.Common{Timestamp: testTime},
		Details: []contracts.ExceptionDetails{
			{ID: 1, OuterID: 0, TypeName: "*fmt.wrapError", Message: "outer: inner"},
			{ID: 2, OuterID: 1, TypeName: "*errors.errorString", Message: "inner"},
		},
		Severity: contracts.Severity(contracts.Error),
	}

	envelope := parseEnvelope(t, NewSerializer().Serialize("ikey-1", item, nil))
	base := baseData(t, envelope)
	exceptions, ok := base["exceptions"].([]any)
	require.True(t, ok)
	require.Len(t, exceptions, 2)

	outer := exceptions[0].(map[string]any)
	assert.Equal(t, float64(1), outer["id"])
	assert.Equal(t, float64(0), outer["outerId"])
	inner := exceptions[1].(map[string]any)
	assert.Equal(t, float64(2), inner["id"])
	assert.Equal(t, float64(1), inner["outerId"])
	assert.Equal(t, "Error", base["severityLevel"])
}

func TestMetricValueAndCount(t *testing.T) {
	count := 4
	item := &contracts.Metric{
		Common: contracts.Common{Timestamp: testTime},
		Name:   "queue.depth",
		Value:  12.5,
		Count:  &count,
	}

	envelope := parseEnvelope(t, NewSerializer().Serialize("ikey-1", item, nil))
	base := baseData(t, envelope)
	metrics, ok := base["metrics"].([]any)
	require.True(t, ok)
	require.Len(t, metrics, 1)
	point := metrics[0].(map[string]any)
	assert.Equal(t, "queue.depth", point["name"])
	assert.Equal(t, 12.5, point["value"])
	assert.Equal(t, float64(4), point["count"])
}
