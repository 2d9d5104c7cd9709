package serialization

import (
	"github.com/meterbridge/telemetry-go/pkg/contracts"
)

// registerBuiltin wires the writer for every record kind the pipeline ships
// with. Properties placement per kind follows the ingestion contract:
// Availability and Metric carry them inside baseData, everything else at
// the envelope root.
func registerBuiltin(s *Serializer) {
	s.Register(contracts.EventEnvelopeName, Variant{
		BaseType:      "EventData",
		WriteBaseData: writeEvent,
	})
	s.Register(contracts.TraceEnvelopeName, Variant{
		BaseType:      "MessageData",
		WriteBaseData: writeTrace,
	})
	s.Register(contracts.RequestEnvelopeName, Variant{
		BaseType:      "RequestData",
		WriteBaseData: writeRequest,
	})
	s.Register(contracts.DependencyEnvelopeName, Variant{
		BaseType:      "RemoteDependencyData",
		WriteBaseData: writeDependency,
	})
	s.Register(contracts.ExceptionEnvelopeName, Variant{
		BaseType:      "ExceptionData",
		WriteBaseData: writeException,
	})
	s.Register(contracts.PageViewEnvelopeName, Variant{
		BaseType:      "PageViewData",
		WriteBaseData: writePageView,
	})
	s.Register(contracts.AvailabilityEnvelopeName, Variant{
		BaseType:         "AvailabilityData",
		PropertiesInBase: true,
		WriteBaseData:    writeAvailability,
	})
	s.Register(contracts.MetricEnvelopeName, Variant{
		BaseType:         "MetricData",
		PropertiesInBase: true,
		WriteBaseData:    writeMetric,
	})
}

func writeEvent(enc *Encoder, item contracts.Telemetry) {
	t, ok := item.(*contracts.Event)
	if !ok {
		return
	}
	enc.StringField("name", contracts.TruncateString(t.Name, contracts.MaxNameLen))
}

func writeTrace(enc *Encoder, item contracts.Telemetry) {
	t, ok := item.(*contracts.Trace)
	if !ok {
		return
	}
	enc.StringField("message", contracts.TruncateString(t.Message, contracts.MaxMessageLen))
	if t.Severity != nil {
		enc.StringField("severityLevel", t.Severity.String())
	}
}

func writeRequest(enc *Encoder, item contracts.Telemetry) {
	t, ok := item.(*contracts.Request)
	if !ok {
		return
	}
	enc.StringField("id", t.ID)
	enc.DurationField("duration", t.Duration)
	enc.StringField("responseCode", t.ResponseCode)
	enc.BoolField("success", t.Success)
	enc.OptStringField("source", t.Source)
	enc.OptStringField("name", contracts.TruncateString(t.Name, contracts.MaxNameLen))
	enc.OptStringField("url", contracts.TruncateString(t.URL, contracts.MaxURLLen))
}

func writeDependency(enc *Encoder, item contracts.Telemetry) {
	t, ok := item.(*contracts.Dependency)
	if !ok {
		return
	}
	enc.StringField("name", contracts.TruncateString(t.Name, contracts.MaxNameLen))
	enc.OptStringField("id", t.ID)
	enc.OptStringField("resultCode", t.ResultCode)
	enc.DurationField("duration", t.Duration)
	enc.BoolField("success", t.Success)
	enc.OptStringField("data", t.Data)
	enc.OptStringField("target", t.Target)
	enc.OptStringField("type", t.Type)
}

func writeException(enc *Encoder, item contracts.Telemetry) {
	t, ok := item.(*contracts.Exception)
	if !ok {
		return
	}
	enc.Name("exceptions")
	enc.BeginArray()
	for _, d := range t.Details {
		enc.BeginObject()
		enc.IntField("id", d.ID)
		enc.IntField("outerId", d.OuterID)
		enc.StringField("typeName", d.TypeName)
		enc.StringField("message", contracts.TruncateString(d.Message, contracts.MaxExceptionMessageLen))
		enc.BoolField("hasFullStack", d.HasFullStack)
		if len(d.Stack) > 0 {
			enc.Name("parsedStack")
			enc.BeginArray()
			for _, f := range d.Stack {
				enc.BeginObject()
				enc.IntField("level", f.Level)
				enc.StringField("method", f.Method)
				enc.OptStringField("fileName", f.FileName)
				enc.IntField("line", f.Line)
				enc.EndObject()
			}
			enc.EndArray()
		}
		enc.EndObject()
	}
	enc.EndArray()
	if t.Severity != nil {
		enc.StringField("severityLevel", t.Severity.String())
	}
	enc.OptStringField("problemId", t.ProblemID)
}

func writePageView(enc *Encoder, item contracts.Telemetry) {
	t, ok := item.(*contracts.PageView)
	if !ok {
		return
	}
	enc.StringField("name", contracts.TruncateString(t.Name, contracts.MaxNameLen))
	enc.OptStringField("url", contracts.TruncateString(t.URL, contracts.MaxURLLen))
	if t.Duration > 0 {
		enc.DurationField("duration", t.Duration)
	}
}

func writeAvailability(enc *Encoder, item contracts.Telemetry) {
	t, ok := item.(*contracts.Availability)
	if !ok {
		return
	}
	enc.OptStringField("id", t.ID)
	enc.StringField("name", contracts.TruncateString(t.Name, contracts.MaxNameLen))
	enc.DurationField("duration", t.Duration)
	enc.BoolField("success", t.Success)
	enc.OptStringField("runLocation", t.RunLocation)
	enc.OptStringField("message", contracts.TruncateString(t.Message, contracts.MaxMessageLen))
}

func writeMetric(enc *Encoder, item contracts.Telemetry) {
	t, ok := item.(*contracts.Metric)
	if !ok {
		return
	}
	enc.Name("metrics")
	enc.BeginArray()
	enc.BeginObject()
	enc.StringField("name", contracts.TruncateString(t.Name, contracts.MaxNameLen))
	enc.StringField("kind", "Aggregation")
	enc.FloatField("value", t.Value)
	if t.Count != nil {
		enc.IntField("count", *t.Count)
	}
	enc.EndObject()
	enc.EndArray()
}
