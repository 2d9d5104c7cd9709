package serialization

import (
	"strings"

	"github.com/meterbridge/telemetry-go/pkg/contracts"
)

// Context tag keys carrying the distributed operation on the envelope.
const (
	tagOperationID       = "ai.operation.id"
	tagOperationName     = "ai.operation.name"
	tagOperationParentID = "ai.operation.parentId"
)

// Variant describes how one record kind maps onto the wire envelope. The
// envelope layout is not uniform: some kinds carry their properties inside
// baseData, the rest carry them at the envelope root. That inconsistency is
// part of the wire protocol and is reproduced here per variant.
type Variant struct {
	// BaseType is the value of data.baseType.
	BaseType string
	// PropertiesInBase places the record's properties inside baseData
	// instead of at the envelope root.
	PropertiesInBase bool
	// WriteBaseData emits the variant's fields into the already-open
	// baseData object. It must not open or close the object itself.
	WriteBaseData func(enc *Encoder, item contracts.Telemetry)
}

// Serializer converts telemetry records into wire envelopes. Writers are
// registered per envelope name; records with no registered writer serialize
// to zero bytes rather than erroring, so unknown kinds flow through the
// pipeline silently.
type Serializer struct {
	variants map[string]Variant
}

// NewSerializer returns a serializer with all built-in record kinds
// registered.
func NewSerializer() *Serializer {
	s := &Serializer{variants: make(map[string]Variant, 8)}
	registerBuiltin(s)
	return s
}

// Register adds or replaces the writer for an envelope name.
func (s *Serializer) Register(envelopeName string, v Variant) {
	s.variants[envelopeName] = v
}

// Serialize renders one record as its wire envelope. extraTags are merged
// over the record's own tags. The result is nil for nil records and for
// kinds with no registered writer.
func (s *Serializer) Serialize(instrumentationKey string, item contracts.Telemetry, extraTags map[string]string) []byte {
	enc := NewEncoder()
	s.SerializeTo(enc, instrumentationKey, item, extraTags)
	return enc.Bytes()
}

// SerializeTo appends one record's wire envelope to enc. Unknown kinds
// append nothing.
func (s *Serializer) SerializeTo(enc *Encoder, instrumentationKey string, item contracts.Telemetry, extraTags map[string]string) {
	if item == nil {
		return
	}
	variant, ok := s.variants[item.EnvelopeName()]
	if !ok {
		return
	}

	props := contracts.SanitizeProperties(item.TelemetryProperties())
	tags := envelopeTags(item, extraTags)

	enc.BeginObject()

	enc.Name("data")
	enc.BeginObject()
	enc.Name("baseData")
	enc.BeginObject()
	enc.IntField("ver", 2)
	variant.WriteBaseData(enc, item)
	if variant.PropertiesInBase && props != nil {
		enc.StringMapField("properties", props)
	}
	enc.EndObject()
	enc.StringField("baseType", variant.BaseType)
	enc.EndObject()

	enc.StringField("iKey", contracts.TruncateString(instrumentationKey, contracts.MaxInstrumentKeyLen))
	enc.StringField("name", item.EnvelopeName())
	if !variant.PropertiesInBase && props != nil {
		enc.StringMapField("properties", props)
	}
	if tags != nil {
		enc.StringMapField("tags", tags)
	}
	enc.TimeField("time", item.TelemetryTime())

	enc.EndObject()
}

// envelopeTags folds the record's operation, its own tags, and the caller's
// extra tags into one map. Empty and all-whitespace entries are dropped;
// nil means the envelope carries no tags member at all.
func envelopeTags(item contracts.Telemetry, extraTags map[string]string) map[string]string {
	op := item.TelemetryOperation()
	size := len(item.TelemetryTags()) + len(extraTags) + 3
	tags := make(map[string]string, size)

	for k, v := range item.TelemetryTags() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		tags[k] = v
	}
	for k, v := range extraTags {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		tags[k] = v
	}
	if op.ID != "" {
		tags[tagOperationID] = op.ID
	}
	if op.Name != "" {
		tags[tagOperationName] = op.Name
	}
	if op.ParentID != "" {
		tags[tagOperationParentID] = op.ParentID
	}

	if len(tags) == 0 {
		return nil
	}
	return tags
}
