// Package serialization converts telemetry records into the wire JSON
// envelope. The encoder is a single-pass streaming writer: fields are
// emitted in order as they are supplied, with no intermediate object graph.
package serialization

import (
	"bytes"
	"math"
	"sort"
	"strconv"
	"time"
)

const hexDigits = "0123456789abcdef"

// Encoder is a streaming JSON writer. Values are appended directly to the
// underlying buffer; the only state kept is whether the current container
// already holds a member (for comma placement).
type Encoder struct {
	buf       bytes.Buffer
	comma     []bool
	afterName bool
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{comma: make([]bool, 0, 8)}
}

// Bytes returns the encoded document so far.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return e.buf.Len() }

// Reset discards all written output.
func (e *Encoder) Reset() {
	e.buf.Reset()
	e.comma = e.comma[:0]
	e.afterName = false
}

func (e *Encoder) push() { e.comma = append(e.comma, false) }

func (e *Encoder) pop() {
	if n := len(e.comma); n > 0 {
		e.comma = e.comma[:n-1]
	}
}

func (e *Encoder) member() {
	if e.afterName {
		// Value completing a "key": pair; the separator was written with
		// the key.
		e.afterName = false
		return
	}
	if n := len(e.comma); n > 0 {
		if e.comma[n-1] {
			e.buf.WriteByte(',')
		}
		e.comma[n-1] = true
	}
}

// BeginObject opens a JSON object value.
func (e *Encoder) BeginObject() {
	e.member()
	e.buf.WriteByte('{')
	e.push()
}

// EndObject closes the innermost object.
func (e *Encoder) EndObject() {
	e.buf.WriteByte('}')
	e.pop()
}

// BeginArray opens a JSON array value.
func (e *Encoder) BeginArray() {
	e.member()
	e.buf.WriteByte('[')
	e.push()
}

// EndArray closes the innermost array.
func (e *Encoder) EndArray() {
	e.buf.WriteByte(']')
	e.pop()
}

// Name writes a member key; the next write supplies its value.
func (e *Encoder) Name(key string) {
	e.member()
	e.writeString(key)
	e.buf.WriteByte(':')
	e.afterName = true
}

func (e *Encoder) value(f func()) {
	e.member()
	f()
}

// String writes a string value.
func (e *Encoder) String(v string) { e.value(func() { e.writeString(v) }) }

// Bool writes a boolean value.
func (e *Encoder) Bool(v bool) {
	e.value(func() {
		if v {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	})
}

// Int writes an integer value.
func (e *Encoder) Int(v int) {
	e.value(func() { e.buf.WriteString(strconv.Itoa(v)) })
}

// Float writes a floating-point value. NaN and infinities are not
// representable in JSON and are written as 0.
func (e *Encoder) Float(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	e.value(func() {
		e.buf.Write(strconv.AppendFloat(nil, v, 'g', -1, 64))
	})
}

// StringField writes key and a string value.
func (e *Encoder) StringField(key, v string) {
	e.Name(key)
	e.String(v)
}

// OptStringField writes key/value only when v is non-empty.
func (e *Encoder) OptStringField(key, v string) {
	if v != "" {
		e.StringField(key, v)
	}
}

// BoolField writes key and a boolean value.
func (e *Encoder) BoolField(key string, v bool) {
	e.Name(key)
	e.Bool(v)
}

// IntField writes key and an integer value.
func (e *Encoder) IntField(key string, v int) {
	e.Name(key)
	e.Int(v)
}

// FloatField writes key and a floating-point value.
func (e *Encoder) FloatField(key string, v float64) {
	e.Name(key)
	e.Float(v)
}

// DurationField writes key and a duration in the ingestion service's
// d.hh:mm:ss.fffffff form.
func (e *Encoder) DurationField(key string, d time.Duration) {
	e.Name(key)
	e.String(FormatDuration(d))
}

// TimeField writes key and a UTC timestamp in ISO-8601 with a trailing Z.
func (e *Encoder) TimeField(key string, t time.Time) {
	e.Name(key)
	e.String(FormatTime(t))
}

// StringMapField writes key and an object holding m with keys in sorted
// order, so output is deterministic.
func (e *Encoder) StringMapField(key string, m map[string]string) {
	e.Name(key)
	e.BeginObject()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.StringField(k, m[k])
	}
	e.EndObject()
}

// writeString emits a quoted, escaped JSON string.
func (e *Encoder) writeString(s string) {
	e.buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			e.buf.WriteString(`\"`)
		case c == '\\':
			e.buf.WriteString(`\\`)
		case c == '\n':
			e.buf.WriteString(`\n`)
		case c == '\r':
			e.buf.WriteString(`\r`)
		case c == '\t':
			e.buf.WriteString(`\t`)
		case c < 0x20:
			e.buf.WriteString(`\u00`)
			e.buf.WriteByte(hexDigits[c>>4])
			e.buf.WriteByte(hexDigits[c&0xf])
		default:
			// Valid UTF-8 passes through byte by byte.
			e.buf.WriteByte(c)
		}
	}
	e.buf.WriteByte('"')
}

// FormatTime renders t as UTC ISO-8601 with seven fractional digits and a
// trailing Z, the form the ingestion service documents.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.0000000Z")
}

// FormatDuration renders d as d.hh:mm:ss.fffffff. Negative durations clamp
// to zero; the wire format has no sign.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ticks := d.Nanoseconds() / 100
	fraction := ticks % 10_000_000
	seconds := ticks / 10_000_000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	var b [32]byte
	out := strconv.AppendInt(b[:0], days, 10)
	out = append(out, '.')
	out = pad2(out, hours%24)
	out = append(out, ':')
	out = pad2(out, minutes%60)
	out = append(out, ':')
	out = pad2(out, seconds%60)
	out = append(out, '.')
	out = pad7(out, fraction)
	return string(out)
}

func pad2(b []byte, v int64) []byte {
	if v < 10 {
		b = append(b, '0')
	}
	return strconv.AppendInt(b, v, 10)
}

func pad7(b []byte, v int64) []byte {
	for scale := int64(1_000_000); scale > 0 && v < scale; scale /= 10 {
		b = append(b, '0')
	}
	if v > 0 {
		b = strconv.AppendInt(b, v, 10)
	}
	return b
}
