package contracts

import "time"

// Envelope names routed on by the ingestion service. The serializer keeps a
// writer registered per name; a record whose EnvelopeName is not registered
// serializes to nothing.
const (
	AvailabilityEnvelopeName = "Microsoft.ApplicationInsights.Availability"
	DependencyEnvelopeName   = "Microsoft.ApplicationInsights.RemoteDependency"
	EventEnvelopeName        = "Microsoft.ApplicationInsights.Event"
	ExceptionEnvelopeName    = "Microsoft.ApplicationInsights.Exception"
	MetricEnvelopeName       = "Microsoft.ApplicationInsights.Metric"
	PageViewEnvelopeName     = "Microsoft.ApplicationInsights.PageView"
	RequestEnvelopeName      = "Microsoft.ApplicationInsights.Request"
	TraceEnvelopeName        = "Microsoft.ApplicationInsights.Message"
)

// SeverityLevel grades trace and exception telemetry. It is stored
// numerically and rendered on the wire as its symbolic name.
type SeverityLevel int

const (
	Verbose SeverityLevel = iota
	Information
	Warning
	Error
	Critical
)

// String returns the symbolic name used on the wire.
func (s SeverityLevel) String() string {
	switch s {
	case Verbose:
		return "Verbose"
	case Information:
		return "Information"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Critical:
		return "Critical"
	default:
		return "Verbose"
	}
}

// Severity is a convenience for populating the optional severity field on
// trace and exception records.
func Severity(s SeverityLevel) *SeverityLevel {
	return &s
}

// Telemetry is the contract every record variant satisfies. The buffer and
// client only ever see this interface; variant payloads are consumed by the
// serializer through its per-variant writer registry.
type Telemetry interface {
	// TelemetryTime is the UTC wall-clock instant the record describes.
	TelemetryTime() time.Time
	// TelemetryProperties are the caller-supplied string properties.
	TelemetryProperties() map[string]string
	// TelemetryTags are extra context tags attached to the envelope.
	TelemetryTags() map[string]string
	// TelemetryOperation is the distributed operation active at creation.
	TelemetryOperation() Operation
	// EnvelopeName keys the serializer's writer registry.
	EnvelopeName() string
}

// Common carries the fields shared by every record variant. Variants embed
// it by value; once a record is handed to the buffer it must not be mutated.
type Common struct {
	Timestamp  time.Time
	Properties map[string]string
	Tags       map[string]string
	Operation  Operation
}

func (c *Common) TelemetryTime() time.Time               { return c.Timestamp }
func (c *Common) TelemetryProperties() map[string]string { return c.Properties }
func (c *Common) TelemetryTags() map[string]string       { return c.Tags }
func (c *Common) TelemetryOperation() Operation          { return c.Operation }

// Event is a named discrete occurrence.
type Event struct {
	Common
	Name string
}

func (*Event) EnvelopeName() string { return EventEnvelopeName }

// Trace is a free-form log message with optional severity.
type Trace struct {
	Common
	Message  string
	Severity *SeverityLevel
}

func (*Trace) EnvelopeName() string { return TraceEnvelopeName }

// Request describes handling one inbound request.
type Request struct {
	Common
	ID           string
	Name         string
	Duration     time.Duration
	ResponseCode string
	Success      bool
	Source       string
	URL          string
}

func (*Request) EnvelopeName() string { return RequestEnvelopeName }

// Dependency describes one outbound call to another component.
type Dependency struct {
	Common
	Name       string
	ID         string
	ResultCode string
	Duration   time.Duration
	Success    bool
	Data       string
	Target     string
	Type       string
}

func (*Dependency) EnvelopeName() string { return DependencyEnvelopeName }

// Availability is the result of one availability (web test) probe.
type Availability struct {
	Common
	ID          string
	Name        string
	Duration    time.Duration
	Success     bool
	RunLocation string
	Message     string
}

func (*Availability) EnvelopeName() string { return AvailabilityEnvelopeName }

// Metric is a single pre-aggregated measurement.
type Metric struct {
	Common
	Name  string
	Value float64
	// Count is the number of samples aggregated into Value; omitted when nil.
	Count *int
}

func (*Metric) EnvelopeName() string { return MetricEnvelopeName }

// PageView records one page (or screen) being shown.
type PageView struct {
	Common
	Name     string
	URL      string
	Duration time.Duration
}

func (*PageView) EnvelopeName() string { return PageViewEnvelopeName }

// Exception is a linearized error chain snapshot. Build Details with
// NewExceptionDetails rather than by hand so the id/outer-id links and the
// depth bounds hold.
type Exception struct {
	Common
	Details   []ExceptionDetails
	Severity  *SeverityLevel
	ProblemID string
}

func (*Exception) EnvelopeName() string { return ExceptionEnvelopeName }
