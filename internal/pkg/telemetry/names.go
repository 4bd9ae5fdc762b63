package telemetry

// Span names used for tracing.
const (
	SpanDatasetLoad   = "dataset.load"
	SpanDatasetFetch  = "dataset.fetch"
	SpanDatasetDecode = "dataset.decode"
	SpanRender        = "dashboard.render"
)

// InstrumentationName is the tracer name shared by all packages.
const InstrumentationName = "github.com/samirrijal/immoreims"
