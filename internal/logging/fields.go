package logging

// Common structured log field keys to keep logs searchable/consistent.
const (
	FieldService     = "service"
	FieldVersion     = "version"
	FieldProvider    = "provider"
	FieldUpstream    = "upstream"
	FieldCity        = "city"
	FieldTemperature = "temperature"
	FieldDescription = "description"
	FieldRequestID   = "request_id"
	FieldProbeID     = "probe_id"
	FieldStatusCode  = "status_code"
	FieldDurationMS  = "duration_ms"
)
