package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldRecordID   = "record_id"
	FieldPatient    = "patient"
	FieldExam       = "exam"
	FieldLocation   = "location"
	FieldCity       = "city"
	FieldTechnician = "technician"
	FieldRecords    = "records"
	FieldSnapshot   = "snapshot_key"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStore    = "store"
	ComponentSnapshot = "snapshot"
	ComponentReport   = "report"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpRemove   = "remove"
	OpAddExam  = "add_exam"
	OpLoad     = "load"
	OpPersist  = "persist"
	OpRender   = "render"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
