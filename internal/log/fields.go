package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUID         = "uid"
	FieldMonth       = "month"
	FieldEntryID     = "entry_id"
	FieldEntryLabel  = "entry_label"
	FieldAmountCents = "amount_cents"
	FieldEMIGroup    = "emi_group"
	FieldProduct     = "product"
	FieldRisk        = "risk"
	FieldSuggestion  = "suggestion_id"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentEMI      = "emi"
	ComponentAdvice   = "advice"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentCache    = "cache"
	ComponentIdentity = "identity"
	ComponentExport   = "export"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpExpand   = "expand"
	OpEvaluate = "evaluate"
	OpRefine   = "refine"
	OpExportOp = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
