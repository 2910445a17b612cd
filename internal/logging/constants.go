package logging

// Standardized field names for structured logging.
// Every component logs with these keys so a single report or upload can be
// traced across submission, import and reconciliation log lines.
const (
	FieldComponent = "component"
	FieldReportID  = "report_id"
	FieldAgent     = "agent_email"
	FieldOffice    = "office"
	FieldDate      = "report_date"
	FieldReceipt   = "receipt"
	FieldCSRName   = "csr_name"
	FieldBatchID   = "batch_id"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldCount     = "count"
	FieldScore     = "score"
	FieldInputFile = "input_file"
)
