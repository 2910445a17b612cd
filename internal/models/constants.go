package models

// Policy types counted as new business or rewrite.
const (
	TypeNew     = "NEW"
	TypeRewrite = "RWR"
)

// Payment method markers, matched as substrings of the Method column.
const (
	MethodCash       = "Cash"
	MethodCreditCard = "Credit Card"
	MethodWire       = "Wire"
)

// Edit log actions
const (
	ActionCreated         = "created"
	ActionUpdated         = "updated"
	ActionVerified        = "verified"
	ActionReceiptAttached = "receipt_attached"
)

// Match methods reported by the reconciler
const (
	MatchMapping   = "mapping"
	MatchDirectory = "directory"
	MatchFuzzy     = "fuzzy"
	MatchNone      = "none"
)

// RegionUnassigned collects offices absent from the region map.
const RegionUnassigned = "Unassigned"

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
)
