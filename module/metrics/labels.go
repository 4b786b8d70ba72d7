package metrics

const (
	LabelResource = "resource"
	LabelKind     = "kind"
	LabelService  = "service"
	LabelStatus   = "status"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

const (
	ResourceTransaction = "transaction"
	ResourceReceipt     = "receipt"
	ResourceHeader      = "header"
	ResourceBlock       = "block"
	ResourceProof       = "proof"
)
