package domain

// Outcome labels for processed deliveries
const (
	ResultStored    = "stored"
	ResultDuplicate = "duplicate"
	ResultMalformed = "malformed"
	ResultRequeued  = "requeued"
	ResultFailed    = "failed"
)
