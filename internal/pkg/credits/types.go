package credits

import "time"

// Award is a verified checkout session ready to be credited.
type Award struct {
	EventID     string
	SubjectID   string
	Credits     int64
	ProcessedAt time.Time
}

// VerifyResult describes the outcome of a successful verification.
type VerifyResult struct {
	AlreadyProcessed bool
	CreditsAwarded   int64
	Balance          int64
}
