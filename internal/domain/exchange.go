package domain

// ExchangeRecord is the audit trail of one relay invocation. It never carries
// message content.
type ExchangeRecord struct {
	PK            string
	SK            string
	ExchangeID    string
	CorrelationID string
	User          string
	HistoryTurns  int
	PromptChars   int
	ReplyChars    int
	LatencyMillis int64
	Outcome       string
	CreatedAt     string
	TTL           int64
}
