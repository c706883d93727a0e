package ledger

// OperationResult reports the outcome of a ledger mutation.
type OperationResult struct {
	TransactionID uint `json:"transaction_id"`
	NewBalance    int  `json:"new_balance"`
}

// MetricsCollector receives the ledger's operational signals: every
// finalized transaction and every rejected operation with its error
// code.
type MetricsCollector interface {
	RecordTransaction(txType string, amount int)
	RecordError(operation, errType string)
}
