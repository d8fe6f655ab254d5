package types

// RejectionKind is the rejection kind enum for the payment gate.
type RejectionKind string

const (
	RejectionPaymentRequired    RejectionKind = "payment_required"
	RejectionReplayDetected     RejectionKind = "replay_detected"
	RejectionVerificationFailed RejectionKind = "verification_failed"
	RejectionConfigurationError RejectionKind = "configuration_error"
	RejectionInternalError      RejectionKind = "internal_error"
)

// VerifyReason is the diagnostic reason enum for chain verification failures.
type VerifyReason string

const (
	VerifyReasonPlaceholderTransaction VerifyReason = "placeholder_transaction_id"
	VerifyReasonReceiptNotFound        VerifyReason = "receipt_not_found"
	VerifyReasonNetworkError           VerifyReason = "network_error"
	VerifyReasonTransactionFailed      VerifyReason = "transaction_failed_or_pending"
	VerifyReasonNoLogs                 VerifyReason = "no_logs"
	VerifyReasonNoQualifyingTransfer   VerifyReason = "no_qualifying_transfer"
)

// Operation is the witnessed operation kind enum.
type Operation string

const (
	OperationContentWitness Operation = "content_witness"
	OperationClassification Operation = "classification"
	OperationCacheWrite     Operation = "cache_write"
	OperationCacheRead      Operation = "cache_read"
	OperationCalculation    Operation = "calculation"
	OperationTimestamping   Operation = "timestamping"
	OperationBadgeIssuance  Operation = "badge_issuance"
	OperationRiskAssessment Operation = "risk_assessment"
)
