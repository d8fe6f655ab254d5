package types

import "context"

// VerifyResult is the result of verifying a payment transaction on chain.
type VerifyResult struct {
	IsValid bool         `json:"isValid"`
	Payer   string       `json:"payer,omitempty"`
	Reason  VerifyReason `json:"reason,omitempty"`
}

// Authorization is the verified payment identity attached to a request.
type Authorization struct {
	Payer string `json:"payer"`
	TxID  string `json:"tx_id"`
}

// WitnessCertificate is the signed proof attached to every witnessed result.
type WitnessCertificate struct {
	WitnessID string `json:"witness_id"`
	Timestamp string `json:"timestamp"`
	Method    string `json:"method"`
	Signer    string `json:"signer"`
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}

// PaymentContext is the payment advert included in every 402 rejection body.
type PaymentContext struct {
	Chain     string `json:"chain"`
	Network   string `json:"network"`
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
}

// RejectionBody is the JSON body returned for a rejected gated request.
// PaymentContext is present on 402 rejections only.
type RejectionBody struct {
	Error          RejectionKind   `json:"error"`
	Message        string          `json:"message"`
	PaymentContext *PaymentContext `json:"payment_context,omitempty"`
}

// PacketMeta is the request metadata of a basis packet.
type PacketMeta struct {
	ID        string    `json:"id"`
	LatencyMS int64     `json:"latency_ms"`
	Node      string    `json:"node"`
	Operation Operation `json:"operation"`
}

// BasisPacket is the witnessed result packet.
type BasisPacket struct {
	Meta  PacketMeta         `json:"meta"`
	Data  map[string]any     `json:"data"`
	Proof WitnessCertificate `json:"proof"`
}

// PacketResponse is the outward-facing response envelope.
type PacketResponse struct {
	BasisPacket BasisPacket `json:"basis_packet"`
}

// authorizationKey is the context key for the request authorization.
type authorizationKey struct{}

// WithAuthorization attaches the verified payment identity to the context.
func WithAuthorization(ctx context.Context, a Authorization) context.Context {
	return context.WithValue(ctx, authorizationKey{}, a)
}

// AuthorizationFromContext returns the verified payment identity, if any.
func AuthorizationFromContext(ctx context.Context) (Authorization, bool) {
	a, ok := ctx.Value(authorizationKey{}).(Authorization)
	return a, ok
}
