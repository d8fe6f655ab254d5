package api_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/basislabs/basis-edge-go/api"
	"github.com/basislabs/basis-edge-go/gate"
	"github.com/basislabs/basis-edge-go/replay"
	"github.com/basislabs/basis-edge-go/types"
	"github.com/basislabs/basis-edge-go/witness"
)

const (
	testPrivateKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testTxID       = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	testRecipient  = "0x1111111111111111111111111111111111111111"
	testPayer      = "0x2222222222222222222222222222222222222222"
)

type stubVerifier struct {
	result types.VerifyResult
	err    error
}

func (v *stubVerifier) Verify(ctx context.Context, txID, recipient string) (types.VerifyResult, error) {
	return v.result, v.err
}

// newTimestampEndpoint assembles the full gated pipeline over an in-memory
// replay store and a stub verifier.
func newTimestampEndpoint(t *testing.T, verifier gate.Verifier) http.Handler {
	t.Helper()

	signer, err := witness.NewSigner(testPrivateKey, "basis-edge-test")
	if err != nil {
		t.Fatalf("failed to build signer: %v", err)
	}

	g := gate.New(replay.NewMemoryStore(), verifier, nil, zap.NewNop(), gate.Config{
		Recipient: testRecipient,
		Advert: types.PaymentContext{
			Chain:     "base",
			Network:   "mainnet",
			Currency:  "USDC",
			Amount:    "0.001",
			Recipient: testRecipient,
		},
	})

	endpoint := api.Endpoint(types.OperationTimestamping, api.TimestampHandler(), signer, "test-node")
	return g.Middleware(types.OperationTimestamping)(endpoint)
}

func postEvent(t *testing.T, handler http.Handler, txID, body string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, "/v1/timestamp", strings.NewReader(body))
	if txID != "" {
		request.Header.Set("X-Payment-Transaction", txID)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestEndpoint_MissingCredential(t *testing.T) {
	handler := newTimestampEndpoint(t, &stubVerifier{result: types.VerifyResult{IsValid: true, Payer: testPayer}})

	recorder := postEvent(t, handler, "", "event data")
	if recorder.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", recorder.Code)
	}

	var body types.RejectionBody
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal rejection body: %v", err)
	}

	if body.Error != types.RejectionPaymentRequired {
		t.Errorf("expected payment_required, got %s", body.Error)
	}
	if body.PaymentContext == nil {
		t.Fatal("expected payment context in 402 body")
	}
	if body.PaymentContext.Recipient != testRecipient {
		t.Errorf("expected recipient %s, got %s", testRecipient, body.PaymentContext.Recipient)
	}
	if body.PaymentContext.Currency != "USDC" {
		t.Errorf("expected currency USDC, got %s", body.PaymentContext.Currency)
	}
}

func TestEndpoint_VerificationFailure(t *testing.T) {
	handler := newTimestampEndpoint(t, &stubVerifier{result: types.VerifyResult{
		IsValid: false,
		Reason:  types.VerifyReasonNoQualifyingTransfer,
	}})

	recorder := postEvent(t, handler, testTxID, "event data")
	if recorder.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", recorder.Code)
	}

	var body types.RejectionBody
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal rejection body: %v", err)
	}
	if body.Error != types.RejectionVerificationFailed {
		t.Errorf("expected verification_failed, got %s", body.Error)
	}
}

func TestEndpoint_WitnessedTimestamp(t *testing.T) {
	handler := newTimestampEndpoint(t, &stubVerifier{result: types.VerifyResult{IsValid: true, Payer: testPayer}})

	recorder := postEvent(t, handler, testTxID, "event data")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response types.PacketResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal packet: %v", err)
	}

	packet := response.BasisPacket

	// Meta carries the request identity
	if packet.Meta.ID == "" {
		t.Error("expected a packet id")
	}
	if packet.Meta.Node != "test-node" {
		t.Errorf("expected node test-node, got %s", packet.Meta.Node)
	}
	if packet.Meta.Operation != types.OperationTimestamping {
		t.Errorf("expected operation timestamping, got %s", packet.Meta.Operation)
	}
	if packet.Meta.LatencyMS < 0 {
		t.Errorf("expected non-negative latency, got %d", packet.Meta.LatencyMS)
	}

	// Data carries the handler result fields
	eventHash, _ := packet.Data["event_hash"].(string)
	expectedHash := "0x" + hex.EncodeToString(crypto.Keccak256([]byte("event data")))
	if eventHash != expectedHash {
		t.Errorf("expected event hash %s, got %s", expectedHash, eventHash)
	}
	timestamp, _ := packet.Data["timestamp"].(string)
	nonce, _ := packet.Data["nonce"].(string)
	if timestamp == "" || nonce == "" {
		t.Error("expected timestamp and nonce in data")
	}

	// The proof is independently re-verifiable: the canonical payload
	// rebuilt from the data fields hashes to the certificate hash and the
	// signature recovers the signer address
	rendered := witness.Timestamping{
		EventHash: eventHash,
		Timestamp: timestamp,
		Nonce:     nonce,
	}.Render()

	hash := crypto.Keccak256([]byte(rendered))
	if packet.Proof.Hash != "0x"+hex.EncodeToString(hash) {
		t.Errorf("expected proof hash over the canonical payload, got %s", packet.Proof.Hash)
	}

	signature, err := hex.DecodeString(strings.TrimPrefix(packet.Proof.Signature, "0x"))
	if err != nil {
		t.Fatalf("failed to decode signature: %v", err)
	}
	pubkey, err := crypto.SigToPub(hash, signature)
	if err != nil {
		t.Fatalf("failed to recover public key: %v", err)
	}
	if crypto.PubkeyToAddress(*pubkey).Hex() != packet.Proof.Signer {
		t.Errorf("recovered signer %s does not match certificate signer %s",
			crypto.PubkeyToAddress(*pubkey).Hex(), packet.Proof.Signer)
	}
	if packet.Proof.Method != witness.SigningMethod {
		t.Errorf("expected method %s, got %s", witness.SigningMethod, packet.Proof.Method)
	}
}

func TestEndpoint_ReplayIsRejected(t *testing.T) {
	handler := newTimestampEndpoint(t, &stubVerifier{result: types.VerifyResult{IsValid: true, Payer: testPayer}})

	// A well-formed, unused, properly-paid identifier passes exactly once
	first := postEvent(t, handler, testTxID, "event data")
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	// The same identifier immediately afterward is rejected
	second := postEvent(t, handler, testTxID, "event data")
	if second.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 on replay, got %d", second.Code)
	}

	var body types.RejectionBody
	if err := json.Unmarshal(second.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal rejection body: %v", err)
	}
	if body.Error != types.RejectionReplayDetected {
		t.Errorf("expected replay_detected, got %s", body.Error)
	}
}

func TestEndpoint_EmptyEventData(t *testing.T) {
	handler := newTimestampEndpoint(t, &stubVerifier{result: types.VerifyResult{IsValid: true, Payer: testPayer}})

	recorder := postEvent(t, handler, testTxID, "")
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty event data, got %d", recorder.Code)
	}
}

func TestHealth(t *testing.T) {
	recorder := httptest.NewRecorder()
	api.Health(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "ok") {
		t.Errorf("expected ok body, got %s", recorder.Body.String())
	}
}
