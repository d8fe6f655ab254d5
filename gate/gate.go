package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/basislabs/basis-edge-go/audit"
	"github.com/basislabs/basis-edge-go/chain"
	"github.com/basislabs/basis-edge-go/replay"
	"github.com/basislabs/basis-edge-go/types"
	"github.com/basislabs/basis-edge-go/utils"
)

// Default lock expirations. The short pending window bounds the damage of a
// crash between lock acquisition and resolution; the long used window is
// the anti-replay guarantee.
const (
	DefaultPendingTTL = 5 * time.Minute
	DefaultUsedTTL    = 24 * time.Hour
)

// DefaultHeader is the request header carrying the payment credential.
const DefaultHeader = "X-Payment-Transaction"

// credentialPattern is the exact lexical shape of a payment credential.
var credentialPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Verifier decides whether a transaction identifier pays the recipient.
type Verifier interface {
	Verify(ctx context.Context, txID, recipient string) (types.VerifyResult, error)
}

// ChainVerifier adapts chain.VerifyPayment to the Verifier interface.
type ChainVerifier struct {
	Config chain.VerifierConfig
}

// Verify verifies the payment on the configured ledger.
func (v ChainVerifier) Verify(ctx context.Context, txID, recipient string) (types.VerifyResult, error) {
	return chain.VerifyPayment(ctx, v.Config, txID, recipient)
}

// Config is the configuration for the payment gate.
type Config struct {
	Recipient  string
	Header     string
	PendingTTL time.Duration
	UsedTTL    time.Duration
	// Advert is included in every 402 rejection body so callers know how
	// to pay.
	Advert types.PaymentContext
}

// Gate authorizes gated requests against an on-chain payment and prevents
// the same transaction identifier from being spent twice. It owns the
// replay lock lifecycle exclusively.
type Gate struct {
	store    replay.Store
	verifier Verifier
	recorder *audit.Recorder
	logger   *zap.Logger
	config   Config
}

// New creates a new payment gate. The recorder may be nil.
func New(store replay.Store, verifier Verifier, recorder *audit.Recorder, logger *zap.Logger, config Config) *Gate {
	if config.Header == "" {
		config.Header = DefaultHeader
	}
	if config.PendingTTL <= 0 {
		config.PendingTTL = DefaultPendingTTL
	}
	if config.UsedTTL <= 0 {
		config.UsedTTL = DefaultUsedTTL
	}
	return &Gate{
		store:    store,
		verifier: verifier,
		recorder: recorder,
		logger:   logger,
		config:   config,
	}
}

// Authorize checks the payment credential, acquires the replay lock,
// verifies the payment on chain and resolves the lock. All rejection
// messages are sanitized; internal details are logged, never echoed.
func (g *Gate) Authorize(ctx context.Context, credential string) (types.Authorization, error) {

	// Verify the credential has the exact required shape before touching
	// the store or the verifier
	if !credentialPattern.MatchString(credential) {
		return types.Authorization{}, utils.NewStatusError(
			errors.New("payment transaction header is missing or malformed"),
			http.StatusPaymentRequired,
			types.RejectionPaymentRequired,
		)
	}

	// Normalize the transaction identifier so hex casing never splits a
	// payment into two lock records
	txID := strings.ToLower(credential)

	// Acquire the replay lock atomically: the write succeeds only if no
	// record exists for this identifier
	acquired, err := g.store.PutIfAbsent(ctx, txID, replay.ValuePending, g.config.PendingTTL)
	if err != nil {
		// A store failure must never bypass payment verification
		g.logger.Error("Replay store unavailable during lock acquisition",
			zap.String("tx_id", txID),
			zap.Error(err))
		return types.Authorization{}, utils.NewStatusError(
			errors.New("payment verification is temporarily unavailable"),
			http.StatusInternalServerError,
			types.RejectionInternalError,
		)
	}

	// Reject if a record already exists; pending and used are deliberately
	// indistinguishable to the caller
	if !acquired {
		return types.Authorization{}, utils.NewStatusError(
			errors.New("payment transaction has already been submitted"),
			http.StatusPaymentRequired,
			types.RejectionReplayDetected,
		)
	}

	// Verify the payment on chain
	result, err := g.verifier.Verify(ctx, txID, g.config.Recipient)
	if err != nil {
		g.logger.Error("Chain verifier error",
			zap.String("tx_id", txID),
			zap.Error(err))
		g.releaseLock(ctx, txID)
		return types.Authorization{}, utils.NewStatusError(
			errors.New("payment verification is temporarily unavailable"),
			http.StatusInternalServerError,
			types.RejectionInternalError,
		)
	}

	// Release the lock and reject on verification failure so the payer
	// can retry with a corrected transaction
	if !result.IsValid {
		g.releaseLock(ctx, txID)
		return types.Authorization{}, utils.NewStatusError(
			fmt.Errorf("payment verification failed: %s", result.Reason),
			http.StatusPaymentRequired,
			types.RejectionVerificationFailed,
		)
	}

	// Mark the transaction as used. If this write fails the request must
	// still fail: a spent payment that could be reused is worse than a
	// rejected legitimate payment.
	if err := g.store.Put(ctx, txID, replay.ValueUsed, g.config.UsedTTL); err != nil {
		g.logger.Error("Failed to mark verified transaction as used, rejecting",
			zap.String("tx_id", txID),
			zap.String("payer", result.Payer),
			zap.Error(err))
		return types.Authorization{}, utils.NewStatusError(
			errors.New("payment verification is temporarily unavailable"),
			http.StatusInternalServerError,
			types.RejectionInternalError,
		)
	}

	return types.Authorization{Payer: result.Payer, TxID: txID}, nil
}

// releaseLock deletes the pending record. Best effort: the record expires
// on its own, so a failed delete is logged and swallowed.
func (g *Gate) releaseLock(ctx context.Context, txID string) {
	if err := g.store.Delete(ctx, txID); err != nil {
		g.logger.Warn("Failed to release pending replay lock",
			zap.String("tx_id", txID),
			zap.Error(err))
	}
}
