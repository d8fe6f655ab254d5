package gate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/basislabs/basis-edge-go/audit"
	"github.com/basislabs/basis-edge-go/telemetry"
	"github.com/basislabs/basis-edge-go/types"
	"github.com/basislabs/basis-edge-go/utils"
)

// Middleware gates an operation's handler behind payment authorization.
// Rejections are rendered as JSON; on success the verified payer identity
// is attached to the request context and the decision is recorded
// fire-and-forget.
func (g *Gate) Middleware(op types.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			// Authorize the request from the payment credential header
			authorization, err := g.Authorize(r.Context(), r.Header.Get(g.config.Header))
			if err != nil {
				g.reject(w, r, op, err)
				return
			}

			// Attach the verified payer identity for downstream use
			ctx := types.WithAuthorization(r.Context(), authorization)

			// Record the decision without blocking the response
			go g.record(audit.Entry{
				TxID:      authorization.TxID,
				Payer:     authorization.Payer,
				Operation: op,
				Decision:  "authorized",
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// reject renders a gate rejection. 402 rejections carry the payment advert
// so the caller knows how to pay; internal errors carry a sanitized message
// only.
func (g *Gate) reject(w http.ResponseWriter, r *http.Request, op types.Operation, err error) {

	// Default to an internal error shape
	status := http.StatusInternalServerError
	kind := types.RejectionInternalError
	message := "internal error"

	// Extract the status and kind when the error carries them
	var se utils.StatusError
	if errors.As(err, &se) {
		status = se.Status()
		kind = se.Kind()
		message = se.Error()
	}

	telemetry.GateRejectionsTotal.WithLabelValues(string(kind)).Inc()

	// Build the rejection body; only 402s advertise the payment context
	body := types.RejectionBody{
		Error:   kind,
		Message: message,
	}
	if status == http.StatusPaymentRequired {
		advert := g.config.Advert
		body.PaymentContext = &advert
	}

	// Record the rejection without blocking the response. Malformed
	// credentials carry no usable transaction identifier and are skipped.
	if kind != types.RejectionPaymentRequired {
		go g.record(audit.Entry{
			TxID:      canonicalTxID(r.Header.Get(g.config.Header)),
			Operation: op,
			Decision:  "rejected",
			Reason:    string(kind),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Warn("Failed to write rejection body", zap.Error(err))
	}
}

// record writes an audit entry with a detached context so it outlives the
// request. Failures are swallowed by the recorder.
func (g *Gate) record(e audit.Entry) {
	g.recorder.Record(context.Background(), e)
}

func canonicalTxID(credential string) string {
	if !credentialPattern.MatchString(credential) {
		return ""
	}
	return strings.ToLower(credential)
}
