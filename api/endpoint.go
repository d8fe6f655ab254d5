package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/basislabs/basis-edge-go/telemetry"
	"github.com/basislabs/basis-edge-go/types"
	"github.com/basislabs/basis-edge-go/utils"
	"github.com/basislabs/basis-edge-go/witness"
)

// ActionHandler performs one operation's action. It returns the canonical
// signing payload for the result and the data fields for the response
// envelope. This is the contract every action endpoint presents to the
// witnessing pipeline.
type ActionHandler interface {
	Handle(r *http.Request) (witness.Payload, map[string]any, error)
}

// ActionHandlerFunc adapts a function to the ActionHandler interface.
type ActionHandlerFunc func(r *http.Request) (witness.Payload, map[string]any, error)

// Handle calls the wrapped function.
func (f ActionHandlerFunc) Handle(r *http.Request) (witness.Payload, map[string]any, error) {
	return f(r)
}

// Endpoint builds the witnessed endpoint for one operation: run the action
// handler, sign its result and assemble the basis packet. Payment
// authorization is the gate middleware's job and is assumed to have run.
func Endpoint(op types.Operation, handler ActionHandler, signer *witness.Signer, node string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()

		// Run the action handler
		payload, data, err := handler.Handle(r)
		if err != nil {
			status := http.StatusInternalServerError
			message := "internal error"

			// Surface handler errors that carry a status
			var se utils.StatusError
			if errors.As(err, &se) {
				status = se.Status()
				message = err.Error()
			}

			telemetry.RequestsTotal.WithLabelValues(string(op), strconv.Itoa(status)).Inc()
			http.Error(w, message, status)
			return
		}

		// Sign the canonical payload into a witness certificate
		certificate, err := signer.Sign(payload)
		if err != nil {
			telemetry.RequestsTotal.WithLabelValues(string(op), strconv.Itoa(http.StatusInternalServerError)).Inc()
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// Assemble the response envelope
		response := types.PacketResponse{
			BasisPacket: types.BasisPacket{
				Meta: types.PacketMeta{
					ID:        uuid.NewString(),
					LatencyMS: time.Since(start).Milliseconds(),
					Node:      node,
					Operation: op,
				},
				Data:  data,
				Proof: certificate,
			},
		}

		// Marshal the response to JSON bytes
		responseBytes, err := json.Marshal(response)
		if err != nil {
			telemetry.RequestsTotal.WithLabelValues(string(op), strconv.Itoa(http.StatusInternalServerError)).Inc()
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		telemetry.RequestsTotal.WithLabelValues(string(op), strconv.Itoa(http.StatusOK)).Inc()

		// Set the content type and write the packet
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(responseBytes)
	}
}
