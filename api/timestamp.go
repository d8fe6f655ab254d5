package api

import (
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"github.com/basislabs/basis-edge-go/types"
	"github.com/basislabs/basis-edge-go/utils"
	"github.com/basislabs/basis-edge-go/witness"
)

// maxEventSize bounds the body accepted for timestamping.
const maxEventSize = 1 << 20

// TimestampHandler hashes the posted event data and binds it to the
// current time with a fresh nonce.
func TimestampHandler() ActionHandler {
	return ActionHandlerFunc(func(r *http.Request) (witness.Payload, map[string]any, error) {

		// Read the event data
		body, err := io.ReadAll(io.LimitReader(r.Body, maxEventSize))
		if err != nil {
			return nil, nil, utils.NewStatusError(
				errors.New("failed to read event data"),
				http.StatusBadRequest,
				types.RejectionInternalError,
			)
		}
		if len(body) == 0 {
			return nil, nil, utils.NewStatusError(
				errors.New("event data is required"),
				http.StatusBadRequest,
				types.RejectionInternalError,
			)
		}

		// Hash the event data
		eventHash := "0x" + hex.EncodeToString(crypto.Keccak256(body))
		timestamp := time.Now().UTC().Format(time.RFC3339)
		nonce := uuid.NewString()

		payload := witness.Timestamping{
			EventHash: eventHash,
			Timestamp: timestamp,
			Nonce:     nonce,
		}

		data := map[string]any{
			"event_hash": eventHash,
			"timestamp":  timestamp,
			"nonce":      nonce,
		}

		return payload, data, nil
	})
}
