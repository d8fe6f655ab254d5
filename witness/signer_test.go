package witness

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/basislabs/basis-edge-go/types"
	"github.com/basislabs/basis-edge-go/utils"
)

const (
	testPrivateKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testWitnessID  = "basis-edge-test"
)

func TestNewSigner_KeyValidation(t *testing.T) {
	cases := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"missing prefix", strings.TrimPrefix(testPrivateKey, "0x")},
		{"too short", "0x4c0883a69102937d6231471b5dbb6204"},
		{"too long", testPrivateKey + "ff"},
		{"non hex characters", "0x" + strings.Repeat("zz", 32)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSigner(tc.key, testWitnessID)
			require.Error(t, err)

			var se utils.StatusError
			require.True(t, errors.As(err, &se))
			require.Equal(t, types.RejectionConfigurationError, se.Kind())
		})
	}
}

func TestNewSigner_DerivesAddress(t *testing.T) {
	signer, err := NewSigner(testPrivateKey, testWitnessID)
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(strings.TrimPrefix(testPrivateKey, "0x"))
	require.NoError(t, err)

	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), signer.Address())
}

func TestSign_CertificateFields(t *testing.T) {
	signer, err := NewSigner(testPrivateKey, testWitnessID)
	require.NoError(t, err)

	payload := CacheRead{Key: "k", Value: "v", Timestamp: "2026-01-02T03:04:05Z"}

	certificate, err := signer.Sign(payload)
	require.NoError(t, err)

	require.Equal(t, testWitnessID, certificate.WitnessID)
	require.Equal(t, SigningMethod, certificate.Method)
	require.Equal(t, signer.Address(), certificate.Signer)

	// The timestamp is ISO-8601
	_, err = time.Parse(time.RFC3339, certificate.Timestamp)
	require.NoError(t, err)

	// The hash is the keccak-256 of the rendered payload bytes
	expectedHash := "0x" + hex.EncodeToString(crypto.Keccak256([]byte(payload.Render())))
	require.Equal(t, expectedHash, certificate.Hash)
}

func TestSign_SignatureRecoversSigner(t *testing.T) {
	signer, err := NewSigner(testPrivateKey, testWitnessID)
	require.NoError(t, err)

	// Every operation kind goes through the same signing path
	payloads := []Payload{
		ContentWitness{URL: "https://example.com", Timestamp: "2026-01-02T03:04:05Z", Content: "body"},
		Classification{ImageHash: "0xab", TopResult: "cat", Confidence: "0.5"},
		CacheWrite{Timestamp: "2026-01-02T03:04:05Z", Key: "k", Value: "v"},
		CacheRead{Key: "k", Value: "v", Timestamp: "2026-01-02T03:04:05Z"},
		Calculation{Formula: "f", JSONInputs: "{}", Result: "0"},
		Timestamping{EventHash: "0xcd", Timestamp: "2026-01-02T03:04:05Z", Nonce: "n"},
		BadgeIssuance{Wallet: "0x2222222222222222222222222222222222222222", Status: "ok", SessionID: "s"},
		RiskAssessment{Target: "t", Score: "1", Timestamp: "2026-01-02T03:04:05Z"},
	}

	for _, payload := range payloads {
		t.Run(string(payload.Operation()), func(t *testing.T) {
			certificate, err := signer.Sign(payload)
			require.NoError(t, err)

			hash, err := hex.DecodeString(strings.TrimPrefix(certificate.Hash, "0x"))
			require.NoError(t, err)

			signature, err := hex.DecodeString(strings.TrimPrefix(certificate.Signature, "0x"))
			require.NoError(t, err)
			require.Len(t, signature, 65)

			// The recovered signer always equals the address derived
			// from the private key
			pubkey, err := crypto.SigToPub(hash, signature)
			require.NoError(t, err)
			require.Equal(t, signer.Address(), crypto.PubkeyToAddress(*pubkey).Hex())
		})
	}
}
