package witness

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/basislabs/basis-edge-go/types"
	"github.com/basislabs/basis-edge-go/utils"
)

// SigningMethod is the fixed method label emitted in every certificate.
const SigningMethod = "ECDSA-secp256k1"

// privateKeyPattern is the required lexical shape of the signing key.
var privateKeyPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Signer builds canonical payloads into signed witness certificates. It is
// the only component holding the service private key; Sign keeps no state
// between calls.
type Signer struct {
	witnessID string
	key       *ecdsa.PrivateKey
	signer    string
}

// NewSigner creates a new signer from a 0x-prefixed 64-hex-character
// private key. A missing or malformed key is a configuration error and is
// reported before any request is served.
func NewSigner(privateKeyHex, witnessID string) (*Signer, error) {

	// Verify the private key has the exact required shape
	if !privateKeyPattern.MatchString(privateKeyHex) {
		return nil, utils.NewStatusError(
			fmt.Errorf("private key must be a 0x-prefixed 64 hex character string"),
			http.StatusInternalServerError,
			types.RejectionConfigurationError,
		)
	}

	// Parse the private key
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, utils.NewStatusError(
			fmt.Errorf("failed to parse private key: %v", err),
			http.StatusInternalServerError,
			types.RejectionConfigurationError,
		)
	}

	// Derive the signer address from the private key
	signer := crypto.PubkeyToAddress(key.PublicKey)

	return &Signer{
		witnessID: witnessID,
		key:       key,
		signer:    signer.Hex(),
	}, nil
}

// Address returns the signer's derived public address.
func (s *Signer) Address() string {
	return s.signer
}

// Sign renders the canonical payload, hashes it, signs the raw hash and
// emits the witness certificate.
func (s *Signer) Sign(p Payload) (types.WitnessCertificate, error) {

	// Render the canonical payload
	rendered := p.Render()

	// Compute the keccak-256 hash of the payload bytes
	hash := crypto.Keccak256([]byte(rendered))

	// Sign the raw hash (no message prefix)
	signature, err := crypto.Sign(hash, s.key)
	if err != nil {
		return types.WitnessCertificate{}, fmt.Errorf("failed to sign payload hash: %v", err)
	}

	// Emit the certificate
	return types.WitnessCertificate{
		WitnessID: s.witnessID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Method:    SigningMethod,
		Signer:    s.signer,
		Hash:      "0x" + hex.EncodeToString(hash),
		Signature: "0x" + hex.EncodeToString(signature),
	}, nil
}
