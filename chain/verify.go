package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/basislabs/basis-edge-go/types"
)

// DefaultMinAmount is the minimum qualifying transfer amount in the token's
// smallest unit (0.001 of a 6-decimal token).
const DefaultMinAmount = 1000

// transferTopic is the event signature hash of Transfer(address,address,uint256).
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// placeholderTxIDs are documentation and test values that must never reach
// the ledger.
var placeholderTxIDs = map[string]bool{
	"0x0000000000000000000000000000000000000000000000000000000000000000": true,
	"0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff": true,
	"0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef": true,
}

// VerifierConfig is the configuration for payment verification.
type VerifierConfig struct {
	RPCURL       string
	TokenAddress string
	MinAmount    int64
	// Timeout bounds the ledger query. Zero means no explicit timeout;
	// the surrounding transport is then the only limit.
	Timeout time.Duration
}

// VerifyPayment verifies that the transaction paid the recipient at least
// the minimum amount of the configured token. Business-rule failures are
// reported through the result; a non-nil error is an internal fault.
func VerifyPayment(ctx context.Context, c VerifierConfig, txID, recipient string) (types.VerifyResult, error) {

	// Reject known placeholder transaction identifiers before any network call
	if placeholderTxIDs[strings.ToLower(txID)] {
		return types.VerifyResult{
			IsValid: false,
			Reason:  types.VerifyReasonPlaceholderTransaction,
		}, nil
	}

	// Get the RPC URL for the configured network
	if c.RPCURL == "" {
		// Return an error that will be handled as an internal server error
		return types.VerifyResult{}, fmt.Errorf("RPC_URL is not set")
	}

	// Dial the Ethereum RPC client
	client, err := NewEthClient(c.RPCURL)
	if err != nil {
		// Return an error that will be handled as an internal server error
		return types.VerifyResult{}, fmt.Errorf("failed to dial RPC client: %v", err)
	}

	// Bound the ledger query when a timeout is configured
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	// Fetch the transaction settlement receipt
	receipt, err := client.TransactionReceipt(ctx, common.HexToHash(txID))
	if errors.Is(err, ethereum.NotFound) {
		return types.VerifyResult{
			IsValid: false,
			Reason:  types.VerifyReasonReceiptNotFound,
		}, nil
	}
	if err != nil {
		return types.VerifyResult{
			IsValid: false,
			Reason:  types.VerifyReasonNetworkError,
		}, nil
	}

	// Verify the receipt reports success (not pending, not reverted)
	if receipt.Status != 1 {
		return types.VerifyResult{
			IsValid: false,
			Reason:  types.VerifyReasonTransactionFailed,
		}, nil
	}

	// Verify the receipt contains at least one event log
	if len(receipt.Logs) == 0 {
		return types.VerifyResult{
			IsValid: false,
			Reason:  types.VerifyReasonNoLogs,
		}, nil
	}

	// Set the minimum qualifying amount
	minAmount := c.MinAmount
	if minAmount <= 0 {
		minAmount = DefaultMinAmount
	}

	// Set the configured token contract and recipient addresses
	tokenAddress := common.HexToAddress(c.TokenAddress)
	recipientAddress := common.HexToAddress(recipient)

	// Scan the logs for the first qualifying transfer
	for _, logEntry := range receipt.Logs {

		// Skip logs not emitted by the token contract
		if logEntry.Address != tokenAddress {
			continue
		}

		// Skip logs that are not Transfer events with indexed from/to
		if len(logEntry.Topics) != 3 || logEntry.Topics[0] != transferTopic {
			continue
		}

		// Skip transfers to a different destination
		to := common.BytesToAddress(logEntry.Topics[2].Bytes())
		if to != recipientAddress {
			continue
		}

		// Skip transfers below the minimum amount
		amount := new(big.Int).SetBytes(logEntry.Data)
		if amount.Cmp(big.NewInt(minAmount)) < 0 {
			continue
		}

		// Recover the payer from the transfer's source field
		payer := common.BytesToAddress(logEntry.Topics[1].Bytes())

		// Return verify result valid with the payer address
		return types.VerifyResult{
			IsValid: true,
			Payer:   payer.Hex(),
		}, nil
	}

	// No log satisfied all conditions
	return types.VerifyResult{
		IsValid: false,
		Reason:  types.VerifyReasonNoQualifyingTransfer,
	}, nil
}
