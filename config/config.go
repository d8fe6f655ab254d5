package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the service configuration, read from the environment.
type Config struct {
	Port             string
	NodeName         string
	RPCURL           string
	TokenAddress     string
	RecipientAddress string
	PrivateKey       string
	WitnessID        string
	RedisURL         string
	DatabaseURL      string
	MinAmount        int64
	VerifyTimeout    time.Duration

	// 402 advert fields
	Chain    string
	Network  string
	Currency string
	Price    string
}

// Load reads the configuration from the environment.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	nodeName := os.Getenv("NODE_NAME")
	if nodeName == "" {
		nodeName, _ = os.Hostname()
	}

	witnessID := os.Getenv("WITNESS_ID")
	if witnessID == "" {
		witnessID = "basis-edge"
	}

	minAmount := int64(1000)
	if v := os.Getenv("MIN_AMOUNT"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			minAmount = parsed
		}
	}

	var verifyTimeout time.Duration
	if v := os.Getenv("VERIFY_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			verifyTimeout = time.Duration(parsed) * time.Second
		}
	}

	chain := os.Getenv("PAYMENT_CHAIN")
	if chain == "" {
		chain = "base"
	}

	network := os.Getenv("PAYMENT_NETWORK")
	if network == "" {
		network = "mainnet"
	}

	currency := os.Getenv("PAYMENT_CURRENCY")
	if currency == "" {
		currency = "USDC"
	}

	price := os.Getenv("PAYMENT_PRICE")
	if price == "" {
		price = "0.001"
	}

	return &Config{
		Port:             port,
		NodeName:         nodeName,
		RPCURL:           os.Getenv("RPC_URL"),
		TokenAddress:     os.Getenv("TOKEN_ADDRESS"),
		RecipientAddress: os.Getenv("RECIPIENT_ADDRESS"),
		PrivateKey:       os.Getenv("PRIVATE_KEY"),
		WitnessID:        witnessID,
		RedisURL:         os.Getenv("REDIS_URL"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		MinAmount:        minAmount,
		VerifyTimeout:    verifyTimeout,
		Chain:            chain,
		Network:          network,
		Currency:         currency,
		Price:            price,
	}
}
