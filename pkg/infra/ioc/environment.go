package ioc

import (
	"fmt"
	"os"

	common "github.com/stablepay/gateway/pkg/domain"
)

// EnvironmentConfig reads the recognized environment variables into a
// common.Config, failing fast on the two required ones.
func EnvironmentConfig() (common.Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return common.Config{}, fmt.Errorf("EnvironmentConfig: DATABASE_URL is required")
	}
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return common.Config{}, fmt.Errorf("EnvironmentConfig: SESSION_SECRET is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return common.Config{
		Port:                 port,
		DevEnv:               os.Getenv("DEV_ENV") == "true",
		DatabaseURL:          databaseURL,
		SessionSecret:        sessionSecret,
		AlchemyAPIKey:        os.Getenv("ALCHEMY_API_KEY"),
		TronGridAPIKey:       os.Getenv("TRONGRID_API_KEY"),
		RPCTron:              os.Getenv("RPC_TRON"),
		PaymentAddressEVM:    os.Getenv("PAYMENT_ADDRESS_EVM"),
		PaymentAddressTron:   os.Getenv("PAYMENT_ADDRESS_TRON"),
		DefaultWebhookURL:    os.Getenv("WEBHOOK_URL"),
		DefaultWebhookSecret: os.Getenv("WEBHOOK_SECRET"),
	}, nil
}
