package common

// Config is the process-level configuration, loaded once at startup from
// environment variables (see pkg/infra/ioc.EnvironmentConfig).
type Config struct {
	Port        string
	DevEnv      bool
	DatabaseURL string

	// SessionSecret is the single key material for both the AES-GCM address
	// envelope and the sender-address HMAC (scrypt-derived for the former,
	// used directly as the HMAC key for the latter).
	SessionSecret string

	AlchemyAPIKey  string
	TronGridAPIKey string
	RPCTron        string

	PaymentAddressEVM  string
	PaymentAddressTron string

	DefaultWebhookURL    string
	DefaultWebhookSecret string
}
