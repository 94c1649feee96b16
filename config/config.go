package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings, loaded once at startup.
type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string

	// Secondary REST mirror used as the tier-2 fallback for reads.
	APIBaseURL string

	// Remote AI analyzer. Absence of the key disables the remote tier and
	// every analysis runs on the local heuristic.
	AIAPIURL string
	AIAPIKey string

	// Auth provider selection: "demo" unless an external provider is
	// configured. External SDK bindings live behind the auth.Provider
	// interface and are out of scope here.
	AuthProvider string

	// Blockchain / IPFS integration points. When unset the content hash is
	// stored in the local content-address table.
	BlockchainRPCURL string
	ContractAddress  string
	IPFSGateway      string
	IPFSAPIKey       string

	WebSocketPath string

	// SMTP for moderation notifications.
	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string

	// Cloudinary upload credentials.
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	EnableAI            bool
	EnableBlockchain    bool
	EnableQRVerify      bool
	EnableNotifications bool
}

// Load reads configuration from the environment. A missing .env file is not
// an error; variables may come from the process environment directly.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}

	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))

	cfg := &Config{
		Port:                getEnv("PORT", "8000"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:           getEnv("JWT_SECRET", "solid_secret_key"),
		APIBaseURL:          os.Getenv("API_BASE_URL"),
		AIAPIURL:            os.Getenv("AI_API_URL"),
		AIAPIKey:            os.Getenv("AI_API_KEY"),
		AuthProvider:        getEnv("AUTH_PROVIDER", "demo"),
		BlockchainRPCURL:    os.Getenv("BLOCKCHAIN_RPC_URL"),
		ContractAddress:     os.Getenv("CONTRACT_ADDRESS"),
		IPFSGateway:         os.Getenv("IPFS_GATEWAY"),
		IPFSAPIKey:          os.Getenv("IPFS_API_KEY"),
		WebSocketPath:       getEnv("WS_PATH", "/ws"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            smtpPort,
		EmailUser:           os.Getenv("EMAIL_USER"),
		EmailPass:           os.Getenv("EMAIL_PASS"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		EnableAI:            getEnvBool("ENABLE_AI", true),
		EnableBlockchain:    getEnvBool("ENABLE_BLOCKCHAIN", true),
		EnableQRVerify:      getEnvBool("ENABLE_QR_VERIFICATION", true),
		EnableNotifications: getEnvBool("ENABLE_NOTIFICATIONS", true),
	}

	// The AI feature flag is meaningless without a key.
	if cfg.AIAPIKey == "" {
		cfg.EnableAI = false
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
