package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates every setting the binaries need. It is built once in main
// and handed to the components that use it.
type Config struct {
	Server   *ServerConfig
	Database *DatabaseConfig
	LLM      *LLMConfig
	TTS      *TTSConfig
	Storage  *StorageConfig
	Auth     *AuthConfig
	Redis    *RedisConfig
}

type ServerConfig struct {
	Port               string
	BaseURL            string
	RateLimitPerMinute int
	RateLimitBurst     int
	StaleJobAfter      time.Duration
	LogLevel           string
	LogPretty          bool
}

type DatabaseConfig struct {
	URL string
}

type LLMConfig struct {
	APIURL      string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

type TTSConfig struct {
	APIURL          string
	APIKey          string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
	Style           float64
	SpeakerBoost    bool
}

type StorageConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKeyID    string
	SecretKey      string
	ForcePathStyle bool
	SignedURLTTL   time.Duration
}

type AuthConfig struct {
	// JWTSecret enables local HS256 verification. When empty, tokens are
	// resolved against the identity provider's user endpoint.
	JWTSecret   string
	IdentityURL string
	APIKey      string
}

type RedisConfig struct {
	Addr string
}

// Load reads every section from the environment.
func Load() (*Config, error) {
	server, err := GetServerConfig()
	if err != nil {
		return nil, err
	}
	database, err := GetDatabaseConfig()
	if err != nil {
		return nil, err
	}
	llm, err := GetLLMConfig()
	if err != nil {
		return nil, err
	}
	tts, err := GetTTSConfig()
	if err != nil {
		return nil, err
	}
	storage, err := GetStorageConfig()
	if err != nil {
		return nil, err
	}
	auth, err := GetAuthConfig()
	if err != nil {
		return nil, err
	}
	return &Config{
		Server:   server,
		Database: database,
		LLM:      llm,
		TTS:      tts,
		Storage:  storage,
		Auth:     auth,
		Redis:    GetRedisConfig(),
	}, nil
}

func GetServerConfig() (*ServerConfig, error) {
	perMinute, err := intEnv("RATE_LIMIT_PER_MINUTE", 6)
	if err != nil {
		return nil, err
	}
	burst, err := intEnv("RATE_LIMIT_BURST", 2)
	if err != nil {
		return nil, err
	}
	staleAfter, err := durationEnv("STALE_JOB_AFTER", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	pretty, err := boolEnv("LOG_PRETTY", false)
	if err != nil {
		return nil, err
	}
	return &ServerConfig{
		Port:               stringEnv("PORT", "8080"),
		BaseURL:            os.Getenv("BASE_URL"),
		RateLimitPerMinute: perMinute,
		RateLimitBurst:     burst,
		StaleJobAfter:      staleAfter,
		LogLevel:           stringEnv("LOG_LEVEL", "info"),
		LogPretty:          pretty,
	}, nil
}

func GetDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}
	return &DatabaseConfig{URL: url}, nil
}

func GetLLMConfig() (*LLMConfig, error) {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY must be set")
	}
	temperature, err := floatEnv("LLM_TEMPERATURE", 0.6)
	if err != nil {
		return nil, err
	}
	maxTokens, err := intEnv("LLM_MAX_TOKENS", 2000)
	if err != nil {
		return nil, err
	}
	return &LLMConfig{
		APIURL:      stringEnv("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
		APIKey:      apiKey,
		Model:       stringEnv("LLM_MODEL", "gpt-4o-mini"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

func GetTTSConfig() (*TTSConfig, error) {
	apiKey := os.Getenv("ELEVEN_LABS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ELEVEN_LABS_API_KEY must be set")
	}
	stability, err := floatEnv("ELEVEN_LABS_STABILITY", 0.5)
	if err != nil {
		return nil, err
	}
	similarity, err := floatEnv("ELEVEN_LABS_SIMILARITY_BOOST", 0.75)
	if err != nil {
		return nil, err
	}
	style, err := floatEnv("ELEVEN_LABS_STYLE", 0.3)
	if err != nil {
		return nil, err
	}
	speakerBoost, err := boolEnv("ELEVEN_LABS_SPEAKER_BOOST", true)
	if err != nil {
		return nil, err
	}
	return &TTSConfig{
		APIURL:          stringEnv("ELEVEN_LABS_API_URL", "https://api.elevenlabs.io/v1/text-to-speech"),
		APIKey:          apiKey,
		ModelID:         stringEnv("ELEVEN_LABS_MODEL_ID", "eleven_multilingual_v2"),
		Stability:       stability,
		SimilarityBoost: similarity,
		Style:           style,
		SpeakerBoost:    speakerBoost,
	}, nil
}

func GetStorageConfig() (*StorageConfig, error) {
	bucket := os.Getenv("STORAGE_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET must be set")
	}
	pathStyle, err := boolEnv("STORAGE_FORCE_PATH_STYLE", false)
	if err != nil {
		return nil, err
	}
	ttl, err := durationEnv("SIGNED_URL_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	return &StorageConfig{
		Bucket:         bucket,
		Region:         stringEnv("STORAGE_REGION", "us-east-1"),
		Endpoint:       os.Getenv("STORAGE_ENDPOINT"),
		AccessKeyID:    os.Getenv("STORAGE_ACCESS_KEY_ID"),
		SecretKey:      os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
		ForcePathStyle: pathStyle,
		SignedURLTTL:   ttl,
	}, nil
}

func GetAuthConfig() (*AuthConfig, error) {
	conf := &AuthConfig{
		JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		IdentityURL: os.Getenv("AUTH_IDENTITY_URL"),
		APIKey:      os.Getenv("AUTH_API_KEY"),
	}
	if conf.JWTSecret == "" && conf.IdentityURL == "" {
		return nil, fmt.Errorf("either AUTH_JWT_SECRET or AUTH_IDENTITY_URL must be set")
	}
	return conf, nil
}

func GetRedisConfig() *RedisConfig {
	return &RedisConfig{Addr: stringEnv("REDIS_ADDR", "127.0.0.1:6379")}
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return f, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}
