package configs

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopmesh/relay/internal/infrastructure/env"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	Relay       RelayConfig       `koanf:"relay"`
	Auth        AuthConfig        `koanf:"auth"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type RelayConfig struct {
	// SendQueueDepth bounds the per-session outbound queue; events past the
	// bound are dropped, never queued elsewhere.
	SendQueueDepth int           `koanf:"send_queue_depth"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	PongTimeout    time.Duration `koanf:"pong_timeout"`
	MaxMessageSize int64         `koanf:"max_message_size"`
}

type AuthConfig struct {
	// Required turns on signed-identity verification for join events. Off by
	// default: the observed deployment trusts the identity as asserted.
	Required bool   `koanf:"required"`
	Secret   string `koanf:"secret"`
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int           `koanf:"requestsPerTimeFrame"`
	TimeFrame            time.Duration `koanf:"timeFrame"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8900)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.allowed_origins", []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://localhost:8080",
	})

	setDefault(k, "relay.send_queue_depth", 64)
	setDefault(k, "relay.write_timeout", 10*time.Second)
	setDefault(k, "relay.pong_timeout", 60*time.Second)
	setDefault(k, "relay.max_message_size", 64*1024)

	setDefault(k, "auth.required", false)
	setDefault(k, "auth.secret", "")

	setDefault(k, "rateLimiter.requestsPerTimeFrame", 50)
	setDefault(k, "rateLimiter.timeFrame", 5*time.Second)
}

func applyEnvOverrides(k *koanf.Koanf) {
	if host := env.GetString("RELAY_HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("RELAY_HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("RELAY_HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("RELAY_HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	if depth := env.GetInt("RELAY_SEND_QUEUE_DEPTH", 0); depth > 0 {
		k.Set("relay.send_queue_depth", depth)
	}
	if size := env.GetInt("RELAY_MAX_MESSAGE_SIZE", 0); size > 0 {
		k.Set("relay.max_message_size", int64(size))
	}

	if env.GetBool("RELAY_AUTH_REQUIRED", false) {
		k.Set("auth.required", true)
	}
	if secret := env.GetString("RELAY_AUTH_SECRET", ""); secret != "" {
		k.Set("auth.secret", secret)
	}

	if reqs := env.GetInt("RELAY_RATE_LIMIT_REQUESTS", 0); reqs > 0 {
		k.Set("rateLimiter.requestsPerTimeFrame", reqs)
	}
	if frame := env.GetInt("RELAY_RATE_LIMIT_TIME_FRAME_SECONDS", 0); frame > 0 {
		k.Set("rateLimiter.timeFrame", time.Duration(frame)*time.Second)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
