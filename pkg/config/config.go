package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pion/webrtc/v4"
	"github.com/samber/lo"
)

// DefaultSTUN is handed to clients when STUN_SERVERS is not set
const DefaultSTUN = "stun:stun.l.google.com:19302"

var validate = validator.New()

// Config holds the signaling server configuration
type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8000" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`

	// Value of Access-Control-Allow-Origin, "*" echoes the request origin
	AllowedOrigin string `env:"ALLOWED_ORIGIN,default=*" validate:"required"`

	ReadBufferSize  int `env:"READ_BUFFER_SIZE,default=1024" validate:"min=128"`
	WriteBufferSize int `env:"WRITE_BUFFER_SIZE,default=1024" validate:"min=128"`

	// Outbound queue length per connection
	SendBufferSize int `env:"SEND_BUFFER_SIZE,default=100" validate:"min=1"`

	// Largest inbound frame accepted from a peer, SDP offers can be large
	MaxMessageSize int `env:"MAX_MESSAGE_SIZE,default=65536" validate:"min=512"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`

	// Comma separated STUN urls
	STUNServers string `env:"STUN_SERVERS"`
	TURNServer  string `env:"TURN_SERVER"`
	TURNUser    string `env:"TURN_USERNAME"`
	TURNPass    string `env:"TURN_PASSWORD"`
}

// Options carries command line overrides, zero values are ignored
type Options struct {
	Host     string
	Port     int
	LogLevel string
	EnvFile  string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables, optionally seeded from a .env file
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env file is not an error, explicit ones are
	if err := godotenv.Load(envFile); err != nil && opts.EnvFile != "" {
		return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Port = opts.Port
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)

	if cfg.STUNServers == "" {
		cfg.STUNServers = DefaultSTUN
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Address returns the listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ICEServers returns the STUN/TURN servers clients should use for their
// peer connections
func (c *Config) ICEServers() []webrtc.ICEServer {
	stun := lo.Compact(lo.Map(strings.Split(c.STUNServers, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))

	servers := []webrtc.ICEServer{{URLs: stun}}
	if c.TURNServer == "" {
		return servers
	}

	return append(servers, webrtc.ICEServer{
		URLs: []string{
			fmt.Sprintf("turn:%s:3478?transport=udp", c.TURNServer),
			fmt.Sprintf("turn:%s:3478?transport=tcp", c.TURNServer),
			fmt.Sprintf("turns:%s:5349?transport=tcp", c.TURNServer),
		},
		Username:   c.TURNUser,
		Credential: c.TURNPass,
	})
}
