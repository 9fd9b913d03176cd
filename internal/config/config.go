package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Email   EmailConfig   `mapstructure:"email"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host" validate:"required,hostname|ip"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// EmailConfig holds the sender identity used to authenticate against the relay.
// It is checked at send time, not at load time.
type EmailConfig struct {
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

var (
	ErrMissingSenderAddress  = errors.New("sender email address is not configured (EMAIL_USER)")
	ErrMissingSenderPassword = errors.New("sender email password is not configured (EMAIL_PASS)")
)

// Validate reports whether the sender credentials are usable.
func (e EmailConfig) Validate() error {
	if strings.TrimSpace(e.User) == "" {
		return ErrMissingSenderAddress
	}
	if e.Pass == "" {
		return ErrMissingSenderPassword
	}
	return nil
}

// LoadConfig builds the process configuration. When path is empty the file is
// looked up as ./config/config.yaml and may be absent; environment variables
// always take precedence (EMAIL_USER -> email.user).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	v.SetDefault("server.port", "8000")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("email.user", "")
	v.SetDefault("email.pass", "")
	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.open_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("an error occurred reading configuration file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("an error unmarshalling the config: %w", err)
	}
	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}
