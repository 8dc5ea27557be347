package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/csheth/insightscout/internal/answer"
	"github.com/csheth/insightscout/internal/engine"
	"github.com/csheth/insightscout/internal/reveal"
)

// EnvPrefix namespaces environment overrides, eg. INSIGHTSCOUT_SERVICE_ENDPOINT.
const EnvPrefix = "INSIGHTSCOUT"

const (
	// DefaultEntranceDelay holds back the header tagline on the first paint.
	DefaultEntranceDelay = 300 * time.Millisecond
	// DefaultRevealMargin is in terminal lines.
	DefaultRevealMargin = 1
)

type Config struct {
	Service  ServiceConfig `mapstructure:"service"`
	Examples []string      `mapstructure:"examples"`
	Reveal   RevealConfig  `mapstructure:"reveal"`
	UI       UIConfig      `mapstructure:"ui"`
	Log      LogConfig     `mapstructure:"log"`
	Stub     StubConfig    `mapstructure:"stub"`
}

type ServiceConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// RevealConfig is measured in terminal lines.
type RevealConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	Margin    int     `mapstructure:"margin"`
}

type UIConfig struct {
	EntranceDelay time.Duration `mapstructure:"entrance_delay"`
	AltScreen     bool          `mapstructure:"alt_screen"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type StubConfig struct {
	Addr    string `mapstructure:"addr"`
	Fixture string `mapstructure:"fixture"`
	TopK    int    `mapstructure:"top_k"`

	// Latency delays every stub answer to mimic model generation.
	Latency time.Duration `mapstructure:"latency"`
}

// Loader reads YAML config, environment overrides, and bound CLI flags.
type Loader struct {
	viper *viper.Viper
}

// NewLoader prepares a loader for configFile. With no file it searches the
// working directory and $HOME/.config/insightscout for config.yaml.
func NewLoader(configFile string) *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/insightscout")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &Loader{viper: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.endpoint", answer.DefaultEndpoint)
	v.SetDefault("service.timeout", answer.DefaultTimeout)
	v.SetDefault("service.user_agent", answer.DefaultUserAgent)
	v.SetDefault("examples", engine.DefaultExamples)
	v.SetDefault("reveal.threshold", reveal.DefaultThreshold)
	v.SetDefault("reveal.margin", DefaultRevealMargin)
	v.SetDefault("ui.entrance_delay", DefaultEntranceDelay)
	v.SetDefault("ui.alt_screen", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("stub.addr", "127.0.0.1:7860")
	v.SetDefault("stub.top_k", 3)
}

// BindFlag lets a CLI flag override key when the user sets it.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag is nil", key)
	}
	if err := l.viper.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind %s: %w", key, err)
	}
	return nil
}

func (l *Loader) Load() (*Config, error) {
	if err := l.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg Config
	if err := l.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error
	endpoint, err := url.Parse(c.Service.Endpoint)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("service.endpoint: %w", err))
	case endpoint.Scheme != "http" && endpoint.Scheme != "https":
		errs = append(errs, fmt.Errorf("service.endpoint: scheme must be http or https, got %q", endpoint.Scheme))
	case endpoint.Host == "":
		errs = append(errs, errors.New("service.endpoint: host is required"))
	}
	if c.Service.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("service.timeout: must be positive, got %s", c.Service.Timeout))
	}
	if c.Reveal.Threshold < 0 || c.Reveal.Threshold > 1 {
		errs = append(errs, fmt.Errorf("reveal.threshold: must be within [0, 1], got %v", c.Reveal.Threshold))
	}
	if c.Reveal.Margin < 0 {
		errs = append(errs, fmt.Errorf("reveal.margin: must not be negative, got %d", c.Reveal.Margin))
	}
	if c.UI.EntranceDelay < 0 {
		errs = append(errs, fmt.Errorf("ui.entrance_delay: must not be negative, got %s", c.UI.EntranceDelay))
	}
	if c.Stub.TopK <= 0 {
		errs = append(errs, fmt.Errorf("stub.top_k: must be positive, got %d", c.Stub.TopK))
	}
	if c.Stub.Latency < 0 {
		errs = append(errs, fmt.Errorf("stub.latency: must not be negative, got %s", c.Stub.Latency))
	}
	return errors.Join(errs...)
}

// AnswerConfig maps the service section onto the answer client.
func (c *Config) AnswerConfig() answer.Config {
	return answer.Config{
		Endpoint:  c.Service.Endpoint,
		Timeout:   c.Service.Timeout,
		UserAgent: c.Service.UserAgent,
	}
}

func (c *Config) RevealOptions() reveal.Options {
	return reveal.Options{Threshold: c.Reveal.Threshold, Margin: c.Reveal.Margin}
}
