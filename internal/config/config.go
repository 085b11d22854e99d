package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	appenv "github.com/garrettladley/slackgate/internal/env"
	"github.com/garrettladley/slackgate/internal/signature"
	"github.com/garrettladley/slackgate/internal/xslog"
)

var (
	ErrNoSigningSecret = errors.New("SLACK_SIGNING_SECRET or REDIS_URL must be set")
	ErrDriftDisabled   = errors.New("SLACK_DRIFT cannot be disabled in production")
)

type Config struct {
	Port     string             `env:"PORT" envDefault:"8080"`
	Env      appenv.Environment `env:"ENV" envDefault:"development"`
	LogLevel xslog.Level        `env:"LOG_LEVEL" envDefault:"info"`
	Slack    Slack              `envPrefix:"SLACK_"`
	Redis    Redis              `envPrefix:"REDIS_"`
}

type Slack struct {
	CallbackPath        string            `env:"CALLBACK_PATH" envDefault:"/slack/events"`
	SigningSecret       string            `env:"SIGNING_SECRET"`
	Drift               Drift             `env:"DRIFT" envDefault:"5m"`
	AllowedVerbs        []string          `env:"ALLOWED_VERBS" envDefault:"POST"`
	AllowedContentTypes []string          `env:"ALLOWED_CONTENT_TYPES" envDefault:"application/json"`
	RedirectStatus      int               `env:"REDIRECT_STATUS" envDefault:"302"`
	EventRewrites       map[string]string `env:"EVENT_REWRITES" envKeyValSeparator:"="`
	EventRedirects      map[string]string `env:"EVENT_REDIRECTS" envKeyValSeparator:"="`
	PassThrough         bool              `env:"PASS_THROUGH" envDefault:"false"`
	MaxBodyBytes        int64             `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	TenantParam         string            `env:"TENANT_PARAM" envDefault:"app"`
}

type Redis struct {
	URL string `env:"URL"`
}

// Drift is the replay window. "off" disables the check.
type Drift time.Duration

func (d *Drift) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if strings.EqualFold(s, "off") {
		*d = Drift(signature.DisableDrift)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid drift %q: %w", s, err)
	}
	*d = Drift(v)
	return nil
}

func (d Drift) Duration() time.Duration { return time.Duration(d) }

func (d Drift) Disabled() bool { return time.Duration(d) == signature.DisableDrift }

func Read() (Config, error) {
	return read(env.Options{})
}

func read(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Slack.SigningSecret == "" && c.Redis.URL == "" {
		return ErrNoSigningSecret
	}
	if c.Env.IsProduction() && c.Slack.Drift.Disabled() {
		return ErrDriftDisabled
	}
	return nil
}
