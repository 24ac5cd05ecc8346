package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/romangod6/cricket-highlights/internal/classify"
	"github.com/romangod6/cricket-highlights/internal/lexicon"
	"github.com/romangod6/cricket-highlights/internal/storage"
	"github.com/romangod6/cricket-highlights/internal/utils"
)

// EnvPrefix prefixes every environment override, e.g.
// HIGHLIGHTS_STORAGE_BACKEND=s3.
const EnvPrefix = "HIGHLIGHTS"

// legacyKeyVars are the per-key variables older deployments set.
var legacyKeyVars = []string{
	"YOUTUBE_API_KEY",
	"YOUTUBE_API_KEY_1", "YOUTUBE_API_KEY_2", "YOUTUBE_API_KEY_3",
	"YOUTUBE_API_KEY_4", "YOUTUBE_API_KEY_5",
}

type Channel struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// SourceOverride replaces the built-in rule of one source. It is a list
// entry rather than a map key because viper lower-cases map keys and
// channel ids are case sensitive.
type SourceOverride struct {
	Source string              `mapstructure:"source"`
	Rule   classify.SourceRule `mapstructure:",squash"`
}

type Config struct {
	Storage storage.Config `mapstructure:"storage"`
	Server  struct {
		Port            int           `mapstructure:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	YouTube struct {
		APIKeys         []string      `mapstructure:"api_keys"`
		Channels        []Channel     `mapstructure:"channels"`
		RequestInterval time.Duration `mapstructure:"request_interval"`
		MaxPerChannel   int           `mapstructure:"max_per_channel"`
		Classic         struct {
			Enabled  bool   `mapstructure:"enabled"`
			Query    string `mapstructure:"query"`
			MinViews int64  `mapstructure:"min_views"`
			Limit    int    `mapstructure:"limit"`
		} `mapstructure:"classic"`
		WebSub struct {
			HubURL      string        `mapstructure:"hub_url"`
			VerifyToken string        `mapstructure:"verify_token"`
			Lease       time.Duration `mapstructure:"lease"`
			CallbackURL string        `mapstructure:"callback_url"`
		} `mapstructure:"websub"`
	} `mapstructure:"youtube"`
	Scraper struct {
		Sites          []string      `mapstructure:"sites"`
		UserAgent      string        `mapstructure:"user_agent"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
		Delay          time.Duration `mapstructure:"delay"`
	} `mapstructure:"scraper"`
	Classifier struct {
		Strategy              string           `mapstructure:"strategy"`
		StrictBoardHighlights bool             `mapstructure:"strict_board_highlights"`
		Sources               []SourceOverride `mapstructure:"sources"`
	} `mapstructure:"classifier"`
	Catalog struct {
		Prefix            string `mapstructure:"prefix"`
		ClassicCutoffYear int    `mapstructure:"classic_cutoff_year"`
	} `mapstructure:"catalog"`
	Schedule struct {
		Cron       string `mapstructure:"cron"`
		RunOnStart bool   `mapstructure:"run_on_start"`
	} `mapstructure:"schedule"`
	Log utils.LoggerConfig `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", storage.BackendFile)
	v.SetDefault("storage.dir", ".")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.sqlite_path", "highlights.db")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.table", "documents")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("youtube.api_keys", []string{})
	v.SetDefault("youtube.channels", defaultChannels())
	v.SetDefault("youtube.request_interval", "1s")
	v.SetDefault("youtube.max_per_channel", 200)
	v.SetDefault("youtube.classic.enabled", true)
	v.SetDefault("youtube.classic.query", "classic cricket match highlights")
	v.SetDefault("youtube.classic.min_views", 100000)
	v.SetDefault("youtube.classic.limit", 100)
	v.SetDefault("youtube.websub.hub_url", "https://pubsubhubbub.appspot.com/subscribe")
	v.SetDefault("youtube.websub.verify_token", "cricket_videos")
	v.SetDefault("youtube.websub.lease", "120h")
	v.SetDefault("youtube.websub.callback_url", "")

	v.SetDefault("scraper.sites", []string{"ipl", "bcci"})
	v.SetDefault("scraper.user_agent", "")
	v.SetDefault("scraper.request_timeout", "30s")
	v.SetDefault("scraper.delay", "0s")

	v.SetDefault("classifier.strategy", lexicon.StrategyPairing)
	v.SetDefault("classifier.strict_board_highlights", true)

	v.SetDefault("catalog.prefix", "static/data")
	v.SetDefault("catalog.classic_cutoff_year", 2010)

	v.SetDefault("schedule.cron", "@every 6h")
	v.SetDefault("schedule.run_on_start", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.json", false)
}

func defaultChannels() []map[string]string {
	return []map[string]string{
		{"id": classify.ChannelCricketAustralia, "name": "Cricket Australia"},
		{"id": classify.ChannelEngland, "name": "England & Wales Cricket Board"},
		{"id": classify.ChannelPakistan, "name": "Pakistan Cricket"},
		{"id": classify.ChannelWestIndies, "name": "Windies Cricket"},
		{"id": classify.ChannelSriLanka, "name": "Sri Lanka Cricket"},
		{"id": classify.ChannelPSL, "name": "Pakistan Super League"},
	}
}

// LoadConfig reads config.yaml from the working directory or ./config.
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load reads configuration from file, or from config.yaml in the search
// paths when file is empty. A missing config file is not an error:
// defaults and environment variables still apply.
func Load(file string, paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if len(paths) == 0 {
			paths = []string{".", "./config"}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.YouTube.APIKeys = appendLegacyKeys(cfg.YouTube.APIKeys)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func appendLegacyKeys(keys []string) []string {
	for _, name := range legacyKeyVars {
		if k := strings.TrimSpace(os.Getenv(name)); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendS3:
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket is required for the s3 backend")
		}
	case storage.BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for the postgres backend")
		}
	case storage.BackendSQLite, storage.BackendFile, storage.BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Classifier.Strategy {
	case lexicon.StrategyPairing, lexicon.StrategySubstring:
	default:
		return fmt.Errorf("unknown classifier strategy %q", c.Classifier.Strategy)
	}

	for _, site := range c.Scraper.Sites {
		switch strings.ToLower(site) {
		case "ipl", "bcci":
		default:
			return fmt.Errorf("unknown scraper site %q", site)
		}
	}

	for _, o := range c.Classifier.Sources {
		if o.Source == "" {
			return errors.New("classifier source override has no source")
		}
	}

	for _, ch := range c.YouTube.Channels {
		if ch.ID == "" {
			return fmt.Errorf("youtube channel %q has no id", ch.Name)
		}
	}
	return nil
}

// ClassifierPolicy builds the classification policy. Configured source
// rules override the built-in ones per source.
func (c *Config) ClassifierPolicy() classify.Policy {
	policy := classify.DefaultPolicy()
	policy.Extractor = lexicon.NewExtractor(c.Classifier.Strategy, lexicon.Default())
	policy.StrictBoardHighlights = c.Classifier.StrictBoardHighlights
	policy.ClassicCutoffYear = c.Catalog.ClassicCutoffYear
	for _, o := range c.Classifier.Sources {
		policy.Sources[o.Source] = o.Rule
	}
	return policy
}

// MonitoredChannels maps channel id to display name.
func (c *Config) MonitoredChannels() map[string]string {
	out := make(map[string]string, len(c.YouTube.Channels))
	for _, ch := range c.YouTube.Channels {
		out[ch.ID] = ch.Name
	}
	return out
}
