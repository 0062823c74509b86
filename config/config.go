package config

import (
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/slothpixel/sloth/internal/cache"
	"github.com/slothpixel/sloth/internal/db"
	"github.com/slothpixel/sloth/internal/util/slothlog"
)

var logger = slothlog.SubLogger("config")

type Duration time.Duration

type Config struct {
	ListenPort      int      `json:"listen_port" split_words:"true"`
	AllowedOrigins  []string `json:"allowed_origins" split_words:"true"`
	ShutdownTimeout Duration `json:"shutdown_timeout" split_words:"true"`
	ReadTimeout     Duration `json:"read_timeout" split_words:"true"`
	WriteTimeout    Duration `json:"write_timeout" split_words:"true"`

	// Upper bound for a single GraphQL request, adapter calls included.
	QueryTimeout    Duration `json:"query_timeout" split_words:"true"`
	ComplexityLimit int      `json:"complexity_limit" split_words:"true"`

	// Empty means the template compiled into the binary.
	SchemaTemplate string `json:"schema_template" split_words:"true"`

	Logs slothlog.LogConfig `json:"logs"`

	Postgres db.Config    `json:"postgres"`
	Redis    cache.Config `json:"redis"`

	Hypixel struct {
		BaseURL     string   `json:"base_url" split_words:"true"`
		APIKey      string   `json:"api_key" envconfig:"API_KEY"`
		ReadTimeout Duration `json:"read_timeout" split_words:"true"`
	} `json:"hypixel"`

	Mojang struct {
		BaseURL string `json:"base_url" split_words:"true"`
	} `json:"mojang"`

	CacheLifetime struct {
		Jobs     Duration `json:"jobs" split_words:"true"`
		UUIDs    Duration `json:"uuids" envconfig:"UUIDS"`
		Profiles Duration `json:"profiles" split_words:"true"`
	} `json:"cache_lifetime" split_words:"true"`
}

func IntWithDefault(v int, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func (d Duration) WithDefault(def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case string:
		v, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(v)
	default:
		return errors.New("duration not a string")
	}
	return nil
}

// Decode is called by envconfig.
func (d *Duration) Decode(value string) error {
	v, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func MustLoadConfigFile(path string) *Config {
	f, err := os.Open(path)
	if err != nil {
		logger.FatalE(err, "Exit on configuration file unavailable")
	}
	defer f.Close()

	dec := json.NewDecoder(f)

	// prevent config not used due typos
	dec.DisallowUnknownFields()

	var c Config
	if err := dec.Decode(&c); err != nil {
		logger.FatalE(err, "Exit on malformed configuration")
	}
	return &c
}

func setDefaults(c *Config) {
	if c.ListenPort == 0 {
		c.ListenPort = 5000
		logger.InfoF("Default HTTP server listen port to %d", c.ListenPort)
	}
	if c.ComplexityLimit == 0 {
		c.ComplexityLimit = 500
	}
	if c.Postgres.MaxOpenConns == 0 {
		c.Postgres.MaxOpenConns = 20
		logger.InfoF("Default Postgres.MaxOpenConns: %d", c.Postgres.MaxOpenConns)
	}
	if c.Redis.Addr == "" {
		logger.Warn("No Redis address, the cache is kept in process memory")
	}
}

func setDefaultUrls(c *Config) {
	if c.Hypixel.BaseURL == "" {
		c.Hypixel.BaseURL = "https://api.hypixel.net"
		logger.InfoF("Default Hypixel API URL to %q", c.Hypixel.BaseURL)
	} else {
		logger.InfoF("Hypixel API URL is set to %q", c.Hypixel.BaseURL)
	}
	if _, err := url.Parse(c.Hypixel.BaseURL); err != nil {
		logger.FatalE(err, "Exit on malformed Hypixel API URL")
	}

	if c.Mojang.BaseURL == "" {
		c.Mojang.BaseURL = "https://api.mojang.com"
		logger.InfoF("Default Mojang API URL to %q", c.Mojang.BaseURL)
	}
	if _, err := url.Parse(c.Mojang.BaseURL); err != nil {
		logger.FatalE(err, "Exit on malformed Mojang API URL")
	}
}

func ReadConfigFrom(filename string) Config {
	var ret Config
	if filename != "" {
		ret = *MustLoadConfigFile(filename)
	}

	// A missing .env is the normal case in production.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnF("Ignoring unreadable .env: %v", err)
	}

	// override config with env variables
	err := envconfig.Process("sloth", &ret)
	if err != nil {
		logger.FatalE(err, "Failed to process config environment variables")
	}

	setDefaults(&ret)
	setDefaultUrls(&ret)
	return ret
}

func ReadConfig() Config {
	switch len(os.Args) {
	case 1:
		return ReadConfigFrom("")
	case 2:
		return ReadConfigFrom(os.Args[1])
	default:
		logger.Fatal("One optional configuration file argument only-no flags")
		return Config{}
	}
}
