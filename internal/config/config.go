package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for our application
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Availability AvailabilityConfig `mapstructure:"availability"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	HTTPPort int    `mapstructure:"http_port"`
	Host     string `mapstructure:"host"`
	URL      string `mapstructure:"url"`
}

type DatabaseConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	Name              string `mapstructure:"name"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	SSLMode           string `mapstructure:"ssl_mode"`
	MaxConnections    int    `mapstructure:"max_connections"`
	ConnectionTimeout int    `mapstructure:"connection_timeout"`
	Migrate           bool   `mapstructure:"migrate"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AvailabilityConfig tunes how availability requests are answered.
//
// PrecompiledQuery names the stored function used for time extents; empty
// disables that strategy. Encodings lists the response formats each
// observation type can be encoded in and replaces the built-in registry
// when set.
type AvailabilityConfig struct {
	PrecompiledQuery  string           `mapstructure:"precompiled_query"`
	FeatureServiceURL string           `mapstructure:"feature_service_url"`
	FeatureCacheSize  int              `mapstructure:"feature_cache_size"`
	FeatureTimeout    time.Duration    `mapstructure:"feature_timeout"`
	CacheRefresh      string           `mapstructure:"cache_refresh"`
	Encodings         []EncodingConfig `mapstructure:"encodings"`
}

// EncodingConfig is kept as a list entry because observation type URIs
// contain the dots viper uses as key separators.
type EncodingConfig struct {
	ObservationType string   `mapstructure:"observation_type"`
	ResponseFormats []string `mapstructure:"response_formats"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// DSN renders the database section as a lib/pq connection URL.
func (d DatabaseConfig) DSN() string {
	query := url.Values{}
	query.Set("sslmode", d.SSLMode)
	if d.ConnectionTimeout > 0 {
		query.Set("connect_timeout", fmt.Sprint(d.ConnectionTimeout))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// Load reads configuration from file and environment variables.
//
// ${VAR} references in the file are expanded first. Any key can then be
// overridden by AVAILABILITY_<SECTION>_<KEY>, e.g.
// AVAILABILITY_DATABASE_HOST.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// First unmarshal into a map to reject malformed YAML before expansion
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw config: %w", err)
	}

	// Convert the map to YAML again
	data, err = yaml.Marshal(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raw config: %w", err)
	}

	// Expand environment variables
	expandedData := os.ExpandEnv(string(data))

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("availability")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadConfig(bytes.NewBufferString(expandedData)); err != nil {
		return nil, fmt.Errorf("failed to read expanded config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 50051)
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.url", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "availability")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.connection_timeout", 5)
	v.SetDefault("database.migrate", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("availability.precompiled_query", "series_time_extrema")
	v.SetDefault("availability.feature_service_url", "")
	v.SetDefault("availability.feature_cache_size", 1024)
	v.SetDefault("availability.feature_timeout", "5s")
	v.SetDefault("availability.cache_refresh", "*/5 * * * *")

	v.SetDefault("rate_limit.rps", 100)
	v.SetDefault("rate_limit.burst", 200)
}
