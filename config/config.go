package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Desk      DeskConfig      `yaml:"desk"`
	Logging   LoggingConfig   `yaml:"logging"`
	Feeds     FeedsConfig     `yaml:"feeds"`
	Products  []ProductConfig `yaml:"products"`
	Algo      AlgoConfig      `yaml:"algo"`
	Ledgers   LedgersConfig   `yaml:"ledgers"`
	Storage   StorageConfig   `yaml:"storage"`
	Publisher PublisherConfig `yaml:"publisher"`
}

type DeskConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Duration decodes yaml values like "5s" or raw nanosecond integers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	Output        string `yaml:"output"`
	MaxAge        int    `yaml:"max_age"`
	Region        string `yaml:"region"`
	Namespace     string `yaml:"namespace"`
	DashboardName string `yaml:"dashboard_name"`
	CloudWatch    bool   `yaml:"cloudwatch"`
}

type FeedsConfig struct {
	Dir         string `yaml:"dir"`
	Prices      string `yaml:"prices"`
	Trades      string `yaml:"trades"`
	MarketData  string `yaml:"marketdata"`
	Inquiries   string `yaml:"inquiries"`
	BookDepth   int    `yaml:"book_depth"`
	PriceTicks  int    `yaml:"price_ticks"`
	TradeCount  int    `yaml:"trade_count"`
	BookUpdates int    `yaml:"book_updates"`
	Inquiry     int    `yaml:"inquiry_count"`
}

// ProductConfig extends the built-in treasury table from configuration.
type ProductConfig struct {
	CUSIP    string  `yaml:"cusip"`
	Coupon   float64 `yaml:"coupon"`
	Maturity string  `yaml:"maturity"`
	PV01     float64 `yaml:"pv01"`
}

type AlgoConfig struct {
	CrossingThreshold float64 `yaml:"crossing_threshold"`
	BaseQuoteSize     int64   `yaml:"base_quote_size"`
}

type LedgersConfig struct {
	OutputDir     string   `yaml:"output_dir"`
	FlushInterval Duration `yaml:"flush_interval"`
	BufferSize    int      `yaml:"buffer_size"`
}

type StorageConfig struct {
	S3    S3Config    `yaml:"s3"`
	Kafka KafkaConfig `yaml:"kafka"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type PublisherConfig struct {
	Enabled          bool     `yaml:"enabled"`
	ThrottleInterval Duration `yaml:"throttle_interval"`
	OutputFile       string   `yaml:"output_file"`
	ListenAddr       string   `yaml:"listen_addr"`
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv substitutes ${VAR} references with environment values. Unset
// variables expand to the empty string.
func expandEnv(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envVarPattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Feeds: FeedsConfig{
			BookDepth:   10,
			PriceTicks:  1_000,
			TradeCount:  60,
			BookUpdates: 1_000,
			Inquiry:     60,
		},
		Algo: AlgoConfig{
			CrossingThreshold: 1.0 / 128.0,
			BaseQuoteSize:     1_000_000,
		},
		Ledgers: LedgersConfig{
			FlushInterval: Duration(5 * time.Second),
			BufferSize:    1024,
		},
		Publisher: PublisherConfig{
			ThrottleInterval: Duration(time.Second),
		},
	}
	if err := yaml.Unmarshal(expandEnv(data), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override S3 settings from environment variables if available
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}

	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Desk.Name == "" {
		return fmt.Errorf("desk.name is required")
	}
	if cfg.Desk.Version == "" {
		return fmt.Errorf("desk.version is required")
	}

	if cfg.Feeds.BookDepth <= 0 {
		return fmt.Errorf("feeds.book_depth must be greater than 0")
	}

	if cfg.Algo.CrossingThreshold <= 0 {
		return fmt.Errorf("algo.crossing_threshold must be greater than 0")
	}
	if cfg.Algo.BaseQuoteSize <= 0 {
		return fmt.Errorf("algo.base_quote_size must be greater than 0")
	}

	if cfg.Ledgers.OutputDir == "" {
		return fmt.Errorf("ledgers.output_dir is required")
	}
	if cfg.Ledgers.FlushInterval <= 0 {
		return fmt.Errorf("ledgers.flush_interval must be greater than 0")
	}
	if cfg.Ledgers.BufferSize <= 0 {
		return fmt.Errorf("ledgers.buffer_size must be greater than 0")
	}

	for i, p := range cfg.Products {
		if p.CUSIP == "" {
			return fmt.Errorf("products[%d].cusip is required", i)
		}
		if p.PV01 <= 0 {
			return fmt.Errorf("products[%d].pv01 must be greater than 0", i)
		}
		if _, err := time.Parse("2006-01-02", p.Maturity); err != nil {
			return fmt.Errorf("products[%d].maturity '%s' is not a valid date: %w", i, p.Maturity, err)
		}
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if cfg.Storage.S3.AccessKeyID == "" || cfg.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("storage.s3.access_key_id and storage.s3.secret_access_key are required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	if cfg.Storage.Kafka.Enabled {
		if len(cfg.Storage.Kafka.Brokers) == 0 {
			return fmt.Errorf("storage.kafka.brokers is required when Kafka is enabled")
		}
		if cfg.Storage.Kafka.Topic == "" {
			return fmt.Errorf("storage.kafka.topic is required when Kafka is enabled")
		}
	}

	if cfg.Publisher.Enabled {
		if cfg.Publisher.ThrottleInterval <= 0 {
			return fmt.Errorf("publisher.throttle_interval must be greater than 0")
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
