package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"TradeSignal/internal/domain/models"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
		CORSOrigins     []string      `yaml:"cors_origins"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
		// Inbound throttle per remote address (token bucket).
		RateLimit struct {
			Capacity     float64 `yaml:"capacity" default:"30"`
			RefillPerSec float64 `yaml:"refill_per_sec" default:"5"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	// Minimum spacing between two outbound calls to the same relay.
	RateLimit struct {
		MinInterval time.Duration `yaml:"min_interval" default:"1s"`
	} `yaml:"ratelimit"`
	Primary struct {
		Enabled bool          `yaml:"enabled" default:"true"`
		BaseURL string        `yaml:"base_url" default:"http://localhost:5000"`
		Path    string        `yaml:"path" default:"/api/signal"`
		Timeout time.Duration `yaml:"timeout" default:"20s"`
	} `yaml:"primary"`
	MarketData struct {
		ChartURL string         `yaml:"chart_url" default:"https://query1.finance.yahoo.com/v8/finance/chart/"`
		Relays   []models.Relay `yaml:"relays" validate:"dive"`
		Timeout  time.Duration  `yaml:"timeout" default:"15s"`
		CacheTTL time.Duration  `yaml:"cache_ttl" default:"60s"`
		// Sent on every relay and provider request.
		UserAgent string `yaml:"user_agent" default:"Mozilla/5.0 (compatible; TradeSignal/1.0)"`
	} `yaml:"marketdata"`
	Quotes struct {
		ForexURL     string         `yaml:"forex_url" default:"https://open.er-api.com/v6/latest/"`
		CryptoURL    string         `yaml:"crypto_url" default:"https://api.coingecko.com/api/v3/simple/price"`
		ForexRelays  []models.Relay `yaml:"forex_relays" validate:"dive"`
		CryptoRelays []models.Relay `yaml:"crypto_relays" validate:"dive"`
		Timeout      time.Duration  `yaml:"timeout" default:"10s"`
	} `yaml:"quotes"`
	Analysis struct {
		Window           int     `yaml:"window" default:"24" validate:"gte=2"`
		TradeZone        float64 `yaml:"trade_zone" default:"0.375" validate:"gt=0"`
		TargetZone       float64 `yaml:"target_zone" default:"0.875"`
		SyntheticPeriods int     `yaml:"synthetic_periods" default:"50" validate:"gte=1"`
		// Zero seeds the synthetic back-fill from the clock.
		Seed uint64 `yaml:"seed"`
	} `yaml:"analysis"`
	Scan struct {
		Enabled      bool          `yaml:"enabled" default:"false"`
		Cron         string        `yaml:"cron" default:"0 */4 * * *"`
		Workers      int           `yaml:"workers" default:"2" validate:"gte=1"`
		Timeframe    string        `yaml:"timeframe" default:"1d" validate:"oneof=1h 4h 1d"`
		AssetClasses []string      `yaml:"asset_classes" validate:"dive,oneof=forex crypto stocks indices"`
		Timeout      time.Duration `yaml:"timeout" default:"5m"`
	} `yaml:"scan"`
	Assets map[string][]string `yaml:"assets"`
	Cache  struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		SignalTTL time.Duration `yaml:"signal_ttl" default:"30s"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"trade-signals"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes over the defaults and validates the result.
// Defaults go first so an explicit false or zero in the file is kept.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.fillLists()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PRIMARY_BASE_URL"); v != "" {
		c.Primary.BaseURL = v
	}
	if v := getenv("PRIMARY_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PRIMARY_ENABLED: %w", err)
		}
		c.Primary.Enabled = b
	}
	if v := getenv("HTTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Analysis.TargetZone < c.Analysis.TradeZone {
		return fmt.Errorf("analysis.target_zone (%v) must not be below analysis.trade_zone (%v)",
			c.Analysis.TargetZone, c.Analysis.TradeZone)
	}
	return nil
}

func (c *Config) fillLists() {
	if len(c.MarketData.Relays) == 0 {
		c.MarketData.Relays = DefaultRelays()
	}
	if len(c.Quotes.ForexRelays) == 0 {
		c.Quotes.ForexRelays = []models.Relay{{Name: "direct"}}
	}
	if len(c.Quotes.CryptoRelays) == 0 {
		c.Quotes.CryptoRelays = DefaultRelays()
	}
	if len(c.Assets) == 0 {
		c.Assets = DefaultAssets()
	}
	if len(c.Scan.AssetClasses) == 0 {
		c.Scan.AssetClasses = []string{string(models.AssetForex), string(models.AssetCrypto)}
	}
}

// DefaultRelays is the relay order used when none is configured.
func DefaultRelays() []models.Relay {
	return []models.Relay{
		{Name: "allorigins", Prefix: "https://api.allorigins.win/raw?url=", Encode: true},
		{Name: "corsproxy", Prefix: "https://corsproxy.io/?", Encode: true},
		{Name: "codetabs", Prefix: "https://api.codetabs.com/v1/proxy?quest=", Encode: false},
	}
}

// DefaultAssets lists the instruments offered per asset class.
func DefaultAssets() map[string][]string {
	return map[string][]string{
		string(models.AssetForex): {
			"EURUSD=X", "GBPUSD=X", "USDJPY=X", "USDCHF=X", "USDCAD=X", "AUDUSD=X", "NZDUSD=X",
			"EURJPY=X", "GBPJPY=X", "EURGBP=X", "AUDCAD=X", "AUDJPY=X", "AUDNZD=X", "CADCHF=X",
			"CADJPY=X", "CHFJPY=X", "EURAUD=X", "EURCAD=X", "EURCHF=X", "EURNZD=X", "GBPAUD=X",
			"GBPCAD=X", "GBPCHF=X", "GBPNZD=X", "NZDCAD=X", "NZDJPY=X",
			"USDZAR=X", "USDMXN=X", "USDTRY=X", "USDSGD=X", "USDNOK=X", "USDSEK=X", "USDHKD=X",
		},
		string(models.AssetCrypto): {
			"BTC-USD", "ETH-USD", "BNB-USD", "XRP-USD", "ADA-USD", "SOL-USD", "DOGE-USD",
			"DOT-USD", "AVAX-USD", "MATIC-USD", "LINK-USD", "LTC-USD", "TRX-USD", "SHIB-USD",
		},
		string(models.AssetStocks): {
			"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA", "META", "NFLX",
			"JPM", "V", "PYPL", "DIS", "BABA", "BA",
		},
		string(models.AssetIndices): {
			"^GSPC", "^DJI", "^IXIC", "^RUT", "^VIX", "^FTSE", "^GDAXI",
			"^FCHI", "^N225", "^HSI", "^STOXX50E", "EURONEXT:^N100",
		},
	}
}
