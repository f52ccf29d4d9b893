// Package config loads the YAML configuration for the smc command.
package config

import (
	"encoding/json"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/MLEngineer1/smc-cash-cow/internal/cache"
	"github.com/MLEngineer1/smc-cash-cow/internal/indicator"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
	"github.com/MLEngineer1/smc-cash-cow/pkg/marketdata/provider"
)

// PolygonAPIKeyEnv overrides polygon.api_key when set.
const PolygonAPIKeyEnv = "POLYGON_API_KEY"

type Config struct {
	LogLevel string              `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Vendor   provider.VendorType `yaml:"vendor" json:"vendor" validate:"oneof=yahoo polygon" jsonschema:"title=Vendor,description=Data vendor for XAUUSD EURUSD and SPY,enum=yahoo,enum=polygon,default=yahoo"`
	Binance  BinanceConfig       `yaml:"binance" json:"binance"`
	Yahoo    YahooConfig         `yaml:"yahoo" json:"yahoo"`
	Polygon  PolygonConfig       `yaml:"polygon" json:"polygon"`
	Cache    CacheConfig         `yaml:"cache" json:"cache"`
	Analysis AnalysisConfig      `yaml:"analysis" json:"analysis"`
	Server   ServerConfig        `yaml:"server" json:"server"`
	Watch    WatchConfig         `yaml:"watch" json:"watch"`
}

type BinanceConfig struct {
	BaseURL string        `yaml:"base_url" json:"base_url" validate:"omitempty,url" jsonschema:"title=Base URL,description=Override the Binance REST endpoint"`
	Limit   int           `yaml:"limit" json:"limit" validate:"min=1,max=1000" jsonschema:"title=Limit,description=Klines per request,minimum=1,maximum=1000,default=1000"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0" jsonschema:"title=Timeout,default=15s"`
}

type YahooConfig struct {
	BaseURL string        `yaml:"base_url" json:"base_url" validate:"omitempty,url" jsonschema:"title=Base URL"`
	Range   string        `yaml:"range" json:"range" validate:"required" jsonschema:"title=Range,description=History window requested from the chart API,default=60d"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0" jsonschema:"title=Timeout,default=30s"`
}

type PolygonConfig struct {
	APIKey   string        `yaml:"api_key" json:"api_key" jsonschema:"title=API Key,description=Required when vendor is polygon. POLYGON_API_KEY takes precedence"`
	Lookback time.Duration `yaml:"lookback" json:"lookback" validate:"gt=0" jsonschema:"title=Lookback,default=1440h"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0" jsonschema:"title=Timeout,default=30s"`
}

type CacheConfig struct {
	Backend       cache.Backend `yaml:"backend" json:"backend" validate:"oneof=none memory redis" jsonschema:"title=Backend,enum=none,enum=memory,enum=redis,default=memory"`
	TTL           time.Duration `yaml:"ttl" json:"ttl" validate:"gte=0" jsonschema:"title=TTL,default=5m"`
	RedisAddr     string        `yaml:"redis_addr" json:"redis_addr" validate:"required_if=Backend redis" jsonschema:"title=Redis Address"`
	RedisPassword string        `yaml:"redis_password" json:"redis_password" jsonschema:"title=Redis Password"`
	RedisDB       int           `yaml:"redis_db" json:"redis_db" validate:"gte=0" jsonschema:"title=Redis DB"`
}

type AnalysisConfig struct {
	RSIPeriod int     `yaml:"rsi_period" json:"rsi_period" validate:"min=1" jsonschema:"title=RSI Period,minimum=1,default=14"`
	BBPeriod  int     `yaml:"bb_period" json:"bb_period" validate:"min=1" jsonschema:"title=Bollinger Period,minimum=1,default=20"`
	BBStdDev  float64 `yaml:"bb_std_dev" json:"bb_std_dev" validate:"gt=0" jsonschema:"title=Bollinger Standard Deviations,default=2"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr" validate:"required" jsonschema:"title=Listen Address,default=:8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" validate:"gt=0" jsonschema:"title=Read Timeout,default=10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" validate:"gt=0" jsonschema:"title=Write Timeout,default=60s"`
}

type WatchConfig struct {
	Schedule   string      `yaml:"schedule" json:"schedule" validate:"required" jsonschema:"title=Schedule,description=Standard five-field cron expression,default=*/15 * * * *"`
	Selections []Selection `yaml:"selections" json:"selections" validate:"dive" jsonschema:"title=Selections"`
}

// Selection is one (market, timeframe) pair.
type Selection struct {
	Market    string `yaml:"market" json:"market" validate:"required" jsonschema:"title=Market,description=Identifier or display name"`
	Timeframe string `yaml:"timeframe" json:"timeframe" validate:"required" jsonschema:"title=Timeframe,enum=15m,enum=30m,enum=1h,enum=4h,enum=1d,enum=1w"`
}

// Parse resolves the selection into typed values.
func (s Selection) Parse() (types.Market, types.Timeframe, error) {
	market, err := types.ParseMarket(s.Market)
	if err != nil {
		return "", "", err
	}

	timeframe, err := types.ParseTimeframe(s.Timeframe)
	if err != nil {
		return "", "", err
	}

	return market, timeframe, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Vendor:   provider.VendorYahoo,
		Binance: BinanceConfig{
			BaseURL: "",
			Limit:   provider.DefaultBinanceLimit,
			Timeout: provider.DefaultBinanceTimeout,
		},
		Yahoo: YahooConfig{
			BaseURL: "",
			Range:   provider.DefaultYahooRange,
			Timeout: provider.DefaultYahooTimeout,
		},
		Polygon: PolygonConfig{
			APIKey:   "",
			Lookback: provider.DefaultPolygonLookback,
			Timeout:  provider.DefaultPolygonTimeout,
		},
		Cache: CacheConfig{
			Backend:       cache.BackendMemory,
			TTL:           5 * time.Minute,
			RedisAddr:     "",
			RedisPassword: "",
			RedisDB:       0,
		},
		Analysis: AnalysisConfig{
			RSIPeriod: indicator.DefaultRSIPeriod,
			BBPeriod:  indicator.DefaultBollingerPeriod,
			BBStdDev:  indicator.DefaultBollingerStdDev,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Watch: WatchConfig{
			Schedule: "*/15 * * * *",
			Selections: []Selection{
				{Market: string(types.MarketBitcoin), Timeframe: string(types.TimeframeOneHour)},
			},
		},
	}
}

// Load reads path on top of Default. An empty path returns Default with
// environment overrides applied.
func Load(path string) (Config, error) {
	if path == "" {
		return Parse(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return Parse(data)
}

// Parse decodes YAML on top of Default, applies environment overrides and validates.
func Parse(data []byte) (Config, error) {
	config := Default()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
		}
	}

	if key := os.Getenv(PolygonAPIKeyEnv); key != "" {
		config.Polygon.APIKey = key
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if c.Vendor == provider.VendorPolygon && c.Polygon.APIKey == "" {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"polygon vendor requires polygon.api_key or %s", PolygonAPIKeyEnv)
	}

	if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid watch schedule %q", c.Watch.Schedule)
	}

	for i, selection := range c.Watch.Selections {
		if _, _, err := selection.Parse(); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid watch selection %d", i)
		}
	}

	return nil
}

// BinanceAdapterConfig converts to the adapter configuration.
func (c *Config) BinanceAdapterConfig() provider.BinanceConfig {
	return provider.BinanceConfig{
		BaseURL: c.Binance.BaseURL,
		Limit:   c.Binance.Limit,
		Timeout: c.Binance.Timeout,
	}
}

// YahooAdapterConfig converts to the adapter configuration.
func (c *Config) YahooAdapterConfig() provider.YahooConfig {
	return provider.YahooConfig{
		BaseURL: c.Yahoo.BaseURL,
		Range:   c.Yahoo.Range,
		Timeout: c.Yahoo.Timeout,
	}
}

// PolygonAdapterConfig converts to the adapter configuration.
func (c *Config) PolygonAdapterConfig() provider.PolygonConfig {
	return provider.PolygonConfig{
		APIKey:   c.Polygon.APIKey,
		Lookback: c.Polygon.Lookback,
		Timeout:  c.Polygon.Timeout,
	}
}

// GenerateSchema generates a JSON schema for Config
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(time.Duration(0)) {
				return &jsonschema.Schema{
					Type:        "string",
					Description: "Go duration such as 15s or 5m",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "smc-config"
	schema.Description = "Configuration schema for the smc order block scanner"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for Config
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
