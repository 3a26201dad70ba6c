package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/isrealsanci/wheel-app/logging"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment      string                 `mapstructure:"environment"`
	Spin             SpinConfig             `mapstructure:"spin"`
	Chain            ChainConfig            `mapstructure:"chain"`
	Storage          StorageConfig          `mapstructure:"storage"`
	Redis            RedisConfig            `mapstructure:"redis"`
	Logging          logging.Config         `mapstructure:"logging"`
	ExternalServices ExternalServicesConfig `mapstructure:"external_services"`
}

// SpinConfig holds entitlement and purchase constants
type SpinConfig struct {
	SpinsPerAsset  int    `mapstructure:"spins_per_asset"`
	PurchaseCredit int    `mapstructure:"purchase_credit"`
	PrizeTableFile string `mapstructure:"prize_table_file"`
}

// ChainConfig holds chain read and payment configuration
type ChainConfig struct {
	RPCURL           string        `mapstructure:"rpc_url"`
	NFTContract      string        `mapstructure:"nft_contract"`
	PaymentRecipient string        `mapstructure:"payment_recipient"`
	PurchasePriceETH string        `mapstructure:"purchase_price_eth"`
	ReceiptInterval  time.Duration `mapstructure:"receipt_interval"`
	ReceiptTimeout   time.Duration `mapstructure:"receipt_timeout"`
}

// StorageConfig holds the local entitlement store configuration
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // "sqlite" or "redis"
	Path    string `mapstructure:"path"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// ExternalServicesConfig holds external service configurations
type ExternalServicesConfig struct {
	SettlementService ServiceConfig `mapstructure:"settlement_service"`
	WinnersEnriched   ServiceConfig `mapstructure:"winners_enriched"`
	WinnersHistory    ServiceConfig `mapstructure:"winners_history"`
}

// ServiceConfig holds external service configuration
type ServiceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from YAML file using Viper
func Load(filename string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(filename)
	v.SetConfigType("yaml")

	// Enable environment variable substitution
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.setDefaults()

	return &config, nil
}

// LoadByEnv loads configuration based on environment using Viper
func LoadByEnv(configDir string) (*Config, error) {
	v := viper.New()

	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	env := viper.GetString("ENV")
	if env == "" {
		env = viper.GetString("APP_ENV")
	}
	if env == "" {
		env = "development"
	}

	v.SetConfigName(fmt.Sprintf("config-%s", env))
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.setDefaults()

	return &config, nil
}

// setDefaults sets default values for missing configuration
func (c *Config) setDefaults() {
	if c.Spin.SpinsPerAsset == 0 {
		c.Spin.SpinsPerAsset = 20
	}
	if c.Spin.PurchaseCredit == 0 {
		c.Spin.PurchaseCredit = 5
	}
	if c.Chain.PurchasePriceETH == "" {
		c.Chain.PurchasePriceETH = "0.00004"
	}
	if c.Chain.ReceiptInterval == 0 {
		c.Chain.ReceiptInterval = 2 * time.Second
	}
	if c.Chain.ReceiptTimeout == 0 {
		c.Chain.ReceiptTimeout = 2 * time.Minute
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "sqlite"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "spin-data.db"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.ExternalServices.SettlementService.Timeout == 0 {
		c.ExternalServices.SettlementService.Timeout = 10 * time.Second
	}
	if c.ExternalServices.WinnersEnriched.Timeout == 0 {
		c.ExternalServices.WinnersEnriched.Timeout = 10 * time.Second
	}
	if c.ExternalServices.WinnersHistory.Timeout == 0 {
		c.ExternalServices.WinnersHistory.Timeout = 10 * time.Second
	}
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return c.Addr
}

// IsDevelopment returns true if environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsProduction returns true if environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
