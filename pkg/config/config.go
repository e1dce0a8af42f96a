package config

import (
	"github.com/spf13/viper"
	"path"
	"os"
	"fmt"
	"github.com/mitchellh/go-homedir"
	"errors"
)

const DefaultHome = "~/.jsonrpcd"
const DefaultConfigFile = "jsonrpcd.toml"

const (
	FlagHome    = "home"
	FlagRPCPort = "rpc_port"
	FlagRPCPath = "rpc_path"
)

type Config struct {
	Home               string            `mapstructure:"home"`
	RPCPort            int               `mapstructure:"rpc_port"`
	RPCPath            string            `mapstructure:"rpc_path"`
	LogLevel           string            `mapstructure:"log_level"`
	EnablePrometheus   bool              `mapstructure:"enable_prometheus"`
	DetectOutputErrors bool              `mapstructure:"detect_output_errors"`
	BatchConcurrency   int               `mapstructure:"batch_concurrency"`
	AllowedHosts       []string          `mapstructure:"allowed_hosts"`
	BasicAuthUsers     map[string]string `mapstructure:"basic_auth_users"`
	LogAuditorConfig   *LogAuditorConfig `mapstructure:"log_auditor"`
	RedisConfig        *RedisConfig      `mapstructure:"redis"`
	ResultCacheConfig  *ResultCache      `mapstructure:"result_cache"`
}

type LogAuditorConfig struct {
	LogFile string `mapstructure:"log_file"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ResultCache struct {
	Methods    []string `mapstructure:"methods"`
	TTLSeconds int      `mapstructure:"ttl_seconds"`
}

func init() {
	home := mustExpand(DefaultHome)
	viper.SetDefault(FlagHome, home)
	viper.SetDefault(FlagRPCPort, 8080)
	viper.SetDefault(FlagRPCPath, "rpc")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("batch_concurrency", 1)
}

func ReadConfig(allowDefaults bool) (Config, error) {
	var cfg Config
	cfgFile := path.Join(viper.GetString(FlagHome), DefaultConfigFile)
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if allowDefaults {
			viper.Unmarshal(&cfg)
			return cfg, nil
		} else {
			return cfg, errors.New("config file not found")
		}
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return cfg, err
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	viper.Set(FlagHome, mustExpand(viper.GetString(FlagHome)))

	return cfg, nil
}

func ValidateConfig(cfg *Config) error {
	if cfg.RPCPort <= 0 || cfg.RPCPort > 65535 {
		return validationError(fmt.Sprintf("invalid rpc_port: %d", cfg.RPCPort))
	}

	if cfg.RPCPath == "" {
		return validationError("rpc_path must be defined")
	}

	if cfg.BatchConcurrency < 1 {
		return validationError("batch_concurrency must be at least 1")
	}

	for user, pass := range cfg.BasicAuthUsers {
		if user == "" || pass == "" {
			return validationError("basic auth users require a username and password")
		}
	}

	if cfg.ResultCacheConfig != nil {
		if len(cfg.ResultCacheConfig.Methods) == 0 {
			return validationError("result cache requires at least one method")
		}
		if cfg.ResultCacheConfig.TTLSeconds <= 0 {
			return validationError("result cache requires a positive ttl")
		}
	}

	if cfg.LogAuditorConfig != nil && cfg.LogAuditorConfig.LogFile == "" {
		return validationError("log auditor requires a log file")
	}

	return nil
}

func validationError(msg string) error {
	return errors.New(fmt.Sprintf("invalid config: %s", msg))
}

func mustExpand(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		fmt.Println("Failed to find home directory on this system. Exiting.")
		os.Exit(1)
	}

	return expanded
}
