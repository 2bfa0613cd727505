package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lemconn/ccxt/option"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	configName = "ccxt"
	envPrefix  = "CCXT"
)

// config 命令行配置，优先级：命令行参数 > 环境变量 > 配置文件 > 默认值
type config struct {
	Exchange  string        `mapstructure:"exchange"`
	APIKey    string        `mapstructure:"api_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Password  string        `mapstructure:"password"`
	Sandbox   bool          `mapstructure:"sandbox"`
	Proxy     string        `mapstructure:"proxy"`
	BaseURL   string        `mapstructure:"base_url"`
	Debug     bool          `mapstructure:"debug"`
	HedgeMode bool          `mapstructure:"hedge_mode"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// flagKeys 命令行参数到配置项的映射
var flagKeys = map[string]string{
	"exchange":   "exchange",
	"api-key":    "api_key",
	"secret-key": "secret_key",
	"password":   "password",
	"sandbox":    "sandbox",
	"proxy":      "proxy",
	"base-url":   "base_url",
	"debug":      "debug",
	"hedge-mode": "hedge_mode",
	"timeout":    "timeout",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".ccxt"))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// Unmarshal 只读取已知配置项，环境变量需逐项绑定
	for _, key := range flagKeys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("exchange", "binance")
	v.SetDefault("timeout", 30*time.Second)
	return v
}

// loadConfig 读取配置文件与环境变量，再用显式设置的命令行参数覆盖
func loadConfig(c *cli.Context) (*config, error) {
	v := newViper()
	if path := c.String("config"); path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			v.Set(key, c.Value(flag))
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Exchange = strings.ToLower(strings.TrimSpace(cfg.Exchange))
	return &cfg, nil
}

// options 转换为交易所初始化选项
func (cfg *config) options(logger zerolog.Logger) []option.Option {
	opts := []option.Option{
		option.WithAPIKey(cfg.APIKey),
		option.WithSecretKey(cfg.SecretKey),
		option.WithPassword(cfg.Password),
		option.WithSandbox(cfg.Sandbox),
		option.WithProxy(cfg.Proxy),
		option.WithDebug(cfg.Debug),
		option.WithHedged(cfg.HedgeMode),
		option.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithTimeout(cfg.Timeout))
	}
	return opts
}
