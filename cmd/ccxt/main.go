// Command ccxt 交易所命令行工具
//
// 配置读取顺序：命令行参数、CCXT_* 环境变量、ccxt.yaml（当前目录或 $HOME/.ccxt）。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ccxt"
	app.Usage = "unified command line client for binance, okx, bybit and gate"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to the config file, defaults to ./ccxt.yaml or $HOME/.ccxt/ccxt.yaml",
		},
		&cli.StringFlag{
			Name:    "exchange",
			Aliases: []string{"e"},
			Usage:   "exchange name: binance, okx, bybit or gate",
		},
		&cli.StringFlag{
			Name:    "market",
			Aliases: []string{"m"},
			Value:   marketSpot,
			Usage:   "market type: spot or perp",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "API key",
		},
		&cli.StringFlag{
			Name:  "secret-key",
			Usage: "API secret",
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "API passphrase (okx)",
		},
		&cli.BoolFlag{
			Name:  "sandbox",
			Usage: "use the exchange testnet",
		},
		&cli.StringFlag{
			Name:  "proxy",
			Usage: "http, https or socks5 proxy url",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "override the REST base url",
		},
		&cli.BoolFlag{
			Name:  "hedge-mode",
			Usage: "the perp account uses hedge (dual side) position mode",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 30 * time.Second,
			Usage: "request timeout",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"v"},
			Usage:   "log requests and responses",
		},
	}
	app.Before = before
	app.Commands = []*cli.Command{
		exchangesCommand,
		marketsCommand,
		tickerCommand,
		tickersCommand,
		orderBookCommand,
		ohlcvCommand,
		tradesCommand,
		watchCommand,
		balanceCommand,
		orderCommand,
		positionsCommand,
		fundingCommand,
		leverageCommand,
		marginTypeCommand,
	}
	return app
}

// before 加载配置并初始化日志，结果存放在 App.Metadata 中
func before(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: c.App.ErrWriter, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Str("exchange", cfg.Exchange).Logger()

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaLogger] = logger
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp()
	app.ErrWriter = os.Stderr
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		logger.Error().Err(err).Msg("ccxt")
		stop()
		os.Exit(1)
	}
}
