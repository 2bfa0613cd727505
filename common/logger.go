package common

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger 创建交易所日志实例
//
// base 不为空时在其基础上追加 exchange 字段；否则 debug 模式输出到终端，
// 非 debug 模式丢弃日志。
func NewLogger(exchange string, debug bool, base *zerolog.Logger) zerolog.Logger {
	var logger zerolog.Logger
	switch {
	case base != nil:
		logger = *base
	case debug:
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	default:
		return zerolog.Nop()
	}
	return logger.With().Str("exchange", exchange).Logger()
}
