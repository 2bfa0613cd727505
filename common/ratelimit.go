package common

import (
	"time"

	"golang.org/x/time/rate"
)

// NewRateLimit 创建限频器：每 interval 允许 actions 次请求，突发为 1
//
// interval 或 actions 不大于 0 时返回不限频的限频器。
func NewRateLimit(interval time.Duration, actions int) *rate.Limiter {
	if interval <= 0 || actions <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	rps := float64(actions) / interval.Seconds()
	return rate.NewLimiter(rate.Limit(rps), 1)
}
