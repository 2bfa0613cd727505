package common

import (
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
)

// UUID16 返回 16 位十六进制随机串
func UUID16() string {
	id := uuid.Must(uuid.NewV4())
	return strings.ReplaceAll(id.String(), "-", "")[:16]
}

// GenerateClientOrderID 生成客户端订单ID，格式 ccxt-{exchange}-{16位hex}
func GenerateClientOrderID(exchange string) string {
	return fmt.Sprintf("ccxt-%s-%s", strings.ToLower(exchange), UUID16())
}

// GenerateAlnumClientOrderID 生成仅包含字母数字的客户端订单ID（OKX 不允许连字符）
func GenerateAlnumClientOrderID(exchange string) string {
	return "ccxt" + strings.ToLower(exchange) + UUID16()
}
