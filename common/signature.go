package common

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// SignHMAC256 HMAC-SHA256，十六进制输出
func SignHMAC256(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignHMAC256Base64 HMAC-SHA256，base64 输出
func SignHMAC256Base64(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignHMAC512 HMAC-SHA512，十六进制输出
func SignHMAC512(message, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// HashSHA512 SHA512 摘要，十六进制输出
func HashSHA512(message []byte) string {
	sum := sha512.Sum512(message)
	return hex.EncodeToString(sum[:])
}

// Now 当前时间，测试中可替换
var Now = time.Now

// GetTimestamp 毫秒时间戳
func GetTimestamp() int64 {
	return Now().UnixMilli()
}

// GetTimestampSeconds 秒级时间戳
func GetTimestampSeconds() int64 {
	return Now().Unix()
}

// GetISO8601Timestamp ISO8601 毫秒时间，例如 2020-12-08T09:08:57.715Z
func GetISO8601Timestamp() string {
	return Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
