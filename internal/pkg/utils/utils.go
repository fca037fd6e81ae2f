package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateRequestID 生成请求 ID
func GenerateRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:24]
}

// MaskAPIKey 遮蔽 API Key
func MaskAPIKey(key string) string {
	if len(key) <= 12 {
		return "****"
	}
	return key[:8] + "..." + key[len(key)-4:]
}

// DefaultString 返回 s，为空时返回 fallback
func DefaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
