package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateHexKey 生成指定长度的十六进制随机串（密码学强度）
// 用于邮箱确认令牌等一次性凭证
func GenerateHexKey(length int) (string, error) {
	b := make([]byte, (length+1)/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b)[:length], nil
}
