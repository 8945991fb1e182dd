package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = bcrypt.DefaultCost

// Hasher 封装 bcrypt 密码哈希，work factor 可配置
type Hasher struct {
	cost int
}

// NewHasher creates a bcrypt hasher. Costs outside bcrypt's accepted range fall back to the default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Cost reports the work factor used for new hashes.
func (h *Hasher) Cost() int {
	if h == nil {
		return defaultBcryptCost
	}
	return h.cost
}

// Hash 对明文密码进行哈希处理
func (h *Hasher) Hash(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost())
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify 验证密码是否与存储的哈希值匹配；哈希格式错误时返回 false
func (h *Hasher) Verify(candidate, hash string) bool {
	if strings.TrimSpace(hash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
