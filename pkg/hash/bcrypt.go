// Package hash 封装门户用户密码的 bcrypt 哈希与校验。
package hash

import "golang.org/x/crypto/bcrypt"

// HashPassword 用 bcrypt 默认成本哈希明文密码，返回可直接入库的字符串。
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash 校验明文密码与存储的哈希是否匹配。
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
