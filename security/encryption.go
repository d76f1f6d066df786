// Package security 负责供应商密钥的加解密。
// 密文布局: salt(32) | iv(16) | authTag(16) | ciphertext，整体 base64 编码。
// 每条密文使用独立随机盐经 scrypt 派生数据密钥，主密钥泄露前提下也无法批量预计算
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	saltLength    = 32
	ivLength      = 16
	authTagLength = 16
	keyLength     = 32

	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

var ErrInvalidMasterKey = errors.New("invalid encryption key, must be 64 hex characters (32 bytes)")

// Default 进程级加密服务单例，由 Init 设置
var Default *EncryptionService

func Init(masterKeyHex string) error {
	svc, err := NewEncryptionService(masterKeyHex)
	if err != nil {
		return err
	}
	Default = svc
	return nil
}

type EncryptionService struct {
	masterKey []byte
}

func NewEncryptionService(masterKeyHex string) (*EncryptionService, error) {
	if len(masterKeyHex) != 64 {
		return nil, ErrInvalidMasterKey
	}
	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, ErrInvalidMasterKey
	}
	return &EncryptionService{masterKey: masterKey}, nil
}

func (s *EncryptionService) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	gcm, err := s.newGCM(salt)
	if err != nil {
		return "", err
	}

	// Seal 返回 ciphertext|tag，存储布局需要 tag 在前
	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-authTagLength]
	authTag := sealed[len(sealed)-authTagLength:]

	out := make([]byte, 0, saltLength+ivLength+authTagLength+len(ciphertext))
	out = append(out, salt...)
	out = append(out, iv...)
	out = append(out, authTag...)
	out = append(out, ciphertext...)

	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *EncryptionService) Decrypt(encrypted string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("invalid encrypted payload: %v", err)
	}
	if len(data) < saltLength+ivLength+authTagLength {
		return "", errors.New("encrypted payload too short")
	}

	salt := data[:saltLength]
	iv := data[saltLength : saltLength+ivLength]
	authTag := data[saltLength+ivLength : saltLength+ivLength+authTagLength]
	ciphertext := data[saltLength+ivLength+authTagLength:]

	gcm, err := s.newGCM(salt)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ciphertext)+authTagLength)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %v", err)
	}
	return string(plaintext), nil
}

// KeyHint 返回脱敏后的密钥片段，用于控制台展示
func (s *EncryptionService) KeyHint(encrypted string) string {
	decrypted, err := s.Decrypt(encrypted)
	if err != nil {
		return "****"
	}
	if len(decrypted) <= 8 {
		return strings.Repeat("*", len(decrypted))
	}
	return decrypted[:4] + "****" + decrypted[len(decrypted)-4:]
}

func (s *EncryptionService) newGCM(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(s.masterKey, salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, ivLength)
}

// GenerateMasterKey 生成新的主密钥（64位十六进制）
func GenerateMasterKey() (string, error) {
	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
