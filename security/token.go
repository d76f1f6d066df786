package security

import (
	"time"

	"vanta-agent-backend/config"

	"github.com/golang-jwt/jwt/v5"
)

// 桥接令牌有效期。客户端必须在此窗口内回报委托执行结果
const bridgeTokenTTL = 15 * time.Minute

// BridgeClaims 客户端委托执行的回报凭证，绑定到具体的执行记录与会话
type BridgeClaims struct {
	ExecutionID uint   `json:"execution_id"`
	SessionID   string `json:"session_id"`
	jwt.RegisteredClaims
}

func GenerateBridgeToken(executionID uint, sessionID string) (string, error) {
	claims := BridgeClaims{
		ExecutionID: executionID,
		SessionID:   sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(bridgeTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secretKey := []byte(config.Cfg.JWT.SecretKey)
	return token.SignedString(secretKey)
}

func ParseBridgeToken(tokenString string) (*BridgeClaims, error) {
	claims := &BridgeClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
