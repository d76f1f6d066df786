package security

import (
	"testing"

	"vanta-agent-backend/config"
)

func TestBridgeToken_RoundTrip(t *testing.T) {
	config.Cfg = &config.Config{JWT: config.JWTConfig{SecretKey: "test-secret"}}
	t.Cleanup(func() { config.Cfg = nil })

	token, err := GenerateBridgeToken(42, "session-1")
	if err != nil {
		t.Fatalf("GenerateBridgeToken: %v", err)
	}

	claims, err := ParseBridgeToken(token)
	if err != nil {
		t.Fatalf("ParseBridgeToken: %v", err)
	}
	if claims.ExecutionID != 42 || claims.SessionID != "session-1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestBridgeToken_WrongSecretRejected(t *testing.T) {
	config.Cfg = &config.Config{JWT: config.JWTConfig{SecretKey: "secret-a"}}
	t.Cleanup(func() { config.Cfg = nil })

	token, err := GenerateBridgeToken(1, "s")
	if err != nil {
		t.Fatalf("GenerateBridgeToken: %v", err)
	}

	config.Cfg.JWT.SecretKey = "secret-b"
	if _, err := ParseBridgeToken(token); err == nil {
		t.Error("token signed with different secret accepted")
	}
}

func TestBridgeToken_GarbageRejected(t *testing.T) {
	config.Cfg = &config.Config{JWT: config.JWTConfig{SecretKey: "s"}}
	t.Cleanup(func() { config.Cfg = nil })

	if _, err := ParseBridgeToken("not.a.token"); err == nil {
		t.Error("malformed token accepted")
	}
}
