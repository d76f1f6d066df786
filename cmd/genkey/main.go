package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"log/slog"

	"vanta-agent-backend/security"
)

// 生成部署所需的密钥材料：加密主密钥、JWT 密钥或工作区 API key
func main() {
	kind := flag.String("type", "master", "key type: master | jwt | api")
	flag.Parse()

	switch *kind {
	case "master":
		key, err := security.GenerateMasterKey()
		if err != nil {
			slog.Error("Error generating master key", "err", err)
			return
		}
		slog.Info("Generated encryption master key", "key", key)
	case "jwt", "api":
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			slog.Error("Error generating secret", "err", err)
			return
		}
		slog.Info("Generated secret", "type", *kind, "secret", base64.URLEncoding.EncodeToString(key))
	default:
		slog.Error("Unknown key type", "type", *kind)
	}
}
