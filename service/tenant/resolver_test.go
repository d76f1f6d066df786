package tenant

import (
	"context"
	"encoding/json"
	"testing"

	"vanta-agent-backend/cache"
	"vanta-agent-backend/dao"
	"vanta-agent-backend/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func withCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.Client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Client = nil })
	return mr
}

func seedCachedAgent(t *testing.T, mr *miniredis.Miniredis, agent *model.Agent) {
	t.Helper()
	data, err := json.Marshal(agent)
	if err != nil {
		t.Fatalf("marshal agent: %v", err)
	}
	if err := mr.Set(cache.AgentKey(agent.ID), string(data)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
}

func activeAgent(domains ...string) *model.Agent {
	return &model.Agent{
		ID:             "agent-1",
		WorkspaceID:    "ws-1",
		IsActive:       true,
		AllowedDomains: domains,
		Workspace:      &model.Workspace{ID: "ws-1", Status: model.WorkspaceStatusActive},
	}
}

func TestResolve_ValidAgentFromCache(t *testing.T) {
	mr := withCache(t)
	seedCachedAgent(t, mr, activeAgent())

	result := Resolve(context.Background(), "agent-1", "https://example.com")
	if !result.IsValid {
		t.Fatalf("result = %+v", result)
	}
	if result.WorkspaceID != "ws-1" {
		t.Errorf("WorkspaceID = %q", result.WorkspaceID)
	}
}

func TestResolve_InactiveAgent(t *testing.T) {
	mr := withCache(t)
	agent := activeAgent()
	agent.IsActive = false
	seedCachedAgent(t, mr, agent)

	result := Resolve(context.Background(), "agent-1", "")
	if result.IsValid || result.Error != ErrAgentInactive {
		t.Errorf("result = %+v", result)
	}
}

func TestResolve_SuspendedWorkspace(t *testing.T) {
	mr := withCache(t)
	agent := activeAgent()
	agent.Workspace.Status = model.WorkspaceStatusSuspended
	seedCachedAgent(t, mr, agent)

	result := Resolve(context.Background(), "agent-1", "")
	if result.IsValid || result.Error != ErrWorkspaceInactive {
		t.Errorf("result = %+v", result)
	}
}

func TestResolve_OriginAllowlist(t *testing.T) {
	tests := []struct {
		name    string
		domains []string
		origin  string
		allowed bool
	}{
		{"exact match", []string{"example.com"}, "https://example.com", true},
		{"exact mismatch", []string{"example.com"}, "https://evil.com", false},
		{"wildcard subdomain", []string{"*.example.com"}, "https://app.example.com", true},
		{"wildcard apex", []string{"*.example.com"}, "https://example.com", true},
		{"wildcard suffix bypass", []string{"*.example.com"}, "https://evil-example.com", false},
		{"port ignored", []string{"localhost"}, "http://localhost:3000", true},
		{"empty allowlist admits all", nil, "https://anywhere.io", true},
		{"no origin skips check", []string{"example.com"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := withCache(t)
			seedCachedAgent(t, mr, activeAgent(tt.domains...))

			result := Resolve(context.Background(), "agent-1", tt.origin)
			if result.IsValid != tt.allowed {
				t.Errorf("IsValid = %v, want %v (%+v)", result.IsValid, tt.allowed, result)
			}
			if !tt.allowed && result.Error != ErrDomainNotAllowed {
				t.Errorf("Error = %q", result.Error)
			}
		})
	}
}

func TestResolve_AgentNotFound(t *testing.T) {
	withCache(t)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	dao.DB = gdb
	t.Cleanup(func() { dao.DB = nil })

	mock.ExpectQuery("SELECT (.+) FROM `agent`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	result := Resolve(context.Background(), "missing", "")
	if result.IsValid || result.Error != ErrAgentNotFound {
		t.Errorf("result = %+v", result)
	}
}

func TestResolve_CacheUnavailableFallsBack(t *testing.T) {
	// 缓存完全不可用时回源数据库而不是失败
	mr := withCache(t)
	mr.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	dao.DB = gdb
	t.Cleanup(func() { dao.DB = nil })

	mock.ExpectQuery("SELECT (.+) FROM `agent`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "is_active"}).
			AddRow("agent-1", "ws-1", true))
	mock.ExpectQuery("SELECT (.+) FROM `workspace`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow("ws-1", model.WorkspaceStatusActive))

	result := Resolve(context.Background(), "agent-1", "")
	if !result.IsValid {
		t.Errorf("result = %+v", result)
	}
}
