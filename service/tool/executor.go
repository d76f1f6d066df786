// Package tool 执行 Agent 声明的工具：出站 HTTP 调用、
// 委托给客户端的动作、以及（本环境未实现的）沙箱代码
package tool

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vanta-agent-backend/model"
	"vanta-agent-backend/utils"

	"github.com/avast/retry-go/v4"
)

const defaultTimeoutMs = 30000

var (
	ErrToolNotFound          = errors.New("tool not found")
	ErrMissingEndpoint       = errors.New("REST API tool missing endpoint or method")
	ErrCustomCodeUnsupported = errors.New("custom code execution not implemented in this environment")
)

// Result 一次工具调用的结果
type Result struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Context 调用发生时的请求上下文，随客户端委托载荷透传
type Context struct {
	SessionID   string
	AgentID     string
	WorkspaceID string
	VisitorID   string
	Origin      string
}

// BridgePayload 客户端委托型工具的返回载荷。
// 服务端不代为执行，由嵌入端在访客设备上执行后回报结果；
// CLIENT_BRIDGE 声明即信任边界，声明为客户端的动作绝不在服务端跑
type BridgePayload struct {
	Type                 string         `json:"type"`
	ToolID               string         `json:"toolId"`
	ToolName             string         `json:"toolName"`
	Parameters           map[string]any `json:"parameters"`
	SessionID            string         `json:"sessionId"`
	RequiresConfirmation bool           `json:"requiresConfirmation"`

	// 执行记录与回报凭证，由调用方在落库后补齐
	ExecutionID uint   `json:"executionId,omitempty"`
	Token       string `json:"token,omitempty"`
}

const BridgePayloadType = "CLIENT_BRIDGE_REQUEST"

// Registry 单次请求生命周期内的工具表
type Registry struct {
	byID   map[string]*model.Tool
	byName map[string]*model.Tool
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*model.Tool),
		byName: make(map[string]*model.Tool),
	}
}

func (r *Registry) Register(t *model.Tool) {
	r.byID[t.ID] = t
	r.byName[strings.TrimSpace(t.Name)] = t
}

func (r *Registry) RegisterMany(tools []model.Tool) {
	for i := range tools {
		r.Register(&tools[i])
	}
}

func (r *Registry) Get(toolID string) *model.Tool {
	return r.byID[toolID]
}

func (r *Registry) GetByName(name string) *model.Tool {
	return r.byName[strings.TrimSpace(name)]
}

type Executor struct {
	registry *Registry
}

func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

func (e *Executor) Execute(ctx context.Context, toolID string, parameters map[string]any, execCtx Context) Result {
	t := e.registry.Get(toolID)
	if t == nil {
		return Result{
			Success: false,
			Error:   fmt.Sprintf("%s: %s", ErrToolNotFound.Error(), toolID),
		}
	}

	start := time.Now()

	var (
		data any
		err  error
	)
	switch t.Type {
	case model.ToolTypeRestAPI:
		data, err = e.executeRestAPI(ctx, t, parameters)
	case model.ToolTypeClientBridge:
		data = e.executeClientBridge(t, parameters, execCtx)
	case model.ToolTypeCustomCode:
		err = ErrCustomCodeUnsupported
	default:
		err = fmt.Errorf("unsupported tool type: %s", t.Type)
	}

	latency := time.Since(start).Milliseconds()
	if err != nil {
		return Result{Success: false, Error: err.Error(), LatencyMs: latency}
	}
	return Result{Success: true, Data: data, LatencyMs: latency}
}

func (e *Executor) executeRestAPI(ctx context.Context, t *model.Tool, parameters map[string]any) (any, error) {
	if t.Endpoint == "" || t.Method == "" {
		return nil, ErrMissingEndpoint
	}

	endpoint := substituteURLParams(t.Endpoint, parameters)

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	for k, v := range t.Headers {
		headers.Set(k, v)
	}
	if err := injectAuth(headers, t); err != nil {
		return nil, err
	}

	var body []byte
	if len(t.BodyTemplate) > 0 && t.Method != http.MethodGet {
		body = substituteBodyParams(t.BodyTemplate, parameters)
	}

	timeout := time.Duration(t.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeoutMs * time.Millisecond
	}
	client := utils.NewHTTPClient(utils.WithTimeout(timeout))

	// 每次调用独立的硬超时，随请求 context 级联取消
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	attempts := uint(t.RetryCount) + 1

	return retry.DoWithData(
		func() (any, error) {
			req, err := http.NewRequestWithContext(callCtx, t.Method, endpoint, bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header = headers.Clone()

			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				io.Copy(io.Discard, resp.Body)
				return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
			}

			var data any
			if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
				return nil, fmt.Errorf("failed to decode tool response: %v", err)
			}
			return data, nil
		},
		retry.Context(callCtx),
		retry.Attempts(attempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (e *Executor) executeClientBridge(t *model.Tool, parameters map[string]any, execCtx Context) BridgePayload {
	return BridgePayload{
		Type:                 BridgePayloadType,
		ToolID:               t.ID,
		ToolName:             t.Name,
		Parameters:           parameters,
		SessionID:            execCtx.SessionID,
		RequiresConfirmation: t.RequiresConfirmation,
	}
}

// substituteURLParams 把 {{param}} 占位符替换为转义后的参数值
func substituteURLParams(endpoint string, parameters map[string]any) string {
	for key, value := range parameters {
		placeholder := "{{" + key + "}}"
		endpoint = strings.ReplaceAll(endpoint, placeholder, url.QueryEscape(stringify(value)))
	}
	return endpoint
}

// substituteBodyParams 模板内 "{{param}}" 整体替换为参数的 JSON 值，
// 保留数字、布尔等原始类型
func substituteBodyParams(template json.RawMessage, parameters map[string]any) []byte {
	body := string(template)
	for key, value := range parameters {
		encoded, err := json.Marshal(value)
		if err != nil {
			continue
		}
		body = strings.ReplaceAll(body, `"{{`+key+`}}"`, string(encoded))
	}
	return []byte(body)
}

func injectAuth(headers http.Header, t *model.Tool) error {
	if t.AuthType == "" || t.AuthType == model.ToolAuthNone {
		return nil
	}

	cfg, err := t.DecodeAuthConfig()
	if err != nil {
		return fmt.Errorf("invalid tool auth config: %v", err)
	}

	switch t.AuthType {
	case model.ToolAuthBearer:
		if cfg.Token != "" {
			headers.Set("Authorization", "Bearer "+cfg.Token)
		}
	case model.ToolAuthAPIKey:
		if cfg.HeaderName != "" && cfg.APIKey != "" {
			headers.Set(cfg.HeaderName, cfg.APIKey)
		}
	case model.ToolAuthBasic:
		if cfg.Username != "" {
			credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
			headers.Set("Authorization", "Basic "+credentials)
		}
	}
	return nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
