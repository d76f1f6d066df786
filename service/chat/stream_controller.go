package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"vanta-agent-backend/service/provider"
	"vanta-agent-backend/service/tool"
)

var (
	ErrStreamRunning     = errors.New("stream is already running")
	ErrTooManyToolRounds = errors.New("tool call round limit exceeded")
)

// StreamControllerOptions 流控制器的回调挂钩
type StreamControllerOptions struct {
	// OnToolCall 为空时工具调用事件原样透传，不做拦截执行
	OnToolCall func(ctx context.Context, toolCall *provider.ToolCall) tool.Result

	OnChunk    func(chunk provider.StreamChunk)
	OnComplete func()
	OnError    func(err error)

	// MaxToolRounds 单轮对话允许的工具调用轮数上限，<=0 用默认值
	MaxToolRounds int
}

const defaultMaxToolRounds = 5

// StreamController 每轮对话的状态机：
// 消费适配器事件流，拦截工具调用事件，执行工具后把
// 调用请求与结果追加成两条合成历史，再驱动适配器续写。
// 状态流转 Idle → Streaming → [ToolExecuting → Streaming]* → Ended|Errored
type StreamController struct {
	adapter  provider.Adapter
	messages []provider.Message
	tools    []provider.ToolDefinition
	opts     StreamControllerOptions

	mu       sync.Mutex
	running  bool
	stopped  bool
	cancel   context.CancelFunc
	executed []provider.ToolCall
}

func NewStreamController(adapter provider.Adapter, messages []provider.Message, tools []provider.ToolDefinition, opts StreamControllerOptions) *StreamController {
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = defaultMaxToolRounds
	}
	return &StreamController{
		adapter:  adapter,
		messages: messages,
		tools:    tools,
		opts:     opts,
	}
}

// ToolCallRecords 本轮对话中被拦截执行过的调用请求，不含历史轮次的
func (sc *StreamController) ToolCallRecords() []provider.ToolCall {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	calls := make([]provider.ToolCall, len(sc.executed))
	copy(calls, sc.executed)
	return calls
}

// Stream 驱动一轮生成，事件按适配器发出的顺序经 emit 交给调用方。
// 同一控制器同时只允许一个活跃流，重入直接报错。
// 上游出错时终止本轮，已发出的内容不回收，错误经 OnError 上抛，不重试
func (sc *StreamController) Stream(ctx context.Context, emit func(chunk provider.StreamChunk)) error {
	sc.mu.Lock()
	if sc.running {
		sc.mu.Unlock()
		return ErrStreamRunning
	}
	sc.running = true
	sc.stopped = false
	ctx, sc.cancel = context.WithCancel(ctx)
	sc.mu.Unlock()

	defer func() {
		sc.mu.Lock()
		sc.running = false
		if sc.cancel != nil {
			sc.cancel()
			sc.cancel = nil
		}
		sc.mu.Unlock()
	}()

	err := sc.run(ctx, emit)
	if err != nil && sc.opts.OnError != nil {
		sc.opts.OnError(err)
	}
	return err
}

func (sc *StreamController) run(ctx context.Context, emit func(chunk provider.StreamChunk)) error {
	rounds := 0

	for {
		stream, err := sc.adapter.StreamChat(ctx, sc.messages, sc.tools)
		if err != nil {
			if sc.isStopped() {
				return nil
			}
			return err
		}

		continuing, err := sc.consume(ctx, stream, emit)
		stream.Close()
		if err != nil {
			return err
		}
		if !continuing {
			return nil
		}

		rounds++
		if rounds >= sc.opts.MaxToolRounds {
			return ErrTooManyToolRounds
		}
	}
}

// consume 消费一次适配器流。返回 true 表示发生了工具调用，
// 历史已扩展，需要再发起一次续写
func (sc *StreamController) consume(ctx context.Context, stream provider.Stream, emit func(chunk provider.StreamChunk)) (bool, error) {
	for {
		// Stop 会取消派生 context，先查停止标记才能区分主动停止和调用方取消
		if sc.isStopped() {
			return false, nil
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}

		chunk, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				// 后端没给终止事件就关流，视为本轮结束
				return false, nil
			}
			if sc.isStopped() {
				// Recv 因 Stop 取消在途调用而失败，按干净终止处理
				return false, nil
			}
			return false, err
		}

		if chunk.Type == provider.ChunkToolCall && sc.opts.OnToolCall != nil {
			// 调用事件先透传给客户端，再暂停转发执行工具
			emit(chunk)
			sc.handleToolCall(ctx, chunk.ToolCall, emit)
			return true, nil
		}

		if sc.opts.OnChunk != nil {
			sc.opts.OnChunk(chunk)
		}
		emit(chunk)

		if chunk.Type == provider.ChunkEnd {
			if sc.opts.OnComplete != nil {
				sc.opts.OnComplete()
			}
			return false, nil
		}
	}
}

// handleToolCall 暂停转发，执行工具，把调用与结果拼成两条合成轮次。
// 失败的调用同样以失败结果轮次喂回模型，对话继续，不终止请求
func (sc *StreamController) handleToolCall(ctx context.Context, toolCall *provider.ToolCall, emit func(chunk provider.StreamChunk)) {
	result := sc.opts.OnToolCall(ctx, toolCall)

	status := "success"
	if !result.Success {
		status = "failed"
	}
	emit(provider.StreamChunk{
		Type:    provider.ChunkContent,
		Content: fmt.Sprintf("\n[Tool %s executed: %s]\n", toolCall.Function.Name, status),
	})

	payload := result.Data
	if !result.Success {
		payload = map[string]any{
			"success": false,
			"error":   result.Error,
		}
	}
	content, err := json.Marshal(payload)
	if err != nil {
		content = []byte(`{"success":false,"error":"unserializable tool output"}`)
	}

	sc.mu.Lock()
	sc.executed = append(sc.executed, *toolCall)
	sc.messages = append(sc.messages,
		provider.Message{
			Role:      provider.RoleAssistant,
			Content:   "",
			ToolCalls: []provider.ToolCall{*toolCall},
		},
		provider.Message{
			Role:       provider.RoleTool,
			Content:    string(content),
			ToolCallID: toolCall.ID,
		},
	)
	sc.mu.Unlock()
}

// Stop 停止后续事件转发并取消在途的后端调用
func (sc *StreamController) Stop() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stopped = true
	if sc.cancel != nil {
		sc.cancel()
	}
}

func (sc *StreamController) isStopped() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.stopped
}
