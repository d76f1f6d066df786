// Package usage 异步记录每轮对话的用量，落库并可选广播到MQ。
// 用量记录在聊天请求的关键路径之外，失败只记日志不影响对话
package usage

import (
	"context"
	"log/slog"

	"vanta-agent-backend/dao"
	"vanta-agent-backend/model"
	"vanta-agent-backend/service/mq"
)

const (
	taskChanSize = 100
	workerNum    = 4
)

// Recorder 负责异步写入用量记录
type Recorder struct {
	taskChan  chan *model.UsageLog
	workerNum int
}

// RecorderInstance Recorder单例实例
var RecorderInstance = &Recorder{
	taskChan:  make(chan *model.UsageLog, taskChanSize),
	workerNum: workerNum,
}

func (r *Recorder) Run() {
	ctx := context.Background()
	for i := 1; i <= r.workerNum; i++ {
		go r.executeRecording(ctx, i)
	}
}

// Record 提交一条用量记录。队列满时丢弃并记日志，不阻塞调用方
func (r *Recorder) Record(usage *model.UsageLog) {
	select {
	case r.taskChan <- usage:
	default:
		slog.Warn("Usage task queue is full, dropping record",
			"workspace_id", usage.WorkspaceID,
			"event_type", usage.EventType,
		)
	}
}

func (r *Recorder) executeRecording(ctx context.Context, id int) {
	slog.Info("Starting usage worker", "worker_id", id)
	defer slog.Info("Usage worker exit", "worker_id", id)

	for usage := range r.taskChan {
		if err := dao.CreateUsageLog(ctx, usage); err != nil {
			slog.Error("Failed to create usage log",
				"workspace_id", usage.WorkspaceID,
				"err", err,
			)
			continue
		}

		if !mq.Enabled() {
			continue
		}
		if err := mq.SendMessage(ctx, &mq.Message{
			Topic:   mq.TopicUsage,
			Tag:     mq.TagChatMessage,
			Payload: usage,
		}); err != nil {
			slog.Error("Failed to publish usage event",
				"workspace_id", usage.WorkspaceID,
				"err", err,
			)
		}
	}
}
