// Package mq 封装RocketMQ生产者，用于向下游计费/分析系统广播用量事件。
// 未配置NameServer时整个包处于关闭状态，调用方无需感知
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"vanta-agent-backend/config"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/apache/rocketmq-client-go/v2/rlog"
	"github.com/avast/retry-go/v4"
)

const (
	TopicUsage     = "topic_usage"
	TagChatMessage = "tag_chat_message"

	sendMessageAttempts = 3
)

// 全局生产者，未启用时为nil
var producerInstance rocketmq.Producer

type Message struct {
	Topic   string
	Tag     string
	Payload any
}

// Init 创建并启动生产者。MQ未启用时直接返回
func Init() error {
	if !config.Cfg.MQ.Enabled {
		return nil
	}

	// 设置RocketMQ客户端（使用rlog）的日志级别
	rlog.SetLogLevel("warn")

	p, err := rocketmq.NewProducer(
		producer.WithNameServer(config.Cfg.MQ.NameServer),
	)
	if err != nil {
		return fmt.Errorf("failed to create producer: %v", err)
	}

	if err := p.Start(); err != nil {
		return fmt.Errorf("failed to start producer: %v", err)
	}

	producerInstance = p
	return nil
}

// Enabled 生产者是否可用
func Enabled() bool {
	return producerInstance != nil
}

// SendMessage 向MQ发送消息
func SendMessage(ctx context.Context, message *Message) error {
	if producerInstance == nil {
		return nil
	}

	payloadJSON, err := json.Marshal(message.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	msg := primitive.NewMessage(message.Topic, payloadJSON)
	if message.Tag != "" {
		msg = msg.WithTag(message.Tag)
	}

	err = retry.Do(
		func() error {
			_, err := producerInstance.SendSync(ctx, msg)
			return err
		},
		retry.Attempts(sendMessageAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying to send message",
				"attempt", n+1,
				"topic", msg.Topic,
				"err", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s after retries: %v", msg.Topic, err)
	}

	return nil
}

// Shutdown 关闭MQ服务
func Shutdown() {
	if producerInstance != nil {
		producerInstance.Shutdown()
	}
}
