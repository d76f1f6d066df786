package utils

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// SSE 数据帧为 JSON 对象，type 字段标记事件类型，终止帧为 [DONE]
const StreamDoneSentinel = "[DONE]"

func SetSSEHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Transfer-Encoding", "chunked")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
}

// SendSSEData 发送一帧 data-only SSE 消息并立即刷新
func SendSSEData(c *gin.Context, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	c.Writer.WriteString("data: " + string(data) + "\n\n")
	c.Writer.Flush()
}

// SendSSEDone 发送流终止标记
func SendSSEDone(c *gin.Context) {
	c.Writer.WriteString("data: " + StreamDoneSentinel + "\n\n")
	c.Writer.Flush()
}
