package model

import (
	"time"
)

// AuditLog 代表一次完整的操作审计记录
type AuditLog struct {
	ID        string `json:"id"`        // 唯一请求 ID (UUID)
	Principal string `json:"principal"` // 调用方地址（admin 路径）
	Method    string `json:"method"`    // HTTP 方法
	Path      string `json:"path"`      // 请求路径
	IP        string `json:"ip"`        // 客户端 IP
	UserAgent string `json:"user_agent"`

	RequestBody  string `json:"request_body"`
	StatusCode   int    `json:"status_code"`
	ResponseBody string `json:"response_body"`
	LatencyMs    int64  `json:"latency_ms"`

	// 业务上下文 (decision outcome, fee, venue 等)
	Context map[string]interface{} `json:"context"`

	CreatedAt time.Time `json:"created_at"`
}
