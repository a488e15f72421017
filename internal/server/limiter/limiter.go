package limiter

import "context"

// Decision 一次准入判定，Remaining 为本次之后窗口内剩余次数
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
}

// Limiter 按客户端 key 的滑动窗口限流
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
