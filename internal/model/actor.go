package model

import "context"

// actorKey 审计执行者在 context 中的键
type actorKey struct{}

// WithActor 把操作者邮箱注入上下文
// 认证后的写入路径据此填充审计执行者字段
func WithActor(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, actorKey{}, email)
}

// ActorFromContext 取出操作者邮箱，未注入或为空时 ok=false
func ActorFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(actorKey{}).(string)
	return email, ok && email != ""
}
