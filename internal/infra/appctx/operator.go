package appctx

import "context"

type ctxKey string

const operatorKey ctxKey = "operator"

// WithOperator добавляет subject администраторского токена в контекст
func WithOperator(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, operatorKey, subject)
}

// Operator извлекает subject администраторского токена из контекста
func Operator(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(operatorKey).(string)
	return subject, ok && subject != ""
}
