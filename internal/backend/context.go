package backend

import "context"

type contextKey string

const (
	sessionKey contextKey = "backend_session"
	callKey    contextKey = "backend_call"
)

// WithSession attaches a session id to the context for event logging.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

// SessionFrom extracts the session id from the context.
func SessionFrom(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey).(string); ok {
		return v
	}
	return ""
}

// callInfo collects per-call details that only the transport sees.
type callInfo struct {
	status int
}

func withCallInfo(ctx context.Context) (context.Context, *callInfo) {
	info := &callInfo{}
	return context.WithValue(ctx, callKey, info), info
}

// recordStatus stores the HTTP status for the logging decorator, if any.
func recordStatus(ctx context.Context, code int) {
	if info, ok := ctx.Value(callKey).(*callInfo); ok {
		info.status = code
	}
}
