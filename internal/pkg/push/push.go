package push

import "context"

// Message is a platform-neutral push payload.
type Message struct {
	Title    string
	Body     string
	Data     map[string]string
	Priority string
}

// Result summarises one multicast send. InvalidTokens lists tokens the provider
// reported as unregistered so callers can forget them.
type Result struct {
	SuccessCount  int
	FailureCount  int
	InvalidTokens []string
}

type Sender interface {
	SendMulticast(ctx context.Context, tokens []string, msg Message) (Result, error)
}

// NoopSender accepts every message without sending anything.
type NoopSender struct{}

func (NoopSender) SendMulticast(ctx context.Context, tokens []string, msg Message) (Result, error) {
	return Result{SuccessCount: len(tokens)}, nil
}
