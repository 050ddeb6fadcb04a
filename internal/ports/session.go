package ports

import "context"

// SessionListener is notified when the server rejects the current credentials.
type SessionListener interface {
	OnSessionExpired(ctx context.Context)
}

type SessionListenerFunc func(ctx context.Context)

func (f SessionListenerFunc) OnSessionExpired(ctx context.Context) {
	f(ctx)
}
