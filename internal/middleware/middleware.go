package middleware

import (
	"context"
	"fmt"
	"sync"

	"ledgerbot/internal/domain"

	"go.uber.org/zap"
)

// HandlerFunc processes one inbound message
type HandlerFunc func(ctx context.Context, msg domain.Message) error

// MiddlewareFunc wraps a HandlerFunc
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// Chain applies middlewares so the first one is the outermost
func Chain(h HandlerFunc, middlewares ...MiddlewareFunc) HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Recover turns a panic into a log entry plus a best-effort reply.
// Only the current message is affected.
func Recover(logger *zap.Logger, reply string) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg domain.Message) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				logger.Error("Panic while handling message",
					zap.Any("panic", r),
					zap.String("sender", msg.Sender()),
					zap.Stack("stack"),
				)
				if rerr := msg.Reply(ctx, reply); rerr != nil {
					logger.Warn("Failed to send panic reply", zap.Error(rerr))
				}
				err = fmt.Errorf("panic: %v", r)
			}()
			return next(ctx, msg)
		}
	}
}

// LogErrors logs errors that escape the handler
func LogErrors(logger *zap.Logger) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg domain.Message) error {
			err := next(ctx, msg)
			if err != nil {
				logger.Error("Failed to handle message",
					zap.Error(err),
					zap.String("sender", msg.Sender()),
				)
			}
			return err
		}
	}
}

type senderLock struct {
	mu   sync.Mutex
	refs int
}

// SerializeBySender processes messages of one identity in arrival order.
// Different identities run concurrently.
func SerializeBySender(identity func(sender string) string) MiddlewareFunc {
	var (
		mux   sync.Mutex
		locks = make(map[string]*senderLock)
	)

	acquire := func(key string) *senderLock {
		mux.Lock()
		lock, exists := locks[key]
		if !exists {
			lock = &senderLock{}
			locks[key] = lock
		}
		lock.refs++
		mux.Unlock()

		lock.mu.Lock()
		return lock
	}

	release := func(key string, lock *senderLock) {
		lock.mu.Unlock()

		mux.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(locks, key)
		}
		mux.Unlock()
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg domain.Message) error {
			key := identity(msg.Sender())
			lock := acquire(key)
			defer release(key, lock)

			return next(ctx, msg)
		}
	}
}
