package domain

import "context"

// Message is one inbound chat message together with the capability to answer it.
// Transports adapt their own types to it.
type Message interface {
	Sender() string
	Text() string
	Reply(ctx context.Context, text string) error
}
