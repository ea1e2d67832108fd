package microbit

import "context"

// Transport carries one request to the device and returns its reply.
// Commands are answered with an empty slice.
type Transport interface {
	Send(ctx context.Context, op string, args []string) ([]string, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, op string, args []string) ([]string, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, op string, args []string) ([]string, error) {
	return f(ctx, op, args)
}
