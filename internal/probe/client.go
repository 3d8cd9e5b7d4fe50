package probe

import (
	"context"

	"github.com/conduit-lang/lspcheck/internal/transport"
)

// Client is the connection the suites drive. *transport.Channel implements
// it.
type Client interface {
	Connect(ctx context.Context, host string, port int) error
	Disconnect()
	SendRequest(ctx context.Context, method string, params interface{}) (*transport.Envelope, error)
	SendNotification(ctx context.Context, method string, params interface{}) error
}

var _ Client = (*transport.Channel)(nil)
