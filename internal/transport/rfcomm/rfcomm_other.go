//go:build !linux

package rfcomm

import (
	"context"

	"otprelay/internal/domain"
)

// Dial is not available on this platform.
func (p *Provider) Dial(context.Context) (domain.Stream, error) {
	return nil, ErrUnsupported
}

// Listen is not available on this platform.
func (p *Provider) Listen(context.Context, string) (domain.StreamListener, error) {
	return nil, ErrUnsupported
}
