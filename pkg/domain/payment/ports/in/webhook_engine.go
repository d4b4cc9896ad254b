package in

import "context"

// WebhookEngine is the webhook domain's public use-case surface.
type WebhookEngine interface {
	RetryPending(ctx context.Context) (int, error)
}
