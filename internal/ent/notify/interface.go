package notify

import "context"

// Notifier delivers operator notifications about workflow milestones.
// Delivery is best effort; a lost notification never fails the
// operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, datasetID uint, event, detail string)
}
