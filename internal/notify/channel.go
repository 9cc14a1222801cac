package notify

import "context"

// Channel receives every notification once, after the emails went out.
// Used for admin chat alerts and the event stream.
type Channel interface {
	Name() string
	Publish(ctx context.Context, n Notification, m Message) error
}
