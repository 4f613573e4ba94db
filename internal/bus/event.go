package bus

import "time"

// Event kinds published in this process. Subscribers filter by namespace
// prefix, so "tg." selects everything the Telegram adapter emits and
// "session." selects lifecycle transitions.
const (
	KindMessage       = "tg.message"
	KindStatusChanged = "session.status_changed"
	KindAuthorized    = "session.authorized"
	KindLoggedOut     = "session.logged_out"
)

// Event is a domain event published on the bus.
type Event struct {
	Kind    string
	At      time.Time
	Payload any
}
