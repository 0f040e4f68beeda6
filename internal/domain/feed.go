package domain

// FeedChangeKind classifies a change to the events collection.
type FeedChangeKind string

const (
	FeedEventCreated FeedChangeKind = "event_created"
	FeedEventUpdated FeedChangeKind = "event_updated"
	FeedEventDeleted FeedChangeKind = "event_deleted"
	FeedRSVPChanged  FeedChangeKind = "rsvp_changed"
)

// FeedChange is a notification that the events collection changed. For
// deletions Event is nil. Consumers re-read whatever state they need;
// the change stream is a read-path convenience and carries no
// consistency guarantees of its own.
type FeedChange struct {
	Kind    FeedChangeKind `json:"kind"`
	EventID string         `json:"event_id"`
	Event   *Event         `json:"event,omitempty"`
}

// FeedBroadcaster fans out event collection changes to subscribers.
type FeedBroadcaster interface {
	Publish(change FeedChange)
	// Subscribe returns a channel of changes and a cancel func that
	// releases the subscription. Slow subscribers may miss changes.
	Subscribe() (changes <-chan FeedChange, cancel func())
}
