// Package trigger implements the change-notification bus between the
// synchronized chat store and its consumers.
//
// The bus is a single monotonically increasing version counter paired with a
// classification of the most recent mutation. Both are replaced atomically
// as one unit on every store mutation. A consumer remembers the last
// Snapshot it rendered from and asks whether a newer Snapshot invalidates
// its view: the version comparison is the cheap "did anything change" check,
// and the classification narrows it down so expensive derived queries are
// not recomputed on unrelated mutations.
package trigger

import "sync"

// Kind classifies a store mutation.
type Kind int

const (
	// Init is a wholesale snapshot replacement; every view is stale.
	Init Kind = iota

	// Room means a room was added, removed, or renamed.
	Room

	// Message means a message was appended to a room.
	Message

	// Member means a room's member list changed.
	Member

	// Friend means an existing friend entry changed or was removed.
	Friend

	// NewFriend means a pending friend request appeared or was withdrawn.
	NewFriend
)

// String returns the classification name.
func (k Kind) String() string {
	switch k {
	case Init:
		return "Init"
	case Room:
		return "Room"
	case Message:
		return "Message"
	case Member:
		return "Member"
	case Friend:
		return "Friend"
	case NewFriend:
		return "NewFriend"
	default:
		return "Unknown"
	}
}

// Action is the classification payload of one mutation. ID is the affected
// room or friend id; CurrentID is the matching selection cursor captured at
// publish time, so consumers can tell whether the entity they display was
// the one affected. Both are zero for Init and NewFriend.
type Action struct {
	Kind      Kind
	ID        int64
	CurrentID int64
}

// Snapshot is one observed state of the bus.
type Snapshot struct {
	Version uint64
	Action  Action
}

// Bus is the shared counter/classification pair. Written only by the store,
// read by any number of consumers.
type Bus struct {
	mu      sync.Mutex
	version uint64
	action  Action
}

// New returns a bus at version zero with an Init classification.
func New() *Bus {
	return &Bus{}
}

// Publish increments the version and replaces the classification as one
// atomic unit.
func (b *Bus) Publish(action Action) {
	b.mu.Lock()
	b.version++
	b.action = action
	b.mu.Unlock()
}

// Snapshot returns the current version and classification.
func (b *Bus) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{Version: b.version, Action: b.action}
}

// View identifies a derived query a consumer may be displaying.
type View int

const (
	// RoomList is the reverse-chronological room overview.
	RoomList View = iota

	// MessageList is the message pane of the selected room.
	MessageList

	// MemberList is the member pane of the selected room.
	MemberList

	// CurrentRoom is the header projection of the selected room.
	CurrentRoom

	// NewRoom is the create-room dialog (it lists invitable friends).
	NewRoom

	// FriendList is the accepted-friends pane.
	FriendList

	// CurrentFriend is the profile pane of the selected friend.
	CurrentFriend

	// NewFriendView is the pending-requests pane.
	NewFriendView
)

// Invalidates reports whether the change from prev to s requires view v to
// be recomputed. The version check short-circuits the common no-change case;
// the classification check stops unrelated mutations from re-running
// expensive queries.
func (s Snapshot) Invalidates(prev Snapshot, v View) bool {
	if s.Version == prev.Version {
		return false
	}
	return s.Action.affects(v)
}

func (a Action) affects(v View) bool {
	if a.Kind == Init {
		return true
	}

	switch v {
	case RoomList:
		return a.Kind == Room || a.Kind == Message
	case MessageList:
		return a.Kind == Message
	case MemberList:
		return a.Kind == Member || a.Kind == Friend || a.Kind == NewFriend
	case CurrentRoom:
		return a.Kind == Room && a.ID == a.CurrentID
	case NewRoom:
		return a.Kind == Friend || a.Kind == NewFriend
	case FriendList:
		return a.Kind == Friend
	case CurrentFriend:
		return a.Kind == Friend && a.ID == a.CurrentID
	case NewFriendView:
		return a.Kind == NewFriend || a.Kind == Friend
	default:
		return false
	}
}
