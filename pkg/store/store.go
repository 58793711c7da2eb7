package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/parley-chat/parley/pkg/trigger"
	"github.com/parley-chat/parley/pkg/wire"
)

// SessionClosed is returned by Apply for a server-initiated Close event.
// It is fatal: the connection manager must not reconnect.
type SessionClosed struct {
	Reason string
}

func (e *SessionClosed) Error() string {
	return "store: session closed by server: " + e.Reason
}

// Store is the synchronized snapshot. The zero value is not usable; use New.
type Store struct {
	mu sync.Mutex

	bus *trigger.Bus

	rooms   []Room
	friends []Friend

	// Selection cursors, 0 = none.
	currentRoom   int64
	currentFriend int64

	// currentUser distinguishes outgoing from incoming messages and seeds
	// the Yourself relation.
	currentUser int64
}

// New creates a store for the given authenticated user, publishing change
// notifications on bus.
func New(currentUser int64, bus *trigger.Bus) *Store {
	if bus == nil {
		bus = trigger.New()
	}
	return &Store{bus: bus, currentUser: currentUser}
}

// Bus returns the change-notification bus consumers should watch.
func (s *Store) Bus() *trigger.Bus { return s.bus }

// CurrentUserID returns the authenticated user id the store was built for.
func (s *Store) CurrentUserID() int64 { return s.currentUser }

// CurrentRoomID returns the selected room id, 0 if none.
func (s *Store) CurrentRoomID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRoom
}

// CurrentFriendID returns the selected friend id, 0 if none.
func (s *Store) CurrentFriendID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFriend
}

// SetCurrentRoom moves the room selection and zeroes that room's unread
// counter. The counter reset happens synchronously, before the call returns,
// so the UI never renders the newly selected room with a stale badge.
func (s *Store) SetCurrentRoom(roomID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentRoom = roomID
	if i := s.roomIndex(roomID); i >= 0 {
		s.rooms[i].Unreads = 0
	}
}

// SetCurrentFriend moves the friend selection.
func (s *Store) SetCurrentFriend(friendID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentFriend = friendID
}

// Apply mutates the snapshot with one inbound server event and publishes the
// matching change classification. Events must be applied in arrival order.
// The only non-nil return is *SessionClosed for a server Close event, which
// leaves the snapshot untouched.
func (s *Store) Apply(ev wire.ServerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := ev.(type) {
	case wire.ServerClose:
		return &SessionClosed{Reason: ev.Reason}

	case wire.InitialResponse:
		s.rooms = sortedRooms(ev.Rooms)
		s.friends = convertFriends(ev.Friends)
		s.bus.Publish(trigger.Action{Kind: trigger.Init})

	case wire.UserRoomsResponse:
		s.rooms = sortedRooms(ev.Rooms)
		s.bus.Publish(trigger.Action{Kind: trigger.Init})

	case wire.NewMessageResponse:
		i := s.roomIndex(ev.RoomID)
		if i < 0 {
			return nil
		}
		room := s.rooms[i]
		room.Messages = append(room.Messages, messageOf(ev.Message))
		room.Unreads++

		// Most recently active room moves to the end; the room list is
		// read in reverse.
		s.rooms = append(append(s.rooms[:i:i], s.rooms[i+1:]...), room)
		s.publish(trigger.Message, ev.RoomID)

	case wire.NewRoomResponse:
		s.rooms = append(s.rooms, roomOf(ev.Room))
		s.publish(trigger.Room, ev.Room.ID)

	case wire.DeleteRoomResponse:
		if i := s.roomIndex(ev.RoomID); i >= 0 {
			s.rooms = append(s.rooms[:i], s.rooms[i+1:]...)
			s.publish(trigger.Room, ev.RoomID)
		}

	case wire.NewRoomNameResponse:
		if i := s.roomIndex(ev.RoomID); i >= 0 {
			s.rooms[i].Name = ev.Name
			s.publish(trigger.Room, ev.RoomID)
		}

	case wire.LeaveRoomResponse:
		if i := s.roomIndex(ev.RoomID); i >= 0 {
			s.rooms = append(s.rooms[:i], s.rooms[i+1:]...)
		}
		s.publish(trigger.Room, ev.RoomID)

	case wire.AddMembersResponse:
		if i := s.roomIndex(ev.RoomID); i >= 0 {
			for _, m := range ev.Members {
				s.rooms[i].Members = append(s.rooms[i].Members, memberOf(m))
			}
			s.publish(trigger.Member, ev.RoomID)
		}

	case wire.DeleteMembersResponse:
		if i := s.roomIndex(ev.RoomID); i >= 0 {
			gone := make(map[int64]struct{}, len(ev.MemberIDs))
			for _, id := range ev.MemberIDs {
				gone[id] = struct{}{}
			}
			kept := s.rooms[i].Members[:0]
			for _, m := range s.rooms[i].Members {
				if _, drop := gone[m.ID]; !drop {
					kept = append(kept, m)
				}
			}
			s.rooms[i].Members = kept
			s.publish(trigger.Member, ev.RoomID)
		}

	case wire.UserFriendsResponse:
		s.friends = convertFriends(ev.Friends)
		s.bus.Publish(trigger.Action{Kind: trigger.Init})

	case wire.AddFriendResponse:
		s.friends = append(s.friends, friendOf(ev.Friend))
		s.bus.Publish(trigger.Action{Kind: trigger.NewFriend})

	case wire.AcceptFriendResponse:
		s.removeFriend(ev.Friend.ID)
		s.friends = append(s.friends, friendOf(ev.Friend))
		s.bus.Publish(trigger.Action{
			Kind:      trigger.Friend,
			ID:        ev.Friend.ID,
			CurrentID: s.currentFriend,
		})

	case wire.RefuseFriendResponse:
		if s.removeFriend(ev.FriendID) {
			s.bus.Publish(trigger.Action{Kind: trigger.NewFriend})
		}

	case wire.DeleteFriendResponse:
		if s.removeFriend(ev.FriendID) {
			s.bus.Publish(trigger.Action{
				Kind:      trigger.Friend,
				ID:        ev.FriendID,
				CurrentID: s.currentFriend,
			})
		}

	default:
		return fmt.Errorf("store: unhandled server event %T", ev)
	}

	return nil
}

// publish emits a room-scoped classification with the selection captured at
// mutation time. Callers hold s.mu.
func (s *Store) publish(kind trigger.Kind, roomID int64) {
	s.bus.Publish(trigger.Action{Kind: kind, ID: roomID, CurrentID: s.currentRoom})
}

// roomIndex returns the index of a room by id, -1 when absent. Callers hold
// s.mu.
func (s *Store) roomIndex(roomID int64) int {
	for i := range s.rooms {
		if s.rooms[i].ID == roomID {
			return i
		}
	}
	return -1
}

// removeFriend drops a friend entry by id, reporting whether it existed.
// Friend order is not meaningful, so the last entry fills the hole. Callers
// hold s.mu.
func (s *Store) removeFriend(friendID int64) bool {
	for i := range s.friends {
		if s.friends[i].ID == friendID {
			last := len(s.friends) - 1
			s.friends[i] = s.friends[last]
			s.friends = s.friends[:last]
			return true
		}
	}
	return false
}

// sortedRooms converts a wholesale room snapshot, ordered ascending by each
// room's latest message time with message-less rooms first. The room list is
// read in reverse, so the most recently active room displays on top.
func sortedRooms(infos []wire.RoomInfo) []Room {
	rooms := make([]Room, 0, len(infos))
	for _, r := range infos {
		rooms = append(rooms, roomOf(r))
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		if len(a.Messages) == 0 {
			return len(b.Messages) > 0
		}
		if len(b.Messages) == 0 {
			return false
		}
		return a.Messages[len(a.Messages)-1].SendAt.Before(b.Messages[len(b.Messages)-1].SendAt)
	})
	return rooms
}

func convertFriends(infos []wire.FriendInfo) []Friend {
	friends := make([]Friend, 0, len(infos))
	for _, f := range infos {
		friends = append(friends, friendOf(f))
	}
	return friends
}
