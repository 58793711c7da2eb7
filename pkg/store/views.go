package store

import (
	"strings"
	"time"

	"github.com/parley-chat/parley/pkg/wire"
)

// RoomListItem is one row of the room overview. Name and Cover are already
// resolved for display: a private room shows the other participant, not the
// room record's own fields.
type RoomListItem struct {
	ID         int64
	Name       string
	Cover      string
	Unreads    int64
	LatestMsg  string
	LatestTime string
}

// RoomView is the category-specific projection of the selected room:
// PublicRoomView, PrivateRoomView, or PersonalRoomView.
type RoomView interface {
	isRoomView()
}

// PublicRoomView is a named group room plus the current user's rank in it.
type PublicRoomView struct {
	ID    int64
	Name  string
	Cover string
	Rank  string
}

// PrivateRoomView resolves a 1:1 room to the other participant's friend
// record.
type PrivateRoomView struct {
	Friend Friend
}

// PersonalRoomView is the self-notes room.
type PersonalRoomView struct {
	ID    int64
	Name  string
	Cover string
	Desc  string
}

func (PublicRoomView) isRoomView()   {}
func (PrivateRoomView) isRoomView()  {}
func (PersonalRoomView) isRoomView() {}

// EntryKind distinguishes the message-pane entry types.
type EntryKind int

const (
	// EntryDivider is a synthetic date divider between bucket changes.
	EntryDivider EntryKind = iota

	// EntryIncoming is a message sent by someone else.
	EntryIncoming

	// EntryOutgoing is a message sent by the current user.
	EntryOutgoing
)

// MessageEntry is one row of the message pane: either a divider (Divider
// set) or a real message (Message and Clock set).
type MessageEntry struct {
	Kind    EntryKind
	Divider string
	Message Message
	Clock   string
}

// MemberItem is a room member annotated with their relation to the current
// user.
type MemberItem struct {
	Member
	Relation Relation
}

// FriendItem is the compact accepted-friend row.
type FriendItem struct {
	ID       int64
	Nickname string
	Avatar   string
}

// Rooms returns the room overview, most recently active first.
func (s *Store) Rooms() []RoomListItem {
	return s.searchRooms("", time.Now())
}

// SearchRooms returns overview rows whose displayed name contains target.
// Matching is case-sensitive containment. The snapshot is not modified.
func (s *Store) SearchRooms(target string) []RoomListItem {
	return s.searchRooms(target, time.Now())
}

func (s *Store) searchRooms(target string, now time.Time) []RoomListItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]RoomListItem, 0, len(s.rooms))
	for i := len(s.rooms) - 1; i >= 0; i-- {
		item := s.roomItem(&s.rooms[i], now)
		if target == "" || strings.Contains(item.Name, target) {
			items = append(items, item)
		}
	}
	return items
}

// roomItem resolves one room into its overview row. Callers hold s.mu.
func (s *Store) roomItem(room *Room, now time.Time) RoomListItem {
	name, cover := room.Name, room.Cover
	if room.Category == wire.CategoryPrivate {
		for i := range room.Members {
			if room.Members[i].ID != s.currentUser {
				name, cover = room.Members[i].Name, room.Members[i].Avatar
				break
			}
		}
	}

	item := RoomListItem{
		ID:      room.ID,
		Name:    name,
		Cover:   cover,
		Unreads: room.Unreads,
	}
	if n := len(room.Messages); n > 0 {
		last := room.Messages[n-1]
		if room.Category == wire.CategoryPublic {
			item.LatestMsg = last.Name + ": " + last.Content
		} else {
			item.LatestMsg = last.Content
		}
		item.LatestTime = TimeAgoShort(last.SendAt, now)
	}
	return item
}

// CurrentRoom projects a room by category. A private room resolves through
// the friend list; it reports false when the counterpart or the room itself
// is missing.
func (s *Store) CurrentRoom(roomID int64) (RoomView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.roomIndex(roomID)
	if i < 0 {
		return nil, false
	}
	room := &s.rooms[i]

	switch room.Category {
	case wire.CategoryPublic:
		return PublicRoomView{
			ID:    room.ID,
			Name:  room.Name,
			Cover: room.Cover,
			Rank:  s.rankLocked(room),
		}, true

	case wire.CategoryPrivate:
		for j := range room.Members {
			if room.Members[j].ID == s.currentUser {
				continue
			}
			for _, f := range s.friends {
				if f.ID == room.Members[j].ID {
					return PrivateRoomView{Friend: f}, true
				}
			}
			return nil, false
		}
		return nil, false

	case wire.CategoryPersonal:
		return PersonalRoomView{
			ID:    room.ID,
			Name:  room.Name,
			Cover: room.Cover,
			Desc:  "Blank",
		}, true
	}
	return nil, false
}

// Rank returns the current user's rank in a room, defaulting to member.
func (s *Store) Rank(roomID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.roomIndex(roomID); i >= 0 {
		return s.rankLocked(&s.rooms[i])
	}
	return wire.RankMember
}

func (s *Store) rankLocked(room *Room) string {
	for i := range room.Members {
		if room.Members[i].ID == s.currentUser {
			return room.Members[i].Rank
		}
	}
	return wire.RankMember
}

// Messages returns a room's message pane: every message in arrival order,
// with a divider entry inserted wherever the TimeAgo bucket changes between
// consecutive messages.
func (s *Store) Messages(roomID int64) []MessageEntry {
	return s.messagesAt(roomID, time.Now())
}

func (s *Store) messagesAt(roomID int64, now time.Time) []MessageEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.roomIndex(roomID)
	if i < 0 {
		return nil
	}

	entries := make([]MessageEntry, 0, len(s.rooms[i].Messages))
	seen := ""
	for _, msg := range s.rooms[i].Messages {
		bucket := TimeAgo(msg.SendAt, now)
		if bucket != seen {
			seen = bucket
			entries = append(entries, MessageEntry{Kind: EntryDivider, Divider: bucket})
		}

		kind := EntryIncoming
		if msg.SenderID == s.currentUser {
			kind = EntryOutgoing
		}
		entries = append(entries, MessageEntry{
			Kind:    kind,
			Message: msg,
			Clock:   clockTime(msg.SendAt, now),
		})
	}
	return entries
}

// Relations returns the relation of every known user keyed by id, seeded
// with Yourself for the current user.
func (s *Store) Relations() map[int64]Relation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relationsLocked()
}

func (s *Store) relationsLocked() map[int64]Relation {
	m := make(map[int64]Relation, len(s.friends)+1)
	for _, f := range s.friends {
		m[f.ID] = f.Relation
	}
	m[s.currentUser] = Relation{Kind: Yourself}
	return m
}

// Members returns a room's members annotated with their relation to the
// current user (Stranger when not in the friend list).
func (s *Store) Members(roomID int64) []MemberItem {
	return s.searchMembers(roomID, "")
}

// SearchMembers filters a room's members by case-sensitive name containment.
func (s *Store) SearchMembers(roomID int64, target string) []MemberItem {
	return s.searchMembers(roomID, target)
}

func (s *Store) searchMembers(roomID int64, target string) []MemberItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.roomIndex(roomID)
	if i < 0 {
		return nil
	}

	relations := s.relationsLocked()
	items := make([]MemberItem, 0, len(s.rooms[i].Members))
	for _, m := range s.rooms[i].Members {
		if target != "" && !strings.Contains(m.Name, target) {
			continue
		}
		relation, ok := relations[m.ID]
		if !ok {
			relation = Relation{Kind: Stranger}
		}
		items = append(items, MemberItem{Member: m, Relation: relation})
	}
	return items
}

// FriendByID returns a friend entry by id.
func (s *Store) FriendByID(friendID int64) (Friend, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.friends {
		if f.ID == friendID {
			return f, true
		}
	}
	return Friend{}, false
}

// AcceptedFriends returns the compact rows for established friendships.
func (s *Store) AcceptedFriends() []FriendItem {
	return s.searchAcceptedFriends("")
}

// SearchAcceptedFriends filters accepted friends by case-sensitive
// containment on username or nickname.
func (s *Store) SearchAcceptedFriends(target string) []FriendItem {
	return s.searchAcceptedFriends(target)
}

func (s *Store) searchAcceptedFriends(target string) []FriendItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]FriendItem, 0, len(s.friends))
	for _, f := range s.friends {
		if f.Relation.Kind != FriendRelation {
			continue
		}
		if target != "" && !strings.Contains(f.Username, target) && !strings.Contains(f.Nickname, target) {
			continue
		}
		items = append(items, FriendItem{ID: f.ID, Nickname: f.Nickname, Avatar: f.Avatar})
	}
	return items
}

// IncomingFriends returns pending requests awaiting the current user's
// answer.
func (s *Store) IncomingFriends() []Friend {
	return s.friendsByKind(IncomingAdding)
}

// OutgoingFriends returns requests the current user sent. There is no
// cancel operation in the wire contract; these rows are display-only.
func (s *Store) OutgoingFriends() []Friend {
	return s.friendsByKind(OutgoingAdding)
}

func (s *Store) friendsByKind(kind RelationKind) []Friend {
	s.mu.Lock()
	defer s.mu.Unlock()

	var friends []Friend
	for _, f := range s.friends {
		if f.Relation.Kind == kind {
			friends = append(friends, f)
		}
	}
	return friends
}

// FriendFromUser wraps a username-lookup result with the proper relation so
// the add-friend dialog can render it like any other friend row.
func (s *Store) FriendFromUser(resp wire.GetUserByNameResponse) (Friend, bool) {
	if resp.User == nil {
		return Friend{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	relation, ok := s.relationsLocked()[resp.User.ID]
	if !ok {
		relation = Relation{Kind: Stranger}
	}
	return friendFromUser(*resp.User, relation), true
}
