package store

import (
	"errors"
	"testing"
	"time"

	"github.com/parley-chat/parley/pkg/trigger"
	"github.com/parley-chat/parley/pkg/wire"
)

const me = int64(1)

func at(hour int) time.Time {
	return time.Date(2026, 8, 30, hour, 0, 0, 0, time.UTC)
}

func msg(id, sid int64, content string, sendAt time.Time) wire.MessageInfo {
	return wire.MessageInfo{
		ID:      id,
		SID:     sid,
		Name:    "sender",
		Content: content,
		Kind:    wire.KindText,
		SendAt:  sendAt,
	}
}

func publicRoom(id int64, name string, messages ...wire.MessageInfo) wire.RoomInfo {
	return wire.RoomInfo{
		ID:       id,
		Name:     name,
		Category: wire.CategoryPublic,
		Members: []wire.MemberInfo{
			{ID: me, Name: "me", Rank: wire.RankOwner},
			{ID: 2, Name: "bob", Rank: wire.RankMember},
		},
		Messages: messages,
	}
}

func friend(id int64, username, status string, first bool) wire.FriendInfo {
	return wire.FriendInfo{
		ID:       id,
		Username: username,
		Nickname: username,
		Status:   status,
		First:    first,
		RoomID:   100 + id,
	}
}

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New(me, nil)
	err := s.Apply(wire.InitialResponse{
		Rooms: []wire.RoomInfo{
			publicRoom(10, "general", msg(1, 2, "hello", at(9))),
			publicRoom(11, "random", msg(2, 2, "later", at(11))),
			publicRoom(12, "empty"),
		},
		Friends: []wire.FriendInfo{
			friend(2, "bob", wire.StatusAccepted, true),
			friend(3, "carol", wire.StatusAdding, false),
		},
	})
	if err != nil {
		t.Fatalf("Apply(Initialized): %v", err)
	}
	return s
}

func roomIDs(items []RoomListItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyInitializedSortsRooms(t *testing.T) {
	s := seeded(t)

	// Message-less rooms sort first in storage, so the overview (read in
	// reverse) shows them last, after the most recently active room.
	got := roomIDs(s.Rooms())
	want := []int64{11, 10, 12}
	if !equalIDs(got, want) {
		t.Fatalf("room order = %v, want %v", got, want)
	}
}

func TestApplyInitializedReplacesState(t *testing.T) {
	s := seeded(t)

	err := s.Apply(wire.InitialResponse{
		Rooms:   []wire.RoomInfo{publicRoom(42, "only")},
		Friends: nil,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if got := roomIDs(s.Rooms()); !equalIDs(got, []int64{42}) {
		t.Fatalf("rooms after snapshot = %v, want [42]", got)
	}
	if got := s.AcceptedFriends(); len(got) != 0 {
		t.Fatalf("friends after snapshot = %v, want none", got)
	}
	if snap := s.Bus().Snapshot(); snap.Action.Kind != trigger.Init {
		t.Fatalf("classification = %v, want Init", snap.Action.Kind)
	}
}

func TestApplyClose(t *testing.T) {
	s := seeded(t)
	before := s.Bus().Snapshot()

	err := s.Apply(wire.ServerClose{Reason: "kicked"})
	var closed *SessionClosed
	if !errors.As(err, &closed) {
		t.Fatalf("Apply(Close) = %v, want *SessionClosed", err)
	}
	if closed.Reason != "kicked" {
		t.Fatalf("reason = %q, want %q", closed.Reason, "kicked")
	}
	if after := s.Bus().Snapshot(); after.Version != before.Version {
		t.Fatal("Close must not publish")
	}
}

func TestApplyReceiveMessage(t *testing.T) {
	s := seeded(t)
	s.SetCurrentRoom(10)
	before := s.Bus().Snapshot()

	err := s.Apply(wire.NewMessageResponse{
		RoomID:  10,
		Message: msg(3, 2, "ping", at(12)),
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// The room moves to the top and its counter grows even while selected.
	items := s.Rooms()
	if !equalIDs(roomIDs(items), []int64{10, 11, 12}) {
		t.Fatalf("room order = %v, want [10 11 12]", roomIDs(items))
	}
	if items[0].Unreads != 1 {
		t.Fatalf("unreads = %d, want 1", items[0].Unreads)
	}
	if items[0].LatestMsg != "sender: ping" {
		t.Fatalf("latest = %q, want %q", items[0].LatestMsg, "sender: ping")
	}

	after := s.Bus().Snapshot()
	if after.Version == before.Version {
		t.Fatal("ReceiveMessage must publish")
	}
	want := trigger.Action{Kind: trigger.Message, ID: 10, CurrentID: 10}
	if after.Action != want {
		t.Fatalf("classification = %+v, want %+v", after.Action, want)
	}
}

func TestApplyReceiveMessageUnknownRoom(t *testing.T) {
	s := seeded(t)
	before := s.Bus().Snapshot()

	if err := s.Apply(wire.NewMessageResponse{RoomID: 999, Message: msg(3, 2, "x", at(12))}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if after := s.Bus().Snapshot(); after.Version != before.Version {
		t.Fatal("unknown room must be a silent no-op")
	}
	if !equalIDs(roomIDs(s.Rooms()), []int64{11, 10, 12}) {
		t.Fatalf("room order changed: %v", roomIDs(s.Rooms()))
	}
}

func TestSetCurrentRoomClearsUnreads(t *testing.T) {
	s := seeded(t)
	for _, roomID := range []int64{10, 11} {
		if err := s.Apply(wire.NewMessageResponse{RoomID: roomID, Message: msg(5, 2, "x", at(12))}); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	s.SetCurrentRoom(10)

	for _, item := range s.Rooms() {
		want := int64(0)
		if item.ID == 11 {
			want = 1
		}
		if item.Unreads != want {
			t.Errorf("room %d unreads = %d, want %d", item.ID, item.Unreads, want)
		}
	}
	if got := s.CurrentRoomID(); got != 10 {
		t.Fatalf("CurrentRoomID = %d, want 10", got)
	}
}

func TestApplyJoinedRoom(t *testing.T) {
	s := seeded(t)

	if err := s.Apply(wire.NewRoomResponse{Room: publicRoom(20, "new")}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !equalIDs(roomIDs(s.Rooms()), []int64{20, 11, 10, 12}) {
		t.Fatalf("room order = %v, want [20 11 10 12]", roomIDs(s.Rooms()))
	}
	snap := s.Bus().Snapshot()
	if snap.Action.Kind != trigger.Room || snap.Action.ID != 20 {
		t.Fatalf("classification = %+v, want Room/20", snap.Action)
	}
}

func TestApplyDeletedRoom(t *testing.T) {
	for _, tt := range []struct {
		name    string
		roomID  int64
		publish bool
		want    []int64
	}{
		{"known", 10, true, []int64{11, 12}},
		{"unknown", 999, false, []int64{11, 10, 12}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t)
			before := s.Bus().Snapshot()

			if err := s.Apply(wire.DeleteRoomResponse{RoomID: tt.roomID}); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := roomIDs(s.Rooms()); !equalIDs(got, tt.want) {
				t.Fatalf("rooms = %v, want %v", got, tt.want)
			}
			published := s.Bus().Snapshot().Version != before.Version
			if published != tt.publish {
				t.Fatalf("published = %v, want %v", published, tt.publish)
			}
		})
	}
}

func TestApplyLeavedRoomAlwaysPublishes(t *testing.T) {
	s := seeded(t)
	before := s.Bus().Snapshot()

	if err := s.Apply(wire.LeaveRoomResponse{RoomID: 999}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Bus().Snapshot().Version == before.Version {
		t.Fatal("LeavedRoom must publish even for an unknown room")
	}
}

func TestApplyUpdatedRoomName(t *testing.T) {
	s := seeded(t)

	if err := s.Apply(wire.NewRoomNameResponse{RoomID: 10, Name: "renamed"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for _, item := range s.Rooms() {
		if item.ID == 10 && item.Name != "renamed" {
			t.Fatalf("name = %q, want %q", item.Name, "renamed")
		}
	}
}

func TestApplyRoomMembers(t *testing.T) {
	s := seeded(t)

	err := s.Apply(wire.AddMembersResponse{
		RoomID: 10,
		Members: []wire.MemberInfo{
			{ID: 3, Name: "carol", Rank: wire.RankMember},
			{ID: 4, Name: "dave", Rank: wire.RankMember},
		},
	})
	if err != nil {
		t.Fatalf("Apply(AddedRoomMembers): %v", err)
	}
	if got := len(s.Members(10)); got != 4 {
		t.Fatalf("members = %d, want 4", got)
	}

	err = s.Apply(wire.DeleteMembersResponse{RoomID: 10, MemberIDs: []int64{2, 4}})
	if err != nil {
		t.Fatalf("Apply(DeletedRoomMembers): %v", err)
	}
	members := s.Members(10)
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
	for _, m := range members {
		if m.ID == 2 || m.ID == 4 {
			t.Fatalf("member %d should be removed", m.ID)
		}
	}

	snap := s.Bus().Snapshot()
	if snap.Action.Kind != trigger.Member || snap.Action.ID != 10 {
		t.Fatalf("classification = %+v, want Member/10", snap.Action)
	}
}

func TestApplyAddFriend(t *testing.T) {
	s := seeded(t)

	if err := s.Apply(wire.AddFriendResponse{Friend: friend(5, "erin", wire.StatusAdding, true)}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	out := s.OutgoingFriends()
	if len(out) != 1 || out[0].ID != 5 {
		t.Fatalf("outgoing = %+v, want erin", out)
	}
	if snap := s.Bus().Snapshot(); snap.Action.Kind != trigger.NewFriend {
		t.Fatalf("classification = %v, want NewFriend", snap.Action.Kind)
	}
}

func TestApplyAcceptedFriend(t *testing.T) {
	s := seeded(t)
	s.SetCurrentFriend(3)
	before := len(s.IncomingFriends()) + len(s.AcceptedFriends()) + len(s.OutgoingFriends())

	if err := s.Apply(wire.AcceptFriendResponse{Friend: friend(3, "carol", wire.StatusAccepted, false)}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	after := len(s.IncomingFriends()) + len(s.AcceptedFriends()) + len(s.OutgoingFriends())
	if after != before {
		t.Fatalf("friend count changed: %d -> %d", before, after)
	}
	if got := s.IncomingFriends(); len(got) != 0 {
		t.Fatalf("incoming = %+v, want none", got)
	}
	f, ok := s.FriendByID(3)
	if !ok || f.Relation.Kind != FriendRelation {
		t.Fatalf("friend 3 = %+v ok=%v, want accepted", f, ok)
	}

	snap := s.Bus().Snapshot()
	want := trigger.Action{Kind: trigger.Friend, ID: 3, CurrentID: 3}
	if snap.Action != want {
		t.Fatalf("classification = %+v, want %+v", snap.Action, want)
	}
}

func TestApplyRefusedFriend(t *testing.T) {
	for _, tt := range []struct {
		name     string
		friendID int64
		publish  bool
	}{
		{"known", 3, true},
		{"unknown", 999, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t)
			before := s.Bus().Snapshot()

			if err := s.Apply(wire.RefuseFriendResponse{FriendID: tt.friendID}); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			published := s.Bus().Snapshot().Version != before.Version
			if published != tt.publish {
				t.Fatalf("published = %v, want %v", published, tt.publish)
			}
			if _, ok := s.FriendByID(tt.friendID); ok && tt.friendID == 3 {
				t.Fatal("refused friend still present")
			}
		})
	}
}

func TestApplyDeletedFriend(t *testing.T) {
	s := seeded(t)

	if err := s.Apply(wire.DeleteFriendResponse{FriendID: 2}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := s.FriendByID(2); ok {
		t.Fatal("deleted friend still present")
	}
	if snap := s.Bus().Snapshot(); snap.Action.Kind != trigger.Friend {
		t.Fatalf("classification = %v, want Friend", snap.Action.Kind)
	}
}

func TestApplyUserRooms(t *testing.T) {
	s := seeded(t)

	err := s.Apply(wire.UserRoomsResponse{
		Rooms: []wire.RoomInfo{publicRoom(30, "fresh", msg(9, 2, "hi", at(8)))},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := roomIDs(s.Rooms()); !equalIDs(got, []int64{30}) {
		t.Fatalf("rooms = %v, want [30]", got)
	}
	// Friends survive a rooms-only refresh.
	if _, ok := s.FriendByID(2); !ok {
		t.Fatal("friends lost on UserRooms")
	}
}

func TestApplyUserFriends(t *testing.T) {
	s := seeded(t)

	err := s.Apply(wire.UserFriendsResponse{
		Friends: []wire.FriendInfo{friend(7, "grace", wire.StatusAccepted, false)},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := s.FriendByID(2); ok {
		t.Fatal("stale friend survived refresh")
	}
	if _, ok := s.FriendByID(7); !ok {
		t.Fatal("refreshed friend missing")
	}
	// Rooms survive a friends-only refresh.
	if len(s.Rooms()) != 3 {
		t.Fatalf("rooms = %d, want 3", len(s.Rooms()))
	}
}
