package wire

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestEncodeClientEvent_UnitVariants(t *testing.T) {
	tests := []struct {
		name string
		ev   ClientEvent
		want string
	}{
		{"close", Close{}, `"Close"`},
		{"initialization", Initialization{}, `"Initialization"`},
		{"get_user_rooms", GetUserRooms{}, `"GetUserRooms"`},
		{"get_user_friends", GetUserFriends{}, `"GetUserFriends"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EncodeClientEvent(tc.ev)
			if err != nil {
				t.Fatalf("EncodeClientEvent() error = %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("EncodeClientEvent() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestEncodeClientEvent_TaggedVariants(t *testing.T) {
	tests := []struct {
		name string
		ev   ClientEvent
		want string
	}{
		{
			name: "send_message",
			ev:   NewMessageRequest{RoomID: 1, Content: "hi", Kind: KindText},
			want: `{"SendMessage":{"room_id":1,"content":"hi","kind":"text"}}`,
		},
		{
			name: "create_room",
			ev:   NewRoomRequest{Name: "gophers", MemberIDs: []int64{1, 2, 3}},
			want: `{"CreateRoom":{"name":"gophers","member_ids":[1,2,3]}}`,
		},
		{
			name: "update_room_name",
			ev:   NewRoomNameRequest{RoomID: 4, Name: "renamed"},
			want: `{"UpdateRoomName":{"room_id":4,"name":"renamed"}}`,
		},
		{
			name: "delete_members",
			ev:   DeleteMembersRequest{RoomID: 2, MemberIDs: []int64{5}},
			want: `{"DeleteMembers":{"room_id":2,"member_ids":[5]}}`,
		},
		{
			name: "accept_friend",
			ev:   AcceptFriendRequest{FriendID: 9},
			want: `{"AcceptFriend":{"friend_id":9}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EncodeClientEvent(tc.ev)
			if err != nil {
				t.Fatalf("EncodeClientEvent() error = %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("EncodeClientEvent()\n got %s\nwant %s", got, tc.want)
			}

			// The encoded form must decode back to the same variant.
			back, err := DecodeClientEvent(got)
			if err != nil {
				t.Fatalf("DecodeClientEvent() error = %v", err)
			}
			if !reflect.DeepEqual(back, tc.ev) {
				t.Errorf("round trip = %#v, want %#v", back, tc.ev)
			}
		})
	}
}

func TestDecodeServerEvent(t *testing.T) {
	sendAt := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		data string
		want ServerEvent
	}{
		{
			name: "close_bare_string",
			data: `{"Close":"session expired"}`,
			want: ServerClose{Reason: "session expired"},
		},
		{
			name: "receive_message",
			data: `{"ReceiveMessage":{"room_id":1,"message":{"id":9,"sid":5,"name":"ann","avatar":"a.png","content":"hi","kind":"text","send_at":"2024-03-01T12:30:00Z"}}}`,
			want: NewMessageResponse{
				RoomID: 1,
				Message: MessageInfo{
					ID: 9, SID: 5, Name: "ann", Avatar: "a.png",
					Content: "hi", Kind: KindText, SendAt: sendAt,
				},
			},
		},
		{
			name: "deleted_room",
			data: `{"DeletedRoom":{"room_id":7}}`,
			want: DeleteRoomResponse{RoomID: 7},
		},
		{
			name: "updated_room_name",
			data: `{"UpdatedRoomName":{"room_id":7,"name":"new"}}`,
			want: NewRoomNameResponse{RoomID: 7, Name: "new"},
		},
		{
			name: "deleted_room_members",
			data: `{"DeletedRoomMembers":{"room_id":3,"member_ids":[4,5]}}`,
			want: DeleteMembersResponse{RoomID: 3, MemberIDs: []int64{4, 5}},
		},
		{
			name: "refused_friend",
			data: `{"RefusedFriend":{"friend_id":2}}`,
			want: RefuseFriendResponse{FriendID: 2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeServerEvent([]byte(tc.data))
			if err != nil {
				t.Fatalf("DecodeServerEvent() error = %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("DecodeServerEvent() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestDecodeServerEvent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"unknown_tag", `{"Nonsense":{}}`, ErrUnknownEvent},
		{"two_tags", `{"DeletedRoom":{"room_id":1},"LeavedRoom":{"room_id":2}}`, ErrBadEnvelope},
		{"not_json", `DeletedRoom`, ErrBadEnvelope},
		{"bare_string", `"DeletedRoom"`, ErrBadEnvelope},
		{"empty_object", `{}`, ErrBadEnvelope},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeServerEvent([]byte(tc.data))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("DecodeServerEvent() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestServerEventRoundTrip(t *testing.T) {
	events := []ServerEvent{
		ServerClose{Reason: "bye"},
		InitialResponse{Rooms: []RoomInfo{}, Friends: []FriendInfo{}},
		UserRoomsResponse{Rooms: []RoomInfo{}},
		NewRoomResponse{Room: RoomInfo{ID: 1, Category: CategoryPublic}},
		LeaveRoomResponse{RoomID: 3},
		AddMembersResponse{RoomID: 3, Members: []MemberInfo{{ID: 8, Rank: RankMember}}},
		UserFriendsResponse{Friends: []FriendInfo{}},
		AddFriendResponse{Friend: FriendInfo{ID: 2, Status: StatusAdding, First: true}},
		AcceptFriendResponse{Friend: FriendInfo{ID: 2, Status: StatusAccepted, RoomID: 7}},
		DeleteFriendResponse{FriendID: 2},
	}

	for _, ev := range events {
		t.Run(ev.ServerTag(), func(t *testing.T) {
			data, err := EncodeServerEvent(ev)
			if err != nil {
				t.Fatalf("EncodeServerEvent() error = %v", err)
			}
			back, err := DecodeServerEvent(data)
			if err != nil {
				t.Fatalf("DecodeServerEvent() error = %v", err)
			}
			if !reflect.DeepEqual(back, ev) {
				t.Errorf("round trip = %#v, want %#v", back, ev)
			}
		})
	}
}

func TestTimestampFormat(t *testing.T) {
	// The server serializes chrono DateTime<Utc> as RFC 3339 with fractional
	// seconds and a literal Z; time.Time must accept and reproduce that.
	msg := MessageInfo{SendAt: time.Date(2024, 3, 1, 12, 30, 9, 375000000, time.UTC)}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `"send_at":"2024-03-01T12:30:09.375Z"`; !strings.Contains(string(data), want) {
		t.Errorf("Marshal() = %s, want substring %s", data, want)
	}

	var back MessageInfo
	if err := json.Unmarshal([]byte(`{"send_at":"2024-03-01T12:30:09.375123456Z"}`), &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.SendAt.Equal(time.Date(2024, 3, 1, 12, 30, 9, 375123456, time.UTC)) {
		t.Errorf("Unmarshal() send_at = %v", back.SendAt)
	}
}

func FuzzDecodeServerEvent(f *testing.F) {
	f.Add([]byte(`{"DeletedRoom":{"room_id":1}}`))
	f.Add([]byte(`{"Close":"x"}`))
	f.Add([]byte(`"Initialization"`))
	f.Add([]byte(`{`))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must never panic; errors are fine.
		ev, err := DecodeServerEvent(data)
		if err == nil && ev == nil {
			t.Error("nil event without error")
		}
	})
}
