package client

import "github.com/parley-chat/parley/pkg/wire"

// Typed send operations, one per client event. Each validates its payload
// first and returns the validation error without transmitting.

// SendMessage posts a message to a room. kind is wire.KindText or
// wire.KindImg.
func (m *Manager) SendMessage(roomID int64, content, kind string) error {
	req := wire.NewMessageRequest{RoomID: roomID, Content: content, Kind: kind}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// CreateRoom asks the server for a new group room. The current user joins
// automatically: their id is prepended to memberIDs.
func (m *Manager) CreateRoom(name string, memberIDs []int64) error {
	ids := append([]int64{m.store.CurrentUserID()}, memberIDs...)
	req := wire.NewRoomRequest{Name: name, MemberIDs: ids}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// DeleteRoom removes a room the current user owns.
func (m *Manager) DeleteRoom(roomID int64) error {
	req := wire.DeleteRoomRequest{RoomID: roomID}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// UpdateRoomName renames a room.
func (m *Manager) UpdateRoomName(roomID int64, name string) error {
	req := wire.NewRoomNameRequest{RoomID: roomID, Name: name}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// LeaveRoom withdraws the current user from a room.
func (m *Manager) LeaveRoom(roomID int64) error {
	req := wire.LeaveRoomRequest{RoomID: roomID}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// AddMembers invites users into a room.
func (m *Manager) AddMembers(roomID int64, memberIDs []int64) error {
	req := wire.AddMembersRequest{RoomID: roomID, MemberIDs: memberIDs}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// DeleteMembers removes users from a room.
func (m *Manager) DeleteMembers(roomID int64, memberIDs []int64) error {
	req := wire.DeleteMembersRequest{RoomID: roomID, MemberIDs: memberIDs}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// AddFriend sends a friend request.
func (m *Manager) AddFriend(friendID int64) error {
	req := wire.AddFriendRequest{FriendID: friendID}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// AcceptFriend accepts a pending friend request.
func (m *Manager) AcceptFriend(friendID int64) error {
	req := wire.AcceptFriendRequest{FriendID: friendID}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// RefuseFriend declines a pending friend request.
func (m *Manager) RefuseFriend(friendID int64) error {
	req := wire.RefuseFriendRequest{FriendID: friendID}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// DeleteFriend removes an established friend.
func (m *Manager) DeleteFriend(friendID int64) error {
	req := wire.DeleteFriendRequest{FriendID: friendID}
	if err := wire.Validate(req); err != nil {
		return err
	}
	return m.Send(req)
}

// RequestRooms asks for a fresh room snapshot.
func (m *Manager) RequestRooms() error {
	return m.Send(wire.GetUserRooms{})
}

// RequestFriends asks for a fresh friend snapshot.
func (m *Manager) RequestFriends() error {
	return m.Send(wire.GetUserFriends{})
}

// NotifyClose tells the server the client is going away. Callers follow up
// with Close to drop the transport.
func (m *Manager) NotifyClose() error {
	return m.Send(wire.Close{})
}
