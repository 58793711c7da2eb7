package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Event errors.
var (
	ErrUnknownEvent = errors.New("wire: unknown event tag")
	ErrBadEnvelope  = errors.New("wire: malformed event envelope")
)

// ClientEvent is one variant of the client→server union. The set of
// implementations in this package is closed; the server rejects anything
// else.
type ClientEvent interface {
	// ClientTag returns the variant tag used on the wire.
	ClientTag() string
}

// ServerEvent is one variant of the server→client union.
type ServerEvent interface {
	// ServerTag returns the variant tag used on the wire.
	ServerTag() string
}

// Unit client variants. They carry no payload and serialize as bare strings.
type (
	// Close asks the server to end the session.
	Close struct{}

	// Initialization primes server-side session state right after the
	// socket opens. The server answers with Initialized.
	Initialization struct{}

	// GetUserRooms requests a full room snapshot (answered by UserRooms).
	GetUserRooms struct{}

	// GetUserFriends requests a full friend snapshot (answered by UserFriends).
	GetUserFriends struct{}
)

func (Close) ClientTag() string          { return "Close" }
func (Initialization) ClientTag() string { return "Initialization" }
func (GetUserRooms) ClientTag() string   { return "GetUserRooms" }
func (GetUserFriends) ClientTag() string { return "GetUserFriends" }

// Payload-carrying client variants are the request types themselves.
func (NewMessageRequest) ClientTag() string    { return "SendMessage" }
func (NewRoomRequest) ClientTag() string       { return "CreateRoom" }
func (DeleteRoomRequest) ClientTag() string    { return "DeleteRoom" }
func (NewRoomNameRequest) ClientTag() string   { return "UpdateRoomName" }
func (LeaveRoomRequest) ClientTag() string     { return "LeaveRoom" }
func (AddMembersRequest) ClientTag() string    { return "AddMembers" }
func (DeleteMembersRequest) ClientTag() string { return "DeleteMembers" }
func (AddFriendRequest) ClientTag() string     { return "AddFriend" }
func (AcceptFriendRequest) ClientTag() string  { return "AcceptFriend" }
func (RefuseFriendRequest) ClientTag() string  { return "RefuseFriend" }
func (DeleteFriendRequest) ClientTag() string  { return "DeleteFriend" }

// ServerClose is the server-initiated Close variant. Unlike every other
// server variant its payload is a bare string, not an object.
type ServerClose struct {
	Reason string
}

func (ServerClose) ServerTag() string { return "Close" }

// Payload-carrying server variants are the response types themselves.
func (InitialResponse) ServerTag() string       { return "Initialized" }
func (NewMessageResponse) ServerTag() string    { return "ReceiveMessage" }
func (UserRoomsResponse) ServerTag() string     { return "UserRooms" }
func (NewRoomResponse) ServerTag() string       { return "JoinedRoom" }
func (DeleteRoomResponse) ServerTag() string    { return "DeletedRoom" }
func (NewRoomNameResponse) ServerTag() string   { return "UpdatedRoomName" }
func (LeaveRoomResponse) ServerTag() string     { return "LeavedRoom" }
func (AddMembersResponse) ServerTag() string    { return "AddedRoomMembers" }
func (DeleteMembersResponse) ServerTag() string { return "DeletedRoomMembers" }
func (UserFriendsResponse) ServerTag() string   { return "UserFriends" }
func (AddFriendResponse) ServerTag() string     { return "AddFriend" }
func (AcceptFriendResponse) ServerTag() string  { return "AcceptedFriend" }
func (RefuseFriendResponse) ServerTag() string  { return "RefusedFriend" }
func (DeleteFriendResponse) ServerTag() string  { return "DeletedFriend" }

// EncodeClientEvent serializes a client event into its externally tagged
// JSON form.
func EncodeClientEvent(ev ClientEvent) ([]byte, error) {
	switch ev.(type) {
	case Close, Initialization, GetUserRooms, GetUserFriends:
		return json.Marshal(ev.ClientTag())
	}
	return encodeTagged(ev.ClientTag(), ev)
}

// EncodeServerEvent serializes a server event. The client never sends these;
// this direction exists for test servers and interop checks.
func EncodeServerEvent(ev ServerEvent) ([]byte, error) {
	if sc, ok := ev.(ServerClose); ok {
		return encodeTagged(sc.ServerTag(), sc.Reason)
	}
	return encodeTagged(ev.ServerTag(), ev)
}

func encodeTagged(tag string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(tag) + len(body) + 4)
	buf.WriteByte('{')
	buf.WriteByte('"')
	buf.WriteString(tag)
	buf.WriteString(`":`)
	buf.Write(body)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeServerEvent parses one inbound frame payload into its server event
// variant. Unknown tags and malformed envelopes are errors; the caller is
// expected to drop and log such frames.
func DecodeServerEvent(data []byte) (ServerEvent, error) {
	tag, body, err := splitEnvelope(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case "Close":
		var reason string
		if err := json.Unmarshal(body, &reason); err != nil {
			return nil, fmt.Errorf("wire: Close payload: %w", err)
		}
		return ServerClose{Reason: reason}, nil
	case "Initialized":
		return decodeBody[InitialResponse](tag, body)
	case "ReceiveMessage":
		return decodeBody[NewMessageResponse](tag, body)
	case "UserRooms":
		return decodeBody[UserRoomsResponse](tag, body)
	case "JoinedRoom":
		return decodeBody[NewRoomResponse](tag, body)
	case "DeletedRoom":
		return decodeBody[DeleteRoomResponse](tag, body)
	case "UpdatedRoomName":
		return decodeBody[NewRoomNameResponse](tag, body)
	case "LeavedRoom":
		return decodeBody[LeaveRoomResponse](tag, body)
	case "AddedRoomMembers":
		return decodeBody[AddMembersResponse](tag, body)
	case "DeletedRoomMembers":
		return decodeBody[DeleteMembersResponse](tag, body)
	case "UserFriends":
		return decodeBody[UserFriendsResponse](tag, body)
	case "AddFriend":
		return decodeBody[AddFriendResponse](tag, body)
	case "AcceptedFriend":
		return decodeBody[AcceptFriendResponse](tag, body)
	case "RefusedFriend":
		return decodeBody[RefuseFriendResponse](tag, body)
	case "DeletedFriend":
		return decodeBody[DeleteFriendResponse](tag, body)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, tag)
}

// DecodeClientEvent parses a client event frame. Used by test servers.
func DecodeClientEvent(data []byte) (ClientEvent, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
		}
		switch tag {
		case "Close":
			return Close{}, nil
		case "Initialization":
			return Initialization{}, nil
		case "GetUserRooms":
			return GetUserRooms{}, nil
		case "GetUserFriends":
			return GetUserFriends{}, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, tag)
	}

	tag, body, err := splitEnvelope(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case "SendMessage":
		return decodeBody[NewMessageRequest](tag, body)
	case "CreateRoom":
		return decodeBody[NewRoomRequest](tag, body)
	case "DeleteRoom":
		return decodeBody[DeleteRoomRequest](tag, body)
	case "UpdateRoomName":
		return decodeBody[NewRoomNameRequest](tag, body)
	case "LeaveRoom":
		return decodeBody[LeaveRoomRequest](tag, body)
	case "AddMembers":
		return decodeBody[AddMembersRequest](tag, body)
	case "DeleteMembers":
		return decodeBody[DeleteMembersRequest](tag, body)
	case "AddFriend":
		return decodeBody[AddFriendRequest](tag, body)
	case "AcceptFriend":
		return decodeBody[AcceptFriendRequest](tag, body)
	case "RefuseFriend":
		return decodeBody[RefuseFriendRequest](tag, body)
	case "DeleteFriend":
		return decodeBody[DeleteFriendRequest](tag, body)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, tag)
}

// splitEnvelope extracts the single tag and raw payload from an externally
// tagged object.
func splitEnvelope(data []byte) (string, json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if len(envelope) != 1 {
		return "", nil, fmt.Errorf("%w: want exactly one tag, got %d", ErrBadEnvelope, len(envelope))
	}
	for tag, body := range envelope {
		return tag, body, nil
	}
	return "", nil, ErrBadEnvelope
}

func decodeBody[T any](tag string, body json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("wire: %s payload: %w", tag, err)
	}
	return v, nil
}
