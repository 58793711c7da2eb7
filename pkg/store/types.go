package store

import (
	"time"

	"github.com/parley-chat/parley/pkg/wire"
)

// RelationKind is the current user's relationship to some other user.
type RelationKind int

const (
	// Stranger is no relationship at all.
	Stranger RelationKind = iota

	// Yourself marks the current user.
	Yourself

	// FriendRelation is an accepted friendship; Relation.RoomID names the
	// backing private room.
	FriendRelation

	// OutgoingAdding is a request the current user sent and the other side
	// has not answered.
	OutgoingAdding

	// IncomingAdding is a request awaiting the current user's answer.
	IncomingAdding
)

// Relation pairs a kind with the private-room id that only the accepted
// case carries.
type Relation struct {
	Kind   RelationKind
	RoomID int64
}

// relationOf maps the server's status/first/room_id triple to a Relation.
func relationOf(f wire.FriendInfo) Relation {
	switch f.Status {
	case wire.StatusAccepted:
		return Relation{Kind: FriendRelation, RoomID: f.RoomID}
	case wire.StatusAdding:
		if f.First {
			return Relation{Kind: OutgoingAdding}
		}
		return Relation{Kind: IncomingAdding}
	default:
		return Relation{Kind: Stranger}
	}
}

// Message is one message of a room.
type Message struct {
	ID       int64
	SenderID int64
	Name     string
	Avatar   string
	Content  string
	Kind     string
	SendAt   time.Time
}

func messageOf(m wire.MessageInfo) Message {
	return Message{
		ID:       m.ID,
		SenderID: m.SID,
		Name:     m.Name,
		Avatar:   m.Avatar,
		Content:  m.Content,
		Kind:     m.Kind,
		SendAt:   m.SendAt,
	}
}

// Member is one user's membership in a room.
type Member struct {
	ID     int64
	Name   string
	Avatar string
	Rank   string
}

func memberOf(m wire.MemberInfo) Member {
	return Member{ID: m.ID, Name: m.Name, Avatar: m.Avatar, Rank: m.Rank}
}

// Room is the locally tracked state of one conversation. Unreads counts
// messages received while the room was not the active selection.
type Room struct {
	ID       int64
	Name     string
	Cover    string
	Category string
	Unreads  int64
	Members  []Member
	Messages []Message
}

func roomOf(r wire.RoomInfo) Room {
	members := make([]Member, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, memberOf(m))
	}
	messages := make([]Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		messages = append(messages, messageOf(m))
	}
	return Room{
		ID:       r.ID,
		Name:     r.Name,
		Cover:    r.Cover,
		Category: r.Category,
		Members:  members,
		Messages: messages,
	}
}

// Friend is one entry of the friend list with its derived relation.
type Friend struct {
	ID       int64
	Username string
	Nickname string
	Avatar   string
	Bio      string
	Relation Relation
}

func friendOf(f wire.FriendInfo) Friend {
	return Friend{
		ID:       f.ID,
		Username: f.Username,
		Nickname: f.Nickname,
		Avatar:   f.Avatar,
		Bio:      f.Bio,
		Relation: relationOf(f),
	}
}

// friendFromUser builds a Friend view of an arbitrary user profile, e.g. a
// username lookup result shown in the add-friend dialog.
func friendFromUser(u wire.UserInfo, relation Relation) Friend {
	return Friend{
		ID:       u.ID,
		Username: u.Username,
		Nickname: u.Nickname,
		Avatar:   u.Avatar,
		Bio:      u.Bio,
		Relation: relation,
	}
}
