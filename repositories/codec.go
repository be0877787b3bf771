package repositories

import (
	"direct-chat/domain"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored in Badger as protobuf wire messages. Field numbers are
// part of the on-disk format and must never be reused.

const (
	userFieldID        protowire.Number = 1
	userFieldName      protowire.Number = 2
	userFieldEmail     protowire.Number = 3
	userFieldAbout     protowire.Number = 4
	userFieldStatus    protowire.Number = 5
	userFieldLastSeen  protowire.Number = 6
	userFieldCreatedAt protowire.Number = 7
)

const (
	contactFieldOwner     protowire.Number = 1
	contactFieldContact   protowire.Number = 2
	contactFieldCreatedAt protowire.Number = 3
)

const (
	chatFieldID        protowire.Number = 1
	chatFieldUserOne   protowire.Number = 2
	chatFieldUserTwo   protowire.Number = 3
	chatFieldCreatedAt protowire.Number = 4
)

const (
	messageFieldID        protowire.Number = 1
	messageFieldChat      protowire.Number = 2
	messageFieldAuthor    protowire.Number = 3
	messageFieldBody      protowire.Number = 4
	messageFieldCreatedAt protowire.Number = 5
	messageFieldStatus    protowire.Number = 6
)

func marshalUser(u domain.User) []byte {
	var b []byte
	b = appendUint(b, userFieldID, uint64(u.ID))
	b = appendString(b, userFieldName, u.Name)
	b = appendString(b, userFieldEmail, u.Email)
	b = appendString(b, userFieldAbout, u.About)
	b = appendString(b, userFieldStatus, string(u.Status))
	b = appendTime(b, userFieldLastSeen, u.LastSeen)
	b = appendTime(b, userFieldCreatedAt, u.CreatedAt)
	return b
}

func unmarshalUser(b []byte) (domain.User, error) {
	var u domain.User
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case userFieldID:
			return consumeUint(typ, b, (*uint64)(&u.ID))
		case userFieldName:
			return consumeString(typ, b, &u.Name)
		case userFieldEmail:
			return consumeString(typ, b, &u.Email)
		case userFieldAbout:
			return consumeString(typ, b, &u.About)
		case userFieldStatus:
			return consumeString(typ, b, (*string)(&u.Status))
		case userFieldLastSeen:
			return consumeTime(typ, b, &u.LastSeen)
		case userFieldCreatedAt:
			return consumeTime(typ, b, &u.CreatedAt)
		}
		return 0, false
	})
	return u, err
}

func marshalContact(c domain.Contact) []byte {
	var b []byte
	b = appendUint(b, contactFieldOwner, uint64(c.OwnerID))
	b = appendUint(b, contactFieldContact, uint64(c.ContactID))
	b = appendTime(b, contactFieldCreatedAt, c.CreatedAt)
	return b
}

func unmarshalContact(b []byte) (domain.Contact, error) {
	var c domain.Contact
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case contactFieldOwner:
			return consumeUint(typ, b, (*uint64)(&c.OwnerID))
		case contactFieldContact:
			return consumeUint(typ, b, (*uint64)(&c.ContactID))
		case contactFieldCreatedAt:
			return consumeTime(typ, b, &c.CreatedAt)
		}
		return 0, false
	})
	return c, err
}

func marshalChat(c domain.Chat) []byte {
	var b []byte
	b = appendUint(b, chatFieldID, uint64(c.ID))
	b = appendUint(b, chatFieldUserOne, uint64(c.UserOne))
	b = appendUint(b, chatFieldUserTwo, uint64(c.UserTwo))
	b = appendTime(b, chatFieldCreatedAt, c.CreatedAt)
	return b
}

func unmarshalChat(b []byte) (domain.Chat, error) {
	var c domain.Chat
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case chatFieldID:
			return consumeUint(typ, b, (*uint64)(&c.ID))
		case chatFieldUserOne:
			return consumeUint(typ, b, (*uint64)(&c.UserOne))
		case chatFieldUserTwo:
			return consumeUint(typ, b, (*uint64)(&c.UserTwo))
		case chatFieldCreatedAt:
			return consumeTime(typ, b, &c.CreatedAt)
		}
		return 0, false
	})
	return c, err
}

func marshalMessage(m domain.Message) []byte {
	var b []byte
	b = appendUint(b, messageFieldID, uint64(m.ID))
	b = appendUint(b, messageFieldChat, uint64(m.ChatID))
	b = appendUint(b, messageFieldAuthor, uint64(m.AuthorID))
	b = appendString(b, messageFieldBody, m.Body)
	b = appendTime(b, messageFieldCreatedAt, m.CreatedAt)
	b = appendString(b, messageFieldStatus, string(m.Status))
	return b
}

func unmarshalMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case messageFieldID:
			return consumeUint(typ, b, (*uint64)(&m.ID))
		case messageFieldChat:
			return consumeUint(typ, b, (*uint64)(&m.ChatID))
		case messageFieldAuthor:
			return consumeUint(typ, b, (*uint64)(&m.AuthorID))
		case messageFieldBody:
			return consumeString(typ, b, &m.Body)
		case messageFieldCreatedAt:
			return consumeTime(typ, b, &m.CreatedAt)
		case messageFieldStatus:
			return consumeString(typ, b, (*string)(&m.Status))
		}
		return 0, false
	})
	return m, err
}

// marshalID encodes a bare id used as the value of index keys.
func marshalID(id uint64) []byte {
	return protowire.AppendVarint(nil, id)
}

func unmarshalID(b []byte) (uint64, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return v, nil
}

// fieldDecoder consumes the value of one field and returns the number of bytes
// read. handled is false for fields it does not know, which are then skipped.
type fieldDecoder func(num protowire.Number, typ protowire.Type, b []byte) (n int, handled bool)

func decodeFields(b []byte, decode fieldDecoder) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n, handled := decode(num, typ, b)
		if !handled {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendTime stores nanoseconds since epoch; the zero time is omitted.
func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return b
	}
	return appendUint(b, num, uint64(t.UnixNano()))
}

func consumeUint(typ protowire.Type, b []byte, dst *uint64) (int, bool) {
	if typ != protowire.VarintType {
		return 0, false
	}
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = v
	}
	return n, true
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, bool) {
	if typ != protowire.BytesType {
		return 0, false
	}
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n, true
}

func consumeTime(typ protowire.Type, b []byte, dst *time.Time) (int, bool) {
	var nanos uint64
	n, handled := consumeUint(typ, b, &nanos)
	if handled && n >= 0 && nanos != 0 {
		*dst = time.Unix(0, int64(nanos)).UTC()
	}
	return n, handled
}
