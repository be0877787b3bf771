package repositories

import (
	"direct-chat/errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Key layout. Ids are zero padded to 20 digits and timestamps to 19 so that
// lexicographical order is numerical order during prefix scans.
//
//	user:{id}                       -> user record
//	user:email:{email}              -> user id
//	contact:{owner}:{contact}       -> contact record
//	chat:{id}                       -> chat record
//	chat:pair:{low}:{high}          -> chat id
//	chat:user:{user}:{chat}         -> empty
//	msg:{chat}:{unixnano}:{id}      -> message record
//	msg:id:{id}                     -> message key
//	blacklist:{word}                -> empty
const (
	userSequenceKey    = "seq:user"
	chatSequenceKey    = "seq:chat"
	messageSequenceKey = "seq:msg"
	sequenceBandwidth  = 100
	maxTxnAttempts     = 5
)

func userKey(id uint64) []byte {
	return []byte(fmt.Sprintf("user:%020d", id))
}

func userEmailKey(email string) []byte {
	return []byte("user:email:" + email)
}

func userPrefix() []byte {
	// "user:0" excludes the email index, ids are padded with leading zeros.
	return []byte("user:0")
}

func contactKey(owner, contact uint64) []byte {
	return []byte(fmt.Sprintf("contact:%020d:%020d", owner, contact))
}

func contactPrefix(owner uint64) []byte {
	return []byte(fmt.Sprintf("contact:%020d:", owner))
}

func chatKey(id uint64) []byte {
	return []byte(fmt.Sprintf("chat:%020d", id))
}

func chatPairKey(low, high uint64) []byte {
	return []byte(fmt.Sprintf("chat:pair:%020d:%020d", low, high))
}

func chatUserKey(user, chat uint64) []byte {
	return []byte(fmt.Sprintf("chat:user:%020d:%020d", user, chat))
}

func chatUserPrefix(user uint64) []byte {
	return []byte(fmt.Sprintf("chat:user:%020d:", user))
}

func messageKey(chat uint64, unixNano int64, id uint64) []byte {
	return []byte(fmt.Sprintf("msg:%020d:%019d:%020d", chat, unixNano, id))
}

func messagePrefix(chat uint64) []byte {
	return []byte(fmt.Sprintf("msg:%020d:", chat))
}

func messageIDKey(id uint64) []byte {
	return []byte(fmt.Sprintf("msg:id:%020d", id))
}

func blacklistKey(word string) []byte {
	return []byte("blacklist:" + word)
}

func blacklistPrefix() []byte {
	return []byte("blacklist:")
}

// update runs fn in a read-write transaction and replays it when Badger
// reports a conflict with a concurrent transaction. fn must be idempotent:
// it is re-evaluated against the state committed by the winner.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// getValue copies the value stored under key. notFound is returned when the
// key does not exist.
func getValue(txn *badger.Txn, key []byte, notFound error) ([]byte, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// scan visits every value under prefix in key order.
func scan(txn *badger.Txn, prefix []byte, reverse bool, visit func(key, value []byte) (bool, error)) error {
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	options.Reverse = reverse
	it := txn.NewIterator(options)
	defer it.Close()

	seek := prefix
	if reverse {
		// Reverse iteration starts at the greatest key <= seek.
		seek = append(append([]byte{}, prefix...), 0xFF)
	}
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		next, err := visit(item.KeyCopy(nil), value)
		if err != nil {
			return err
		}
		if !next {
			return nil
		}
	}
	return nil
}

// openSequence leases ids stored under key. A read-only database gets no
// lease: its repositories serve lookups but cannot create records.
func openSequence(db *badger.DB, key string) (*badger.Sequence, error) {
	if db.Opts().ReadOnly {
		return nil, nil
	}
	seq, err := db.GetSequence([]byte(key), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return seq, nil
}

// releaseSequence returns the unused part of the id lease.
func releaseSequence(seq *badger.Sequence) error {
	if seq == nil {
		return nil
	}
	return seq.Release()
}

// nextID draws the next id from a Badger sequence. Ids start at 1.
func nextID(seq *badger.Sequence) (uint64, error) {
	if seq == nil {
		return 0, badger.ErrReadOnlyTxn
	}
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}
