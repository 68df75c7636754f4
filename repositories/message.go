//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"dm-relay/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	CreateMessage(from, to domain.UserID, body string) (domain.Message, error)
	History(a, b domain.UserID, limit int) ([]domain.Message, error)
}

// MessageRepository persists direct messages in BadgerDB.
//
// The key is formatted as "msg:{low}:{high}:{timestamp_padded}:{id_padded}":
//  1. {low}:{high} is the pair of user ids sorted ascending, so both
//     directions of a conversation share one prefix and history is
//     symmetric in argument order.
//  2. The 19-digit zero-padded timestamp gives chronological order under
//     lexicographical comparison.
//  3. The padded message id is a collision disconnector if two messages
//     land on the same nanosecond, and preserves insertion order there.
type MessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

// NewMessageRepository opens the id sequence backing message ids.
// Ids are monotonically increasing and unique; the sequence may skip
// values across restarts, which is fine for ordering purposes.
func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte("seq:message"), 128)
	if err != nil {
		return nil, fmt.Errorf("opening message id sequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log}, nil
}

// Close releases the unused tail of the id sequence.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// storedMessage is the on-disk representation.
type storedMessage struct {
	ID         int64     `json:"id"`
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateMessage assigns id and timestamp and persists the message.
// This is the durability point of the relay: once it returns without
// error, the message survives a crash.
func (m *MessageRepository) CreateMessage(from, to domain.UserID, body string) (domain.Message, error) {
	id, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, err
	}

	record := storedMessage{
		ID:         int64(id),
		FromUserID: int64(from),
		ToUserID:   int64(to),
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}

	bytes, err := json.Marshal(record)
	if err != nil {
		return domain.Message{}, err
	}

	low, high := domain.SortedPair(from, to)
	key := fmt.Sprintf("msg:%d:%d:%019d:%019d",
		low, high,
		record.CreatedAt.UnixNano(),
		record.ID,
	)

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(record), nil
}

// History returns the most recent messages exchanged between the pair,
// capped at limit, in ascending chronological order. Thanks to the
// sorted pair prefix and the padded timestamp, a reverse prefix scan
// yields the tail of the conversation directly; the slice is then
// flipped back to ascending for the client.
func (m *MessageRepository) History(a, b domain.UserID, limit int) ([]domain.Message, error) {
	low, high := domain.SortedPair(a, b)
	prefixStr := fmt.Sprintf("msg:%d:%d:", low, high)

	var collected []storedMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past every key sharing the prefix, then walk backwards.
		seekKey := append([]byte(prefixStr), 0xFF)

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(collected) == limit {
				m.log.Debug(fmt.Sprintf("History cap of %d messages reached", limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var record storedMessage
				if err := json.Unmarshal(value, &record); err != nil {
					return err
				}
				collected = append(collected, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(lo.Reverse(collected), func(item storedMessage, _ int) domain.Message {
		return toMessage(item)
	}), nil
}

func toMessage(record storedMessage) domain.Message {
	return domain.Message{
		ID:         record.ID,
		FromUserID: domain.UserID(record.FromUserID),
		ToUserID:   domain.UserID(record.ToUserID),
		Body:       record.Body,
		CreatedAt:  record.CreatedAt,
	}
}
