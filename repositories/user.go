//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"dm-relay/domain"
	"dm-relay/errors"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
)

type IUserRepository interface {
	CreateUser(username, displayName, passwordHash string) (User, error)
	GetByUsername(username string) (User, error)
	GetByID(id domain.UserID) (User, error)
	Search(ctx context.Context, term string, excludeID domain.UserID, limit int) ([]domain.Profile, error)
}

// User is the repository-level representation of an account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRepository keeps accounts in BadgerDB under two keys:
// "user:name:{username}" holds the record, "user:id:{id_padded}" points
// back to the username so lookups by id stay a single extra Get.
// Usernames and display names are additionally indexed in Bluge to
// serve the directory search.
type UserRepository struct {
	db    *badger.DB
	index *bluge.Writer
	seq   *badger.Sequence
	log   *slog.Logger
}

func NewUserRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger) (*UserRepository, error) {
	seq, err := db.GetSequence([]byte("seq:user"), 16)
	if err != nil {
		return nil, fmt.Errorf("opening user id sequence: %w", err)
	}
	return &UserRepository{db: db, index: index, seq: seq, log: log}, nil
}

// Close releases the unused tail of the id sequence.
func (u *UserRepository) Close() error {
	return u.seq.Release()
}

// CreateUser persists a new account and indexes it for search.
// Uniqueness of the username is checked inside the write transaction.
func (u *UserRepository) CreateUser(username, displayName, passwordHash string) (User, error) {
	id, err := u.nextID()
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           id,
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		nameKey := []byte("user:name:" + username)
		if _, err := txn.Get(nameKey); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(nameKey, data); err != nil {
			return err
		}
		return txn.Set(idKey(id), []byte(username))
	})
	if err != nil {
		return User{}, err
	}

	if err := u.indexUser(user); err != nil {
		// The account exists and is usable; it just won't show up in
		// directory search until reindexed.
		u.log.Error("failed to index user for search", "username", username, "error", err)
	}
	return user, nil
}

func (u *UserRepository) GetByUsername(username string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:name:" + username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (u *UserRepository) GetByID(id domain.UserID) (User, error) {
	var username string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(int64(id)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			username = string(val)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u.GetByUsername(username)
}

// Search queries the Bluge index over usernames and display names and
// returns public profiles, excluding the requesting user.
func (u *UserRepository) Search(ctx context.Context, term string, excludeID domain.UserID, limit int) ([]domain.Profile, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	reader, err := u.index.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	query := bluge.NewBooleanQuery().
		AddShould(bluge.NewPrefixQuery(term).SetField("username")).
		AddShould(bluge.NewMatchQuery(term).SetField("username")).
		AddShould(bluge.NewMatchQuery(term).SetField("display_name"))
	query.SetMinShould(1)

	// Ask for one extra hit so excluding the caller cannot shrink a
	// full page.
	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit+1, query))
	if err != nil {
		return nil, err
	}

	var profiles []domain.Profile
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var profile domain.Profile
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				id, _ := strconv.ParseInt(string(value), 10, 64)
				profile.ID = domain.UserID(id)
			case "username":
				profile.Username = string(value)
			case "display_name":
				profile.DisplayName = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}

		if profile.ID == excludeID {
			continue
		}
		profiles = append(profiles, profile)
		if len(profiles) == limit {
			break
		}
	}
	return profiles, nil
}

func (u *UserRepository) indexUser(user User) error {
	doc := bluge.NewDocument(strconv.FormatInt(user.ID, 10))
	doc.AddField(bluge.NewTextField("username", user.Username).StoreValue())
	doc.AddField(bluge.NewTextField("display_name", user.DisplayName).StoreValue())
	return u.index.Update(doc.ID(), doc)
}

func (u *UserRepository) nextID() (int64, error) {
	id, err := u.seq.Next()
	if err != nil {
		return 0, err
	}
	// Ids start at 1; 0 is reserved as "no user".
	return int64(id) + 1, nil
}

func idKey(id int64) []byte {
	return []byte(fmt.Sprintf("user:id:%019d", id))
}
