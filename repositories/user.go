package repositories

import (
	"encoding/json"
	errs "errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"dm-lab/domain"
	"dm-lab/errors"
)

type IUserRepository interface {
	CreateUser(fullName, email, hashedPassword string) (string, error)
	GetUserByEmail(email string) (StoredUser, error)
	GetUserByID(id string) (StoredUser, error)
	UpdateProfilePic(id, profilePic string) (domain.User, error)
	ListUsersExcept(id string) ([]domain.User, error)
	DeleteUser(id string) error
}

// StoredUser is the persisted account record, password hash included.
// Only the embedded domain.User ever leaves the repository layer boundary
// towards handlers.
type StoredUser struct {
	domain.User
	PasswordHash string `json:"passwordHash"`
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// CreateUser persists the user under both the email and the id key in one
// transaction, so either lookup path sees the same record.
// It returns the newly generated user id.
func (u UserRepository) CreateUser(fullName, email, hashedPassword string) (string, error) {
	newID := uuid.NewString()
	user := StoredUser{
		User: domain.User{
			ID:        newID,
			FullName:  fullName,
			Email:     email,
			Roles:     []string{"user"},
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: hashedPassword,
	}

	data, err := json.Marshal(user)
	if err != nil {
		return "", err
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte("user:email:" + email)
		if _, err := txn.Get(emailKey); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey, data); err != nil {
			return err
		}
		return txn.Set([]byte("user:id:"+newID), data)
	})

	return newID, err
}

func (u UserRepository) GetUserByEmail(email string) (StoredUser, error) {
	return u.get("user:email:" + email)
}

func (u UserRepository) GetUserByID(id string) (StoredUser, error) {
	return u.get("user:id:" + id)
}

// UpdateProfilePic replaces the profile picture reference on both keys.
func (u UserRepository) UpdateProfilePic(id, profilePic string) (domain.User, error) {
	var updated domain.User
	err := u.db.Update(func(txn *badger.Txn) error {
		user, err := getUser(txn, "user:id:"+id)
		if err != nil {
			return err
		}
		user.ProfilePic = profilePic
		updated = user.User

		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte("user:id:"+id), data); err != nil {
			return err
		}
		return txn.Set([]byte("user:email:"+user.Email), data)
	})
	return updated, err
}

// ListUsersExcept returns every account but the given one, for the
// contacts sidebar.
func (u UserRepository) ListUsersExcept(id string) ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:id:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user StoredUser
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &user)
			})
			if err != nil {
				return err
			}
			if user.ID == id {
				continue
			}
			users = append(users, user.User)
		}
		return nil
	})
	return users, err
}

// DeleteUser removes both keys of the account.
func (u UserRepository) DeleteUser(id string) error {
	return u.db.Update(func(txn *badger.Txn) error {
		user, err := getUser(txn, "user:id:"+id)
		if err != nil {
			return err
		}
		if err := txn.Delete([]byte("user:id:" + id)); err != nil {
			return err
		}
		return txn.Delete([]byte("user:email:" + user.Email))
	})
}

func (u UserRepository) get(key string) (StoredUser, error) {
	var user StoredUser
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, key)
		return err
	})
	return user, err
}

func getUser(txn *badger.Txn, key string) (StoredUser, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errs.Is(err, badger.ErrKeyNotFound) {
			return StoredUser{}, errors.ErrUserNotFound
		}
		return StoredUser{}, err
	}
	var user StoredUser
	if err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, &user)
	}); err != nil {
		return StoredUser{}, err
	}
	return user, nil
}
