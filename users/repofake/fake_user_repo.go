package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube-server/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory UserRepo. Every method runs under one lock,
// which makes SwapRefreshToken atomic per user.
type FakeUserRepo struct {
	users       map[string]*users.User
	usernameIds map[string]string // username to user id
	emailIds    map[string]string // email to user id
	lock        sync.RWMutex
	nowFunc     func() time.Time
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		usernameIds: make(map[string]string),
		emailIds:    make(map[string]string),
		nowFunc:     time.Now,
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	username := users.NormalizeLogin(user.Username)
	email := users.NormalizeLogin(user.Email)
	if _, ok := ur.usernameIds[username]; ok {
		return users.ErrAlreadyExists
	}
	if _, ok := ur.emailIds[email]; ok {
		return users.ErrAlreadyExists
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := ur.nowFunc()
	user.Username = username
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	ur.users[user.ID] = &stored
	ur.usernameIds[username] = user.ID
	ur.emailIds[email] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (ur *FakeUserRepo) GetByUsernameOrEmail(_ context.Context, login string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	login = users.NormalizeLogin(login)
	id, ok := ur.usernameIds[login]
	if !ok {
		id, ok = ur.emailIds[login]
	}
	if !ok {
		return nil, users.ErrNotFound
	}
	clone := *ur.users[id]
	return &clone, nil
}

func (ur *FakeUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	_, usernameTaken := ur.usernameIds[users.NormalizeLogin(username)]
	_, emailTaken := ur.emailIds[users.NormalizeLogin(email)]
	return usernameTaken || emailTaken, nil
}

func (ur *FakeUserRepo) UpdateAccount(_ context.Context, id string, update users.AccountUpdate) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}

	if update.Email != "" {
		email := users.NormalizeLogin(update.Email)
		if owner, taken := ur.emailIds[email]; taken && owner != id {
			return nil, users.ErrAlreadyExists
		}
		delete(ur.emailIds, u.Email)
		ur.emailIds[email] = id
		u.Email = email
	}
	if update.FullName != "" {
		u.FullName = update.FullName
	}
	if update.Avatar != "" {
		u.Avatar = update.Avatar
	}
	if update.CoverImage != "" {
		u.CoverImage = update.CoverImage
	}
	u.UpdatedAt = ur.nowFunc()

	clone := *u
	return &clone, nil
}

func (ur *FakeUserRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = ur.nowFunc()
	return nil
}

func (ur *FakeUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (ur *FakeUserRepo) SwapRefreshToken(_ context.Context, id, current, next string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	if current == "" || u.RefreshToken != current {
		return users.ErrRefreshTokenMismatch
	}
	u.RefreshToken = next
	return nil
}

// Delete removes a user, used to simulate an account disappearing while
// tokens issued for it are still in circulation.
func (ur *FakeUserRepo) Delete(_ context.Context, id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	delete(ur.usernameIds, u.Username)
	delete(ur.emailIds, u.Email)
	delete(ur.users, id)
	return nil
}
