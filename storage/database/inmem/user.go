package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/bochengwang975-blip/campus/core/user"
)

type userRepository struct {
	db *userTable
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, u := range repo.db.table {
		if u.Username == usr.Username {
			return user.User{}, user.ErrUsernameExists
		}
	}
	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	usr.Roles = copyStrings(usr.Roles)
	repo.db.table[usr.ID] = &usr
	repo.db.seq = append(repo.db.seq, usr.ID)
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.table[filter.ID]; ok && (filter.Username == "" || usr.Username == filter.Username) {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Username != "" {
		for _, id := range repo.db.seq {
			if usr := repo.db.table[id]; usr.Username == filter.Username {
				return *usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0, len(repo.db.seq))
	for _, id := range repo.db.seq {
		usr := repo.db.table[id]
		if matchUser(*usr, filter) {
			users = append(users, *usr)
		}
	}
	return users, nil
}

func matchUser(usr user.User, filter *user.QueryFilter) bool {
	if filter.IsEmpty() {
		return true
	}
	if filter.IDs != nil {
		var found bool
		for _, id := range filter.IDs {
			if usr.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Roles != nil {
		var found bool
		for _, role := range filter.Roles {
			for _, r := range usr.Roles {
				if strings.HasPrefix(r, role) {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}
