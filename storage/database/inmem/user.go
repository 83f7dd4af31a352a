package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, profile *user.StudentProfile) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.users[usr.ID]; ok {
		return user.User{}, uniqueViolation("users.id %s", usr.ID)
	}
	for _, u := range repo.db.users {
		if u.Email == usr.Email {
			return user.User{}, uniqueViolation("users.email %s", usr.Email)
		}
	}
	if profile != nil && profile.ParentID != nil {
		if _, ok := repo.db.users[*profile.ParentID]; !ok {
			return user.User{}, foreignKeyViolation("parent %s", *profile.ParentID)
		}
	}

	repo.db.users[usr.ID] = &usr
	if profile != nil {
		p := *profile
		p.StudentID = usr.ID
		repo.db.profiles[usr.ID] = &p
	}
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, core.ErrNotFound
	}
	if filter.Email != "" {
		for _, usr := range repo.db.users {
			if usr.Email == filter.Email {
				return *usr, nil
			}
		}
	}
	return user.User{}, core.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		if filter.Role == "" || usr.Role == filter.Role {
			users = append(users, *usr)
		}
	}

	sort.SliceStable(users, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareUsers(users[i], users[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func compareUsers(a, b user.User, field string) int {
	switch field {
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	case "email":
		return compareStrings(a.Email, b.Email)
	case "first_name":
		return compareStrings(a.FirstName, b.FirstName)
	case "last_name":
		return compareStrings(a.LastName, b.LastName)
	case "role":
		return compareStrings(string(a.Role), string(b.Role))
	}
	return 0
}

func (repo *userRepository) CountUsers(_ context.Context, role core.Role) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var n int
	for _, usr := range repo.db.users {
		if role == "" || usr.Role == role {
			n++
		}
	}
	return n, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// only names and password are mutable
	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, core.ErrNotFound
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	origUsr.FirstName = usr.FirstName
	origUsr.LastName = usr.LastName
	return *origUsr, nil
}

func (repo *userRepository) GetProfile(_ context.Context, studentID string) (user.StudentProfile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.profiles[studentID]; ok {
		return *p, nil
	}
	return user.StudentProfile{}, core.ErrNotFound
}

func (repo *userRepository) QueryProfiles(_ context.Context, filter user.ProfileFilter) ([]user.Child, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	children := make([]user.Child, 0)
	for _, p := range repo.db.profiles {
		if filter.ParentID != "" && (p.ParentID == nil || *p.ParentID != filter.ParentID) {
			continue
		}
		if !restrict(filter.StudentIDs, p.StudentID) {
			continue
		}
		children = append(children, user.Child{StudentProfile: *p, User: repo.db.person(p.StudentID)})
	}

	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i].User, children[j].User
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	return children, nil
}

func (repo *userRepository) UpdateProfile(_ context.Context, profile user.StudentProfile) (user.StudentProfile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.profiles[profile.StudentID]
	if !ok {
		return user.StudentProfile{}, core.ErrNotFound
	}
	if profile.ParentID != nil {
		if _, ok := repo.db.users[*profile.ParentID]; !ok {
			return user.StudentProfile{}, foreignKeyViolation("parent %s", *profile.ParentID)
		}
	}
	*orig = profile
	return *orig, nil
}
