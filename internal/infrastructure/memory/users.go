package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.s.lock(false)()
	for _, other := range r.s.data.users {
		if strings.EqualFold(other.Username, u.Username) {
			return conflict(fmt.Sprintf("username %q", u.Username))
		}
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.User, 0, len(r.s.data.users))
	for _, u := range r.s.data.users {
		u := u
		list = append(list, &u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list, nil
}

func (r *UserRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.data.users), nil
}

func (r *UserRepo) update(id string, fn func(u *entity.User)) error {
	defer r.s.lock(false)()
	u, ok := r.s.data.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	fn(&u)
	u.UpdatedAt = r.s.now()
	r.s.data.users[id] = u
	return nil
}

func (r *UserRepo) UpdateRole(_ context.Context, id string, role entity.Role) error {
	return r.update(id, func(u *entity.User) { u.Role = role })
}

func (r *UserRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.update(id, func(u *entity.User) { u.Active = active })
}

func (r *UserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	return r.update(id, func(u *entity.User) { u.PasswordHash = hash })
}

func (r *UserRepo) UpdateRecoveryPIN(_ context.Context, id, pinHash string) error {
	return r.update(id, func(u *entity.User) { u.RecoveryPINHash = pinHash })
}
