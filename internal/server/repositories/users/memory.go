package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/server/models"
)

// MemoryRepository keeps users in a map. It backs tests and the "memory"
// DSN; nothing survives a restart.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*models.User
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]*models.User), now: time.Now}
}

func clone(u *models.User) *models.User {
	c := *u
	if u.RefreshToken != nil {
		tok := *u.RefreshToken
		c.RefreshToken = &tok
	}
	if u.CompanyID != nil {
		id := *u.CompanyID
		c.CompanyID = &id
	}
	return &c
}

// lookup must be called with mu held.
func (r *MemoryRepository) lookup(match func(*models.User) bool) (*models.User, bool) {
	for _, u := range r.byID {
		if match(u) {
			return u, true
		}
	}
	return nil, false
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.lookup(func(u *models.User) bool { return u.Email == email })
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.lookup(func(u *models.User) bool { return u.Email == email })
	return ok, nil
}

func (r *MemoryRepository) FindByRefreshTokenAndEmail(_ context.Context, token, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.lookup(func(u *models.User) bool {
		return u.Email == email && u.RefreshToken != nil && *u.RefreshToken == token
	})
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) Save(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.lookup(func(u *models.User) bool { return u.Email == user.Email && u.ID != user.ID }); taken {
		return nil, common.ErrDuplicateEmail
	}

	saved := clone(user)
	now := r.now()

	if saved.ID == 0 {
		r.nextID++
		saved.ID = r.nextID
		saved.CreatedAt = now
	} else {
		existing, ok := r.byID[saved.ID]
		if !ok {
			return nil, common.ErrorNotFound
		}
		saved.CreatedAt = existing.CreatedAt
	}
	saved.UpdatedAt = now

	r.byID[saved.ID] = saved
	return clone(saved), nil
}

func (r *MemoryRepository) SetRefreshToken(_ context.Context, id int64, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	if token != nil {
		t := *token
		token = &t
	}
	user.RefreshToken = token
	user.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) List(_ context.Context, filter models.UserFilter, page models.PageRequest) ([]*models.User, int64, error) {
	page = page.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.byID))
	for id, u := range r.byID {
		if containsFold(u.Email, filter.Email) && containsFold(u.Name, filter.Name) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]*models.User, 0, page.PageSize)
	for i := page.Offset(); i < len(ids) && len(result) < page.PageSize; i++ {
		result = append(result, clone(r.byID[ids[i]]))
	}
	return result, int64(len(ids)), nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}
