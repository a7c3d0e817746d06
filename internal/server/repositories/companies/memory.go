package companies

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]models.Company
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]models.Company)}
}

func (r *MemoryRepository) Create(_ context.Context, company *models.Company) (*models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c := *company
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.byID[c.ID] = c
	return &c, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) Update(_ context.Context, company *models.Company) (*models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[company.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *company
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	r.byID[c.ID] = c
	return &c, nil
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

func (r *MemoryRepository) List(_ context.Context, page models.PageRequest) ([]*models.Company, int64, error) {
	page = page.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []*models.Company
	for i := page.Offset(); i < len(ids) && len(result) < page.PageSize; i++ {
		c := r.byID[ids[i]]
		result = append(result, &c)
	}
	return result, int64(len(ids)), nil
}
