package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
)

// OverrideRepository keeps day-close overrides in memory.
type OverrideRepository struct {
	mu        sync.Mutex
	overrides []domain.DayCloseOverride
	now       func() time.Time
}

// NewOverrideRepository returns an empty repository.
func NewOverrideRepository() *OverrideRepository {
	return &OverrideRepository{now: time.Now}
}

// SetClock replaces the clock used for timestamps.
func (r *OverrideRepository) SetClock(now func() time.Time) {
	r.now = now
}

func (r *OverrideRepository) WithinTx(ctx context.Context, fn func(tx repository.OverrideTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := make([]domain.DayCloseOverride, len(r.overrides))
	for i, o := range r.overrides {
		work[i] = cloneOverride(o)
	}
	tx := &overrideTx{overrides: work, now: r.now}
	if err := fn(tx); err != nil {
		return err
	}
	r.overrides = tx.overrides
	return nil
}

func (r *OverrideRepository) HasActive(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.overrides {
		if o.UserID == userID && o.Active {
			return true, nil
		}
	}
	return false, nil
}

func (r *OverrideRepository) ListByUser(_ context.Context, userID string, includeInactive bool) ([]domain.DayCloseOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.DayCloseOverride
	for _, o := range r.overrides {
		if o.UserID != userID || (!includeInactive && !o.Active) {
			continue
		}
		out = append(out, cloneOverride(o))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type overrideTx struct {
	overrides []domain.DayCloseOverride
	now       func() time.Time
}

func (t *overrideTx) DeactivateScope(_ context.Context, userID string, matterID *string, endedBy string, endedAt time.Time) (int, error) {
	return t.deactivate(func(o domain.DayCloseOverride) bool {
		return o.UserID == userID && sameScope(o.MatterID, matterID)
	}, endedBy, endedAt), nil
}

func (t *overrideTx) DeactivateAll(_ context.Context, userID string, endedBy string, endedAt time.Time) (int, error) {
	return t.deactivate(func(o domain.DayCloseOverride) bool {
		return o.UserID == userID
	}, endedBy, endedAt), nil
}

func (t *overrideTx) Insert(_ context.Context, o *domain.DayCloseOverride) error {
	o.ID = uuid.NewString()
	o.Active = true
	o.CreatedAt = t.now()
	o.EndedAt = nil
	o.EndedBy = nil
	t.overrides = append(t.overrides, cloneOverride(*o))
	return nil
}

func (t *overrideTx) deactivate(match func(domain.DayCloseOverride) bool, endedBy string, endedAt time.Time) int {
	count := 0
	for i := range t.overrides {
		o := &t.overrides[i]
		if !o.Active || !match(*o) {
			continue
		}
		at := endedAt
		by := endedBy
		o.Active = false
		o.EndedAt = &at
		o.EndedBy = &by
		count++
	}
	return count
}

func sameScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneOverride(o domain.DayCloseOverride) domain.DayCloseOverride {
	cp := o
	if o.MatterID != nil {
		v := *o.MatterID
		cp.MatterID = &v
	}
	if o.EndedAt != nil {
		v := *o.EndedAt
		cp.EndedAt = &v
	}
	if o.EndedBy != nil {
		v := *o.EndedBy
		cp.EndedBy = &v
	}
	return cp
}
