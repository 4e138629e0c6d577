package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Page selects a window of a listing.
type Page struct {
	Limit  int
	Offset int
}

// Store is the table gateway shared by every farm entity. Writes never
// cascade into associations: parents are referenced by id only.
type Store[T any] struct {
	db      *gorm.DB
	order   string
	preload []string
}

// NewStore builds a gateway ordering rows oldest first. The preload names are
// the associations loaded by Get.
func NewStore[T any](db *gorm.DB, preload ...string) *Store[T] {
	return &Store[T]{db: db, order: "created ASC, id ASC", preload: preload}
}

// WithOrder returns a copy of the store listing rows in the given order.
func (s *Store[T]) WithOrder(order string) *Store[T] {
	clone := *s
	clone.order = order
	return &clone
}

func (s *Store[T]) Create(ctx context.Context, rec *T) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error)
}

func (s *Store[T]) Get(ctx context.Context, id uint) (*T, error) {
	q := s.db.WithContext(ctx)
	for _, p := range s.preload {
		q = q.Preload(p)
	}

	var rec T
	if err := q.First(&rec, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (s *Store[T]) List(ctx context.Context, page Page) ([]T, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	recs := make([]T, 0)
	q := s.db.WithContext(ctx).Order(s.order)
	if page.Limit > 0 {
		q = q.Limit(page.Limit).Offset(page.Offset)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, 0, translate(err)
	}
	return recs, total, nil
}

// Save writes every column of an existing row.
func (s *Store[T]) Save(ctx context.Context, rec *T) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error)
}

// Delete removes one row. Children keep existing with a NULL reference.
func (s *Store[T]) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
