package farm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/internal/repository/postgres"
)

// ErrNoPhotos is returned when a photo is attached to a record type that has
// no image fields.
var ErrNoPhotos = errors.New("record has no photo fields")

// Repository is the table gateway a Service works on.
type Repository[T any] interface {
	Create(ctx context.Context, rec *T) error
	Get(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, page postgres.Page) ([]T, int64, error)
	Save(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id uint) error
}

// Entity is satisfied by the pointer type of every farm model.
type Entity[T any] interface {
	*T
	SetID(id uint)
	GetID() uint
	ResetHeader()
}

type deriver interface {
	ComputeDerived() error
}

// Hook runs after a record was created or saved. Hooks cannot fail the write.
type Hook[T any] func(ctx context.Context, rec *T)

// Service applies the record lifecycle shared by all farm entities: derived
// fields, full-object updates and post-save hooks.
type Service[T any, PT Entity[T]] struct {
	repo   Repository[T]
	hooks  []Hook[T]
	logger *zap.Logger
}

func NewService[T any, PT Entity[T]](repo Repository[T], logger *zap.Logger, hooks ...Hook[T]) *Service[T, PT] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service[T, PT]{repo: repo, hooks: hooks, logger: logger}
}

func (s *Service[T, PT]) List(ctx context.Context, page postgres.Page) ([]T, int64, error) {
	recs, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	return recs, total, nil
}

func (s *Service[T, PT]) Get(ctx context.Context, id uint) (*T, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

// Create inserts rec and returns the stored row. The id and timestamps are
// always assigned by the database.
func (s *Service[T, PT]) Create(ctx context.Context, rec *T) (*T, error) {
	PT(rec).ResetHeader()
	if err := derive(rec); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return s.afterWrite(ctx, PT(rec).GetID(), rec)
}

// Update replaces every column of row id with rec.
func (s *Service[T, PT]) Update(ctx context.Context, id uint, rec *T) (*T, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}

	PT(rec).SetID(id)
	if err := derive(rec); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save record %d: %w", id, err)
	}
	return s.afterWrite(ctx, id, rec)
}

func (s *Service[T, PT]) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	return nil
}

// AttachPhoto stores an image for one photo field of row id. upload receives
// the record's upload directory and returns the public URL.
func (s *Service[T, PT]) AttachPhoto(ctx context.Context, id uint, field string, upload func(dir string) (string, error)) (*T, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}

	holder, ok := any(PT(rec)).(models.PhotoHolder)
	if !ok {
		return nil, ErrNoPhotos
	}

	probe := *rec
	if err := any(PT(&probe)).(models.PhotoHolder).SetPhoto(field, ""); err != nil {
		return nil, err
	}

	url, err := upload(holder.PhotoDir())
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	if err := holder.SetPhoto(field, url); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save record %d: %w", id, err)
	}
	s.logger.Info("photo attached", zap.Uint("id", id), zap.String("field", field))
	return s.Get(ctx, id)
}

func (s *Service[T, PT]) afterWrite(ctx context.Context, id uint, written *T) (*T, error) {
	for _, hook := range s.hooks {
		hook(ctx, written)
	}

	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload record %d: %w", id, err)
	}
	return stored, nil
}

func derive(rec any) error {
	if d, ok := rec.(deriver); ok {
		return d.ComputeDerived()
	}
	return nil
}
