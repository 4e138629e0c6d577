package farm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/internal/repository/postgres"
)

// memoryRepo is an in-memory Repository keyed by id.
type memoryRepo[T any, PT Entity[T]] struct {
	rows   map[uint]T
	nextID uint
	saves  int
}

func newMemoryRepo[T any, PT Entity[T]]() *memoryRepo[T, PT] {
	return &memoryRepo[T, PT]{rows: map[uint]T{}, nextID: 1}
}

func (m *memoryRepo[T, PT]) Create(_ context.Context, rec *T) error {
	PT(rec).SetID(m.nextID)
	m.rows[m.nextID] = *rec
	m.nextID++
	return nil
}

func (m *memoryRepo[T, PT]) Get(_ context.Context, id uint) (*T, error) {
	rec, ok := m.rows[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return &rec, nil
}

func (m *memoryRepo[T, PT]) List(context.Context, postgres.Page) ([]T, int64, error) {
	out := make([]T, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (m *memoryRepo[T, PT]) Save(_ context.Context, rec *T) error {
	m.saves++
	m.rows[PT(rec).GetID()] = *rec
	return nil
}

func (m *memoryRepo[T, PT]) Delete(_ context.Context, id uint) error {
	if _, ok := m.rows[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func TestCreateComputesDerivedFields(t *testing.T) {
	repo := newMemoryRepo[models.Eggs]()
	svc := NewService[models.Eggs](repo, nil)

	got, err := svc.Create(context.Background(), &models.Eggs{Record: models.Record{ID: 42}, Brought: 100, Returned: 4})
	require.NoError(t, err)

	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, 96, got.Received)
}

func TestCreateStoresNegativeDerivedValue(t *testing.T) {
	repo := newMemoryRepo[models.Candling]()
	svc := NewService[models.Candling](repo, nil)

	got, err := svc.Create(context.Background(), &models.Candling{Eggs: 5, SpoiltEggs: 7})
	require.NoError(t, err)

	assert.Equal(t, -2, got.FertileEggs)
	assert.Len(t, repo.rows, 1)
}

func TestCreateIgnoresClientHeader(t *testing.T) {
	repo := newMemoryRepo[models.Breed]()
	svc := NewService[models.Breed](repo, nil)

	backdated := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	var in models.Breed
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"code":"RIR","created":"2001-01-01T00:00:00Z"}`), &in))
	require.True(t, backdated.Equal(in.Created))

	got, err := svc.Create(context.Background(), &in)
	require.NoError(t, err)

	assert.Equal(t, uint(1), got.ID)
	assert.True(t, got.Created.IsZero())
	assert.Equal(t, "RIR", got.Code)
}

func TestCreateIgnoresClientTimestamps(t *testing.T) {
	repo := newMemoryRepo[models.BlogAd]()
	svc := NewService[models.BlogAd](repo, nil)

	stamp := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	ad := &models.BlogAd{}
	ad.Created, ad.Modified = stamp, stamp

	got, err := svc.Create(context.Background(), ad)
	require.NoError(t, err)

	assert.True(t, got.Created.IsZero())
	assert.True(t, got.Modified.IsZero())
}

func TestUpdateIsFullSave(t *testing.T) {
	repo := newMemoryRepo[models.IncubatorCapacity]()
	svc := NewService[models.IncubatorCapacity](repo, nil)

	created, err := svc.Create(context.Background(), &models.IncubatorCapacity{Breed: "Koekoek", Capacity: 500, Occupied: 120})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, &models.IncubatorCapacity{Capacity: 600, Occupied: 100})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 500, updated.Available)
	assert.Empty(t, updated.Breed)
}

func TestUpdateMissingRecord(t *testing.T) {
	svc := NewService[models.Breed](newMemoryRepo[models.Breed](), nil)

	_, err := svc.Update(context.Background(), 9, &models.Breed{})
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestHooksRunAfterWrites(t *testing.T) {
	repo := newMemoryRepo[models.Hatching]()
	var seen []int
	hook := func(_ context.Context, h *models.Hatching) { seen = append(seen, h.ChicksHatched) }
	svc := NewService[models.Hatching](repo, nil, hook)

	created, err := svc.Create(context.Background(), &models.Hatching{Hatched: 90, Deformed: 3})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), created.ID, &models.Hatching{Hatched: 50, Deformed: 0})
	require.NoError(t, err)

	assert.Equal(t, []int{87, 50}, seen)
}

func TestDelete(t *testing.T) {
	repo := newMemoryRepo[models.Chicks]()
	svc := NewService[models.Chicks](repo, nil)

	created, err := svc.Create(context.Background(), &models.Chicks{BatchNumber: "C-1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), postgres.ErrNotFound)
}

func TestAttachPhoto(t *testing.T) {
	repo := newMemoryRepo[models.Breed]()
	svc := NewService[models.Breed](repo, nil)

	created, err := svc.Create(context.Background(), &models.Breed{Code: "KK"})
	require.NoError(t, err)

	var gotDir string
	upload := func(dir string) (string, error) {
		gotDir = dir
		return "https://cdn.test/media/breed_photos/a.jpg", nil
	}

	got, err := svc.AttachPhoto(context.Background(), created.ID, "side_photo", upload)
	require.NoError(t, err)
	assert.Equal(t, "breed_photos", gotDir)
	assert.Equal(t, "https://cdn.test/media/breed_photos/a.jpg", got.SidePhoto)
}

func TestAttachPhotoUnknownField(t *testing.T) {
	repo := newMemoryRepo[models.Breed]()
	svc := NewService[models.Breed](repo, nil)
	created, err := svc.Create(context.Background(), &models.Breed{Code: "KK"})
	require.NoError(t, err)

	uploaded := false
	_, err = svc.AttachPhoto(context.Background(), created.ID, "photo", func(string) (string, error) {
		uploaded = true
		return "", nil
	})

	assert.ErrorIs(t, err, models.ErrInvalidRecord)
	assert.False(t, uploaded)
	assert.Equal(t, 0, repo.saves)
}

func TestAttachPhotoWithoutPhotoFields(t *testing.T) {
	repo := newMemoryRepo[models.Chicks]()
	svc := NewService[models.Chicks](repo, nil)
	created, err := svc.Create(context.Background(), &models.Chicks{})
	require.NoError(t, err)

	_, err = svc.AttachPhoto(context.Background(), created.ID, "photo", func(string) (string, error) {
		return "", errors.New("must not upload")
	})
	assert.ErrorIs(t, err, ErrNoPhotos)
}
