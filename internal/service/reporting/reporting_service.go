package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/pkg/clients/whatsapp"
)

const dateLayout = "2006-01-02"

// TotalsSource sums the farm tables.
type TotalsSource interface {
	FarmTotals(ctx context.Context) (models.FarmTotals, error)
}

// Archive keeps past snapshots.
type Archive interface {
	SaveSnapshot(ctx context.Context, snapshot models.FarmSnapshot) error
	LatestSnapshots(ctx context.Context, limit int64) ([]models.FarmSnapshot, error)
}

// Exporter copies a snapshot to an external sheet.
type Exporter interface {
	ExportSnapshot(ctx context.Context, snapshot models.FarmSnapshot) error
}

// ErrArchiveDisabled is returned by Snapshots when MongoDB is not configured.
var ErrArchiveDisabled = errors.New("snapshot archive is not configured")

// Service builds farm snapshots and distributes them. Archive, exporter and
// messenger are optional.
type Service struct {
	totals       TotalsSource
	archive      Archive
	exporter     Exporter
	messenger    whatsapp.Client
	managerPhone string
	location     *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// Option configures an optional sink.
type Option func(*Service)

func WithArchive(a Archive) Option { return func(s *Service) { s.archive = a } }

func WithExporter(e Exporter) Option { return func(s *Service) { s.exporter = e } }

// WithManagerMessages sends each published snapshot to phone.
func WithManagerMessages(c whatsapp.Client, phone string) Option {
	return func(s *Service) {
		s.messenger = c
		s.managerPhone = phone
	}
}

// NewService wires a new reporting service instance. Snapshot dates are taken
// in loc.
func NewService(totals TotalsSource, loc *time.Location, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{totals: totals, location: loc, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot computes the current farm snapshot without storing it.
func (s *Service) Snapshot(ctx context.Context) (models.FarmSnapshot, error) {
	totals, err := s.totals.FarmTotals(ctx)
	if err != nil {
		return models.FarmSnapshot{}, fmt.Errorf("load farm totals: %w", err)
	}
	return BuildSnapshot(totals, s.now().In(s.location)), nil
}

// Snapshots lists archived snapshots, newest first.
func (s *Service) Snapshots(ctx context.Context, limit int64) ([]models.FarmSnapshot, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	if limit <= 0 {
		limit = 30
	}
	snaps, err := s.archive.LatestSnapshots(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}

// Publish builds a snapshot and hands it to every configured sink. A failing
// sink is logged and does not stop the others.
func (s *Service) Publish(ctx context.Context) (models.FarmSnapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return models.FarmSnapshot{}, err
	}

	if s.archive != nil {
		if err := s.archive.SaveSnapshot(ctx, snap); err != nil {
			s.logger.Error("failed to archive snapshot", zap.Error(err))
		} else {
			s.logger.Info("snapshot archived", zap.Time("date", snap.Date))
		}
	}

	if s.exporter != nil {
		if err := s.exporter.ExportSnapshot(ctx, snap); err != nil {
			s.logger.Error("failed to export snapshot", zap.Error(err))
		}
	}

	if s.messenger != nil && s.managerPhone != "" {
		if _, err := s.messenger.SendText(ctx, s.managerPhone, Summary(snap)); err != nil {
			s.logger.Error("failed to send snapshot summary", zap.Error(err))
		} else {
			s.logger.Info("snapshot summary sent")
		}
	}

	return snap, nil
}

// BuildSnapshot derives the rates from the raw totals.
func BuildSnapshot(t models.FarmTotals, at time.Time) models.FarmSnapshot {
	return models.FarmSnapshot{
		Date:               at,
		BreederBatches:     t.BreederBatches,
		BreederBirds:       t.BreederBirds,
		EggsReceived:       t.EggsReceived,
		IncubatorCapacity:  t.IncubatorCapacity,
		IncubatorOccupied:  t.IncubatorOccupied,
		IncubatorAvailable: t.IncubatorAvailable,
		EggsSet:            t.EggsSet,
		EggsCandled:        t.EggsCandled,
		FertileEggs:        t.FertileEggs,
		ChicksHatched:      t.ChicksHatched,
		ChicksAvailable:    t.ChicksAvailable,
		ChickMortality:     t.ChickMortality,
		ChicksSold:         t.ChicksSold,
		SalesRevenue:       t.SalesRevenue.StringFixed(2),
		FertilityRate:      percent(t.FertileEggs, t.EggsCandled),
		HatchRate:          percent(t.ChicksHatched, t.FertileEggs),
		CreatedAt:          at.UTC(),
	}
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	rate := float64(part) / float64(whole) * 100
	return math.Round(rate*100) / 100
}

// Summary formats a snapshot as a short chat message.
func Summary(s models.FarmSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TelelBirds daily report (%s)\n", s.Date.Format(dateLayout))
	fmt.Fprintf(&b, "Breeders: %d birds in %d batches\n", s.BreederBirds, s.BreederBatches)
	fmt.Fprintf(&b, "Eggs received: %d, set: %d\n", s.EggsReceived, s.EggsSet)
	fmt.Fprintf(&b, "Incubators: %d/%d occupied, %d free\n", s.IncubatorOccupied, s.IncubatorCapacity, s.IncubatorAvailable)
	fmt.Fprintf(&b, "Candled: %d, fertile: %d (%.2f%%)\n", s.EggsCandled, s.FertileEggs, s.FertilityRate)
	fmt.Fprintf(&b, "Hatched: %d chicks (%.2f%%)\n", s.ChicksHatched, s.HatchRate)
	fmt.Fprintf(&b, "Chicks available: %d, mortality: %d\n", s.ChicksAvailable, s.ChickMortality)
	fmt.Fprintf(&b, "Sold: %d chicks for %s", s.ChicksSold, s.SalesRevenue)
	return b.String()
}
