package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
)

type recordingWriter struct {
	ranges []string
	rows   [][]interface{}
}

func (w *recordingWriter) WriteRow(_ context.Context, sheetRange string, values []interface{}) error {
	w.ranges = append(w.ranges, sheetRange)
	w.rows = append(w.rows, values)
	return nil
}

func TestExportSnapshot(t *testing.T) {
	w := &recordingWriter{}
	exporter := NewSnapshotExporter(w)

	snap := models.FarmSnapshot{
		Date:          time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC),
		BreederBirds:  120,
		FertileEggs:   93,
		SalesRevenue:  "910.00",
		FertilityRate: 93,
		HatchRate:     93.55,
	}
	require.NoError(t, exporter.ExportSnapshot(context.Background(), snap))

	require.Len(t, w.rows, 1)
	assert.Equal(t, snapshotRange, w.ranges[0])

	row := w.rows[0]
	require.Len(t, row, 17)
	assert.Equal(t, "2024-06-01", row[0])
	assert.Equal(t, int64(120), row[2])
	assert.Equal(t, "910.00", row[14])
	assert.Equal(t, 93.55, row[16])
}
