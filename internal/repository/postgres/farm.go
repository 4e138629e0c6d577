package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
)

const farmTotalsQuery = `
SELECT
  (SELECT COUNT(*) FROM breeders)                                  AS breeder_batches,
  (SELECT COALESCE(SUM(current_number), 0) FROM breeders)          AS breeder_birds,
  (SELECT COALESCE(SUM(received), 0) FROM eggs)                    AS eggs_received,
  (SELECT COALESCE(SUM(capacity), 0) FROM incubator_capacity)      AS incubator_capacity,
  (SELECT COALESCE(SUM(occupied), 0) FROM incubator_capacity)      AS incubator_occupied,
  (SELECT COALESCE(SUM(available), 0) FROM incubator_capacity)     AS incubator_available,
  (SELECT COALESCE(SUM(eggs), 0) FROM eggsetting)                  AS eggs_set,
  (SELECT COALESCE(SUM(eggs), 0) FROM "Candling")                  AS eggs_candled,
  (SELECT COALESCE(SUM(fertile_eggs), 0) FROM "Candling")          AS fertile_eggs,
  (SELECT COALESCE(SUM(chicks_hatched), 0) FROM "Hatching")        AS chicks_hatched,
  (SELECT COALESCE(SUM(number), 0) FROM chicksavailable)           AS chicks_available,
  (SELECT COALESCE(SUM(mortality), 0) FROM mortality)              AS chick_mortality,
  (SELECT COALESCE(SUM(number), 0) FROM chickssold)                AS chicks_sold,
  (SELECT COALESCE(SUM(price * number), 0) FROM chickssold)        AS sales_revenue`

// FarmRepository answers the aggregate questions of the reporting service.
type FarmRepository struct {
	db *gorm.DB
}

func NewFarmRepository(db *gorm.DB) *FarmRepository {
	return &FarmRepository{db: db}
}

// FarmTotals sums the farm tables in a single round trip.
func (r *FarmRepository) FarmTotals(ctx context.Context) (models.FarmTotals, error) {
	var totals models.FarmTotals
	if err := r.db.WithContext(ctx).Raw(farmTotalsQuery).Scan(&totals).Error; err != nil {
		return models.FarmTotals{}, fmt.Errorf("sum farm tables: %w", translate(err))
	}
	return totals, nil
}
