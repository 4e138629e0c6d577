package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FarmSnapshot is a point-in-time aggregate of the farm tables, archived in
// MongoDB by the daily job.
type FarmSnapshot struct {
	Date               time.Time `bson:"date" json:"date"`
	BreederBatches     int64     `bson:"breeder_batches" json:"breeder_batches"`
	BreederBirds       int64     `bson:"breeder_birds" json:"breeder_birds"`
	EggsReceived       int64     `bson:"eggs_received" json:"eggs_received"`
	IncubatorCapacity  int64     `bson:"incubator_capacity" json:"incubator_capacity"`
	IncubatorOccupied  int64     `bson:"incubator_occupied" json:"incubator_occupied"`
	IncubatorAvailable int64     `bson:"incubator_available" json:"incubator_available"`
	EggsSet            int64     `bson:"eggs_set" json:"eggs_set"`
	EggsCandled        int64     `bson:"eggs_candled" json:"eggs_candled"`
	FertileEggs        int64     `bson:"fertile_eggs" json:"fertile_eggs"`
	ChicksHatched      int64     `bson:"chicks_hatched" json:"chicks_hatched"`
	ChicksAvailable    int64     `bson:"chicks_available" json:"chicks_available"`
	ChickMortality     int64     `bson:"chick_mortality" json:"chick_mortality"`
	ChicksSold         int64     `bson:"chicks_sold" json:"chicks_sold"`
	SalesRevenue       string    `bson:"sales_revenue" json:"sales_revenue"`
	FertilityRate      float64   `bson:"fertility_rate" json:"fertility_rate"`
	HatchRate          float64   `bson:"hatch_rate" json:"hatch_rate"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
}

// FarmTotals are the raw sums a snapshot is derived from.
type FarmTotals struct {
	BreederBatches     int64
	BreederBirds       int64
	EggsReceived       int64
	IncubatorCapacity  int64
	IncubatorOccupied  int64
	IncubatorAvailable int64
	EggsSet            int64
	EggsCandled        int64
	FertileEggs        int64
	ChicksHatched      int64
	ChicksAvailable    int64
	ChickMortality     int64
	ChicksSold         int64
	SalesRevenue       decimal.Decimal
}
