package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Chicks is a batch of chicks on hand, hatched or bought in.
type Chicks struct {
	Record
	BatchNumber string `gorm:"column:batchnumber;size:50" json:"batchnumber" validate:"max=50"`
	Source      string `gorm:"size:50" json:"source" validate:"max=50"`
	BreedID     *uint  `json:"breed_id"`
	Breed       *Breed `gorm:"foreignKey:BreedID;constraint:OnDelete:SET NULL" json:"breed,omitempty" validate:"-"`
	Age         Date   `json:"age"`
	Number      int    `json:"number" validate:"min=0"`
	Description string `gorm:"type:text" json:"description"`
}

func (Chicks) TableName() string { return "chicks" }

func (c *Chicks) AbsoluteURL() string { return fmt.Sprintf("/chicks/%s", c.BatchNumber) }

// Mortality logs deaths within a chick batch.
type Mortality struct {
	Record
	BatchNumber     string  `gorm:"column:batchnumber;size:50" json:"batchnumber" validate:"max=50"`
	MortalityNumber string  `gorm:"column:mortalitynumber;size:50" json:"mortalitynumber" validate:"max=50"`
	ChicksID        *uint   `json:"chicks_id"`
	Chicks          *Chicks `gorm:"foreignKey:ChicksID;constraint:OnDelete:SET NULL" json:"chicks,omitempty" validate:"-"`
	Age             Date    `json:"age"`
	Number          int     `json:"number" validate:"min=0"`
	Mortality       int     `json:"mortality" validate:"min=0"`
	Reason          string  `gorm:"type:text" json:"reason"`
	NotifyVet       *bool   `gorm:"column:notify_vet" json:"notify_vet"`
}

func (Mortality) TableName() string { return "mortality" }

func (m *Mortality) AbsoluteURL() string {
	return fmt.Sprintf("/mortality/%s", m.MortalityNumber)
}

// ChicksSold records a sale out of a chick batch.
type ChicksSold struct {
	Record
	BatchNumber  string          `gorm:"column:batchnumber;size:50" json:"batchnumber" validate:"max=50"`
	SalesNumber  string          `gorm:"column:salesnumber;size:50" json:"salesnumber" validate:"max=50"`
	CustomerType string          `gorm:"column:customer_type;size:50" json:"customer_type" validate:"max=50"`
	ChicksID     *uint           `json:"chicks_id"`
	Chicks       *Chicks         `gorm:"foreignKey:ChicksID;constraint:OnDelete:SET NULL" json:"chicks,omitempty" validate:"-"`
	Age          Date            `json:"age"`
	Number       int             `json:"number" validate:"min=0"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2)" json:"price" validate:"gte=0"`
	Sales        decimal.Decimal `gorm:"type:numeric(12,2)" json:"sales"`
}

func (ChicksSold) TableName() string { return "chickssold" }

// ComputeDerived keeps the historical sales column: price minus the number of
// chicks. Revenue reports use Revenue instead.
func (s *ChicksSold) ComputeDerived() error {
	s.Sales = s.Price.Sub(decimal.NewFromInt(int64(s.Number)))
	return nil
}

func (s *ChicksSold) BeforeSave(*gorm.DB) error { return s.ComputeDerived() }

// Revenue is the amount charged for the sale.
func (s *ChicksSold) Revenue() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(s.Number)))
}

func (s *ChicksSold) AbsoluteURL() string { return fmt.Sprintf("/chicks_sold/%s", s.SalesNumber) }

// ChicksAvailable is stock offered for sale.
type ChicksAvailable struct {
	Record
	BatchNumber string `gorm:"column:batchnumber;size:50" json:"batchnumber" validate:"max=50"`
	BreedID     *uint  `json:"breed_id"`
	Breed       *Breed `gorm:"foreignKey:BreedID;constraint:OnDelete:SET NULL" json:"breed,omitempty" validate:"-"`
	Age         Date   `json:"age"`
	Number      int    `json:"number" validate:"min=0"`
}

func (ChicksAvailable) TableName() string { return "chicksavailable" }

func (a *ChicksAvailable) AbsoluteURL() string {
	return fmt.Sprintf("/chicks_available/%s", a.BatchNumber)
}
