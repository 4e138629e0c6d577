package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Breed describes a poultry breed kept or hatched on the farm.
type Breed struct {
	Record
	Code        string   `gorm:"size:50" json:"code" validate:"max=50"`
	PoultryType string   `gorm:"column:poultry_type;size:50" json:"poultry_type" validate:"max=50"`
	BreedName   string   `gorm:"column:breed;size:50" json:"breed" validate:"max=50"`
	Purpose     string   `gorm:"size:50" json:"purpose" validate:"max=50"`
	EggsYear    *int     `gorm:"column:eggs_year" json:"eggs_year" validate:"omitempty,min=0"`
	AdultWeight *float64 `gorm:"column:adult_weight" json:"adult_weight" validate:"omitempty,gte=0"`
	Description string   `gorm:"size:250" json:"description" validate:"max=250"`
	FrontPhoto  string   `gorm:"column:front_photo;size:255" json:"front_photo"`
	SidePhoto   string   `gorm:"column:side_photo;size:255" json:"side_photo"`
	BackPhoto   string   `gorm:"column:back_photo;size:255" json:"back_photo"`
}

func (Breed) TableName() string { return "breed" }

func (b *Breed) AbsoluteURL() string { return fmt.Sprintf("/breed/%s", b.Code) }

func (b *Breed) PhotoDir() string { return "breed_photos" }

func (b *Breed) SetPhoto(field, url string) error {
	switch field {
	case "front_photo":
		b.FrontPhoto = url
	case "side_photo":
		b.SidePhoto = url
	case "back_photo":
		b.BackPhoto = url
	default:
		return unknownPhoto(field)
	}
	return nil
}

// Breeders is a batch of adult birds kept for egg production.
type Breeders struct {
	Record
	Batch         string  `gorm:"size:50" json:"batch" validate:"max=50"`
	BreedID       *uint   `json:"breed_id"`
	Breed         *Breed  `gorm:"foreignKey:BreedID;constraint:OnDelete:SET NULL" json:"breed,omitempty" validate:"-"`
	Hens          int     `json:"hens" validate:"min=0"`
	Cocks         int     `json:"cocks" validate:"min=0"`
	Mortality     float64 `json:"mortality" validate:"gte=0"`
	Butchered     int     `json:"butchered" validate:"min=0"`
	Sold          int     `json:"sold" validate:"min=0"`
	CurrentNumber int     `gorm:"column:current_number" json:"current_number"`
	HensPhoto     string  `gorm:"column:hens_photo;size:255" json:"hens_photo"`
	CocksPhoto    string  `gorm:"column:cocks_photo;size:255" json:"cocks_photo"`
}

func (Breeders) TableName() string { return "breeders" }

// ComputeDerived refreshes the live bird count of the batch.
func (b *Breeders) ComputeDerived() error {
	b.CurrentNumber = b.Cocks + b.Hens - b.Butchered - b.Sold
	return nil
}

func (b *Breeders) BeforeSave(*gorm.DB) error { return b.ComputeDerived() }

func (b *Breeders) AbsoluteURL() string { return fmt.Sprintf("/breeders/%s", b.Batch) }

func (b *Breeders) PhotoDir() string { return "breeders_photos" }

func (b *Breeders) SetPhoto(field, url string) error {
	switch field {
	case "hens_photo":
		b.HensPhoto = url
	case "cocks_photo":
		b.CocksPhoto = url
	default:
		return unknownPhoto(field)
	}
	return nil
}
