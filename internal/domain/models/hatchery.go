package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Hatchery is a site operating incubators.
type Hatchery struct {
	Record
	Name          string   `gorm:"size:50" json:"name" validate:"max=50"`
	Photo         string   `gorm:"size:255" json:"photo"`
	Email         string   `gorm:"size:50" json:"email" validate:"omitempty,email,max=50"`
	Phone         string   `gorm:"size:15" json:"phone" validate:"max=15"`
	Address       string   `gorm:"size:50" json:"address" validate:"max=50"`
	Location      *Point   `gorm:"type:geography(Point,4326);->:false;<-" json:"-" validate:"-"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	TotalCapacity *int     `gorm:"column:totalcapacity" json:"totalcapacity" validate:"omitempty,min=0"`
}

func (Hatchery) TableName() string { return "hatchery" }

func (h *Hatchery) ComputeDerived() error {
	loc, err := pointFrom(h.Latitude, h.Longitude)
	if err != nil {
		return err
	}
	h.Location = loc
	return nil
}

func (h *Hatchery) BeforeSave(*gorm.DB) error { return h.ComputeDerived() }

func (h *Hatchery) String() string { return h.Name }

func (h *Hatchery) AbsoluteURL() string { return fmt.Sprintf("/hatchery/%s", h.Name) }

func (h *Hatchery) PhotoDir() string { return "hatchery_photos" }

func (h *Hatchery) SetPhoto(field, url string) error {
	if field != "photo" {
		return unknownPhoto(field)
	}
	h.Photo = url
	return nil
}

// Incubator is a machine installed in a hatchery.
type Incubator struct {
	Record
	HatcheryID    *uint     `json:"hatchery_id"`
	Hatchery      *Hatchery `gorm:"foreignKey:HatcheryID;constraint:OnDelete:SET NULL" json:"hatchery,omitempty" validate:"-"`
	IncubatorType string    `gorm:"column:incubatortype;size:50" json:"incubatortype" validate:"max=50"`
	Manufacturer  string    `gorm:"size:50" json:"manufacturer" validate:"max=50"`
	Model         string    `gorm:"size:15" json:"model" validate:"max=15"`
	Year          string    `gorm:"size:50" json:"year" validate:"max=50"`
	Code          string    `gorm:"size:50" json:"code" validate:"max=50"`
}

func (Incubator) TableName() string { return "incubators" }

func (i *Incubator) AbsoluteURL() string { return fmt.Sprintf("/incubator/%s", i.Code) }

// IncubatorCapacity tracks occupied against free egg slots of an incubator.
type IncubatorCapacity struct {
	Record
	IncubatorID *uint      `json:"incubator_id"`
	Incubator   *Incubator `gorm:"foreignKey:IncubatorID;constraint:OnDelete:SET NULL" json:"incubator,omitempty" validate:"-"`
	Breed       string     `gorm:"size:50" json:"breed" validate:"max=50"`
	Capacity    int        `json:"capacity" validate:"min=0"`
	Occupied    int        `json:"occupied" validate:"min=0"`
	Available   int        `json:"available"`
}

func (IncubatorCapacity) TableName() string { return "incubator_capacity" }

func (c *IncubatorCapacity) ComputeDerived() error {
	c.Available = c.Capacity - c.Occupied
	return nil
}

func (c *IncubatorCapacity) BeforeSave(*gorm.DB) error { return c.ComputeDerived() }

func (c *IncubatorCapacity) AbsoluteURL() string {
	return fmt.Sprintf("/incubator_capacity/%d", c.ID)
}

// EggSetting places a number of eggs into an incubator.
type EggSetting struct {
	Record
	SettingCode string     `gorm:"column:settingcode;size:50" json:"settingcode" validate:"max=50"`
	IncubatorID *uint      `json:"incubator_id"`
	Incubator   *Incubator `gorm:"foreignKey:IncubatorID;constraint:OnDelete:SET NULL" json:"incubator,omitempty" validate:"-"`
	CustomerID  *uint      `json:"customer_id"`
	Customer    *Customer  `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty" validate:"-"`
	BreedersID  *uint      `json:"breeders_id"`
	Breeders    *Breeders  `gorm:"foreignKey:BreedersID;constraint:OnDelete:SET NULL" json:"breeders,omitempty" validate:"-"`
	Eggs        int        `json:"eggs" validate:"min=0"`
}

func (EggSetting) TableName() string { return "eggsetting" }

func (s *EggSetting) AbsoluteURL() string { return fmt.Sprintf("/egg_setting/%s", s.SettingCode) }

// Incubation follows a setting through the incubation period.
type Incubation struct {
	Record
	IncubationCode string      `gorm:"column:incubationcode;size:50" json:"incubationcode" validate:"max=50"`
	EggSettingID   *uint       `gorm:"column:eggsetting_id" json:"eggsetting_id"`
	EggSetting     *EggSetting `gorm:"foreignKey:EggSettingID;constraint:OnDelete:SET NULL" json:"eggsetting,omitempty" validate:"-"`
	CustomerID     *uint       `json:"customer_id"`
	Customer       *Customer   `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty" validate:"-"`
	BreedersID     *uint       `json:"breeders_id"`
	Breeders       *Breeders   `gorm:"foreignKey:BreedersID;constraint:OnDelete:SET NULL" json:"breeders,omitempty" validate:"-"`
	Eggs           int         `json:"eggs" validate:"min=0"`
}

func (Incubation) TableName() string { return "incubation" }

func (i *Incubation) AbsoluteURL() string {
	return fmt.Sprintf("/incubation/%s", i.IncubationCode)
}

// Candling records the mid-incubation fertility check.
type Candling struct {
	Record
	CandlingCode string      `gorm:"column:candlingcode;size:50" json:"candlingcode" validate:"max=50"`
	IncubationID *uint       `json:"incubation_id"`
	Incubation   *Incubation `gorm:"foreignKey:IncubationID;constraint:OnDelete:SET NULL" json:"incubation,omitempty" validate:"-"`
	CustomerID   *uint       `json:"customer_id"`
	Customer     *Customer   `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty" validate:"-"`
	BreedersID   *uint       `json:"breeders_id"`
	Breeders     *Breeders   `gorm:"foreignKey:BreedersID;constraint:OnDelete:SET NULL" json:"breeders,omitempty" validate:"-"`
	Eggs         int         `json:"eggs" validate:"min=0"`
	Candled      *bool       `json:"candled"`
	CandledDate  *time.Time  `gorm:"column:candled_date" json:"candled_date"`
	SpoiltEggs   int         `gorm:"column:spoilt_eggs" json:"spoilt_eggs" validate:"min=0"`
	FertileEggs  int         `gorm:"column:fertile_eggs" json:"fertile_eggs"`
}

func (Candling) TableName() string { return "Candling" }

func (c *Candling) ComputeDerived() error {
	c.FertileEggs = c.Eggs - c.SpoiltEggs
	return nil
}

func (c *Candling) BeforeSave(*gorm.DB) error { return c.ComputeDerived() }

func (c *Candling) AbsoluteURL() string { return fmt.Sprintf("/candling/%s", c.CandlingCode) }

// Hatching records the outcome of a candled batch.
type Hatching struct {
	Record
	HatchingCode   string    `gorm:"column:hatchingcode;size:50" json:"hatchingcode" validate:"max=50"`
	CandlingID     *uint     `json:"candling_id"`
	Candling       *Candling `gorm:"foreignKey:CandlingID;constraint:OnDelete:SET NULL" json:"candling,omitempty" validate:"-"`
	CustomerID     *uint     `json:"customer_id"`
	Customer       *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty" validate:"-"`
	BreedersID     *uint     `json:"breeders_id"`
	Breeders       *Breeders `gorm:"foreignKey:BreedersID;constraint:OnDelete:SET NULL" json:"breeders,omitempty" validate:"-"`
	Hatched        int       `json:"hatched" validate:"min=0"`
	Deformed       int       `json:"deformed" validate:"min=0"`
	Spoilt         int       `json:"spoilt" validate:"min=0"`
	ChicksHatched  int       `gorm:"column:chicks_hatched" json:"chicks_hatched"`
	NotifyCustomer *bool     `gorm:"column:notify_customer" json:"notify_customer"`
}

func (Hatching) TableName() string { return "Hatching" }

func (h *Hatching) ComputeDerived() error {
	h.ChicksHatched = h.Hatched - h.Deformed
	return nil
}

func (h *Hatching) BeforeSave(*gorm.DB) error { return h.ComputeDerived() }

func (h *Hatching) AbsoluteURL() string { return fmt.Sprintf("/Hatching/%s", h.HatchingCode) }

// Holding keeps hatched chicks until they are delivered or collected.
type Holding struct {
	Record
	HoldingCode      string    `gorm:"column:holdingcode;size:50" json:"holdingcode" validate:"max=50"`
	HatchingID       *uint     `json:"hatching_id"`
	Hatching         *Hatching `gorm:"foreignKey:HatchingID;constraint:OnDelete:SET NULL" json:"hatching,omitempty" validate:"-"`
	CustomerID       *uint     `json:"customer_id"`
	Customer         *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty" validate:"-"`
	BreedersID       *uint     `json:"breeders_id"`
	Breeders         *Breeders `gorm:"foreignKey:BreedersID;constraint:OnDelete:SET NULL" json:"breeders,omitempty" validate:"-"`
	CustomerDelivery *bool     `gorm:"column:customer_delivery" json:"customer_delivery"`
	ModeDelivery     string    `gorm:"column:mode_delivery;size:50" json:"mode_delivery" validate:"max=50"`
	Location         *Point    `gorm:"type:geography(Point,4326);->:false;<-" json:"-" validate:"-"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	Distance         float64   `json:"distance" validate:"gte=0"`
	Cost             float64   `json:"cost"`
}

func (Holding) TableName() string { return "Holding" }

// ComputeDerived prices the delivery. The cost is the distance until a
// per-kilometre tariff exists.
func (h *Holding) ComputeDerived() error {
	h.Cost = h.Distance
	loc, err := pointFrom(h.Latitude, h.Longitude)
	if err != nil {
		return err
	}
	h.Location = loc
	return nil
}

func (h *Holding) BeforeSave(*gorm.DB) error { return h.ComputeDerived() }

func (h *Holding) AbsoluteURL() string { return fmt.Sprintf("/holding/%s", h.HoldingCode) }
