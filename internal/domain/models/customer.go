package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Customer brings eggs to the hatchery and collects the chicks.
type Customer struct {
	Record
	FirstName       string   `gorm:"column:first_name;size:50" json:"first_name" validate:"max=50"`
	LastName        string   `gorm:"column:last_name;size:50" json:"last_name" validate:"max=50"`
	FullName        string   `gorm:"column:full_name;size:101" json:"full_name"`
	Photo           string   `gorm:"size:255" json:"photo"`
	Email           string   `gorm:"size:50" json:"email" validate:"omitempty,email,max=50"`
	Phone           string   `gorm:"size:15" json:"phone" validate:"max=15"`
	Address         string   `gorm:"size:50" json:"address" validate:"max=50"`
	Location        *Point   `gorm:"type:geography(Point,4326);->:false;<-" json:"-" validate:"-"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	CustomerType    string   `gorm:"column:customertype;size:50" json:"customertype" validate:"max=50"`
	NotificationSMS *bool    `gorm:"column:notification_sms" json:"notification_sms"`
	Delivery        *bool    `json:"delivery"`
	Followup        *bool    `json:"followup"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) ComputeDerived() error {
	c.FullName = c.FirstName + " " + c.LastName
	loc, err := pointFrom(c.Latitude, c.Longitude)
	if err != nil {
		return err
	}
	c.Location = loc
	return nil
}

func (c *Customer) BeforeSave(*gorm.DB) error { return c.ComputeDerived() }

// String renders the customer the way staff look them up: "Last, First".
func (c *Customer) String() string { return c.LastName + ", " + c.FirstName }

func (c *Customer) AbsoluteURL() string {
	return fmt.Sprintf("/customer/%s", strings.TrimSpace(c.FullName))
}

func (c *Customer) PhotoDir() string { return "customer_photos" }

func (c *Customer) SetPhoto(field, url string) error {
	if field != "photo" {
		return unknownPhoto(field)
	}
	c.Photo = url
	return nil
}

// Eggs is a customer's drop-off of eggs for incubation.
type Eggs struct {
	Record
	BatchNumber  string    `gorm:"column:batchnumber;size:50" json:"batchnumber" validate:"max=50"`
	CustomerID   *uint     `json:"customer_id"`
	Customer     *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty" validate:"-"`
	BreedID      *uint     `json:"breed_id"`
	Breed        *Breed    `gorm:"foreignKey:BreedID;constraint:OnDelete:SET NULL" json:"breed,omitempty" validate:"-"`
	CustomerCode string    `gorm:"column:customercode;size:50" json:"customercode" validate:"max=50"`
	Photo        string    `gorm:"size:255" json:"photo"`
	Brought      int       `json:"brought" validate:"min=0"`
	Returned     int       `json:"returned" validate:"min=0"`
	Received     int       `json:"received"`
}

func (Eggs) TableName() string { return "eggs" }

func (e *Eggs) ComputeDerived() error {
	e.Received = e.Brought - e.Returned
	return nil
}

func (e *Eggs) BeforeSave(*gorm.DB) error { return e.ComputeDerived() }

func (e *Eggs) String() string { return e.BatchNumber }

func (e *Eggs) AbsoluteURL() string { return fmt.Sprintf("/customer_eggs/%s", e.BatchNumber) }

func (e *Eggs) PhotoDir() string { return "eggs_photos" }

func (e *Eggs) SetPhoto(field, url string) error {
	if field != "photo" {
		return unknownPhoto(field)
	}
	e.Photo = url
	return nil
}

// CustomerRequest tracks a customer's service request for a drop-off.
type CustomerRequest struct {
	Record
	RequestCode string `gorm:"column:requestcode;size:50" json:"requestcode" validate:"max=50"`
	EggsID      *uint  `json:"eggs_id"`
	Eggs        *Eggs  `gorm:"foreignKey:EggsID;constraint:OnDelete:SET NULL" json:"eggs,omitempty" validate:"-"`
}

func (CustomerRequest) TableName() string { return "CustomerRequests" }

func (r *CustomerRequest) AbsoluteURL() string {
	return fmt.Sprintf("/customer_request/%s", r.RequestCode)
}
