package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRecord is wrapped by every FieldError so callers can map it to a
// validation response without knowing the field.
var ErrInvalidRecord = errors.New("invalid record")

// FieldError reports a record rejected because of one field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrInvalidRecord }

// Record is the common header of every farm table: an auto-increment id and
// the insertion time. Farm rows are listed oldest first.
type Record struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Created time.Time `gorm:"column:created;autoCreateTime;<-:create" json:"created"`
}

// SetID assigns the primary key, used by full-object updates.
func (r *Record) SetID(id uint) { r.ID = id }

// GetID returns the primary key.
func (r *Record) GetID() uint { return r.ID }

// ResetHeader clears the server-owned columns before an insert.
func (r *Record) ResetHeader() { *r = Record{} }

// TimeStamped is the header of content tables that also track modification.
type TimeStamped struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Created  time.Time `gorm:"column:created;autoCreateTime;<-:create" json:"created"`
	Modified time.Time `gorm:"column:modified;autoUpdateTime" json:"modified"`
}

func (t *TimeStamped) SetID(id uint) { t.ID = id }

func (t *TimeStamped) GetID() uint { return t.ID }

func (t *TimeStamped) ResetHeader() { *t = TimeStamped{} }

const dateLayout = "2006-01-02"

// Date is a calendar day stored in a DATE column and exchanged as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("date must use YYYY-MM-DD: %w", err)
	}
	d.Time = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(dateLayout), nil
}

func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		d.Time = v
	case string:
		return d.UnmarshalJSON([]byte(v))
	case []byte:
		return d.UnmarshalJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

// GormDataType pins the column type.
func (Date) GormDataType() string { return "date" }

// Point is a WGS84 position written to PostGIS geography columns as EWKT.
type Point struct {
	Lat float64
	Lng float64
}

func (p Point) Value() (driver.Value, error) {
	return fmt.Sprintf("SRID=4326;POINT(%g %g)", p.Lng, p.Lat), nil
}

func (Point) GormDataType() string { return "geography(Point,4326)" }

// pointFrom builds the location column from the readable coordinates. Either
// coordinate missing clears the location.
func pointFrom(lat, lng *float64) (*Point, error) {
	if lat == nil || lng == nil {
		return nil, nil
	}
	if *lat < -90 || *lat > 90 {
		return nil, &FieldError{Field: "latitude", Message: "must be between -90 and 90"}
	}
	if *lng < -180 || *lng > 180 {
		return nil, &FieldError{Field: "longitude", Message: "must be between -180 and 180"}
	}
	return &Point{Lat: *lat, Lng: *lng}, nil
}

// PhotoHolder is implemented by records carrying uploaded images.
type PhotoHolder interface {
	PhotoDir() string
	SetPhoto(field, url string) error
}

func unknownPhoto(field string) error {
	return &FieldError{Field: field, Message: "is not a photo field"}
}
