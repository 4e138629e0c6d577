package models

import (
	"fmt"
	"strings"
	"time"
)

// BlogStatus is the editorial state of a post.
type BlogStatus string

const (
	StatusDraft     BlogStatus = "draft"
	StatusReady     BlogStatus = "ready"
	StatusPublished BlogStatus = "published"
)

// Valid reports whether s is one of the known states.
func (s BlogStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusReady, StatusPublished:
		return true
	}
	return false
}

// Blog is a post on the farm's public blog.
type Blog struct {
	TimeStamped
	AuthorID      uint       `gorm:"not null;index" json:"author_id"`
	Author        *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty" validate:"-"`
	Status        BlogStatus `gorm:"size:10;not null;default:draft" json:"status" validate:"omitempty,oneof=draft ready published"`
	Title         string     `gorm:"size:250;not null" json:"title" validate:"required,max=250"`
	Slug          string     `gorm:"size:255;not null;uniqueIndex" json:"slug" validate:"omitempty,max=255"`
	Content       string     `gorm:"type:text;not null" json:"content" validate:"required"`
	DatePublished *time.Time `gorm:"column:date_published;index" json:"date_published"`
	Tags          []Tag      `gorm:"many2many:blog_tags;constraint:OnDelete:CASCADE" json:"tags" validate:"-"`
}

func (Blog) TableName() string { return "blogs" }

func (b *Blog) IsPublished() bool { return b.Status == StatusPublished }

// IsPubliclyViewable reports whether anonymous readers may see the post at now.
func (b *Blog) IsPubliclyViewable(now time.Time) bool {
	return strings.EqualFold(string(b.Status), string(StatusPublished)) &&
		b.DatePublished != nil && !b.DatePublished.After(now)
}

// TagList renders the tag names separated by comma for admin listings.
func (b *Blog) TagList() string {
	names := make([]string, 0, len(b.Tags))
	for _, t := range b.Tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

func (b *Blog) AbsoluteURL() string { return fmt.Sprintf("/blog/%s/", b.Slug) }

func (b *Blog) String() string { return b.Title }

// Tag labels blog posts.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug string `gorm:"size:100;not null" json:"slug"`
}

func (Tag) TableName() string { return "tags" }

// AdPosition is where an ad block renders on a post page.
type AdPosition string

const (
	AdTop    AdPosition = "top"
	AdMiddle AdPosition = "middle"
	AdBottom AdPosition = "bottom"
)

// AdPositions lists the slots filled on every detail page.
var AdPositions = []AdPosition{AdTop, AdMiddle, AdBottom}

// BlogAd is an embeddable ad snippet.
type BlogAd struct {
	TimeStamped
	Description string     `gorm:"size:255" json:"description" validate:"max=255"`
	Code        string     `gorm:"type:text;not null" json:"code" validate:"required"`
	Position    AdPosition `gorm:"size:10;index" json:"position" validate:"omitempty,oneof=top middle bottom"`
}

func (BlogAd) TableName() string { return "blog_ads" }

func (a *BlogAd) String() string { return a.Description }
