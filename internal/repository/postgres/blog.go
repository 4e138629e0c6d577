package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
)

const blogOrder = "date_published DESC NULLS LAST, created DESC"

// BlogFilter narrows the admin listing of posts.
type BlogFilter struct {
	Status   models.BlogStatus
	AuthorID uint
	Tag      string
	Search   string
}

// BlogRepository stores posts, tags and ad blocks.
type BlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func publiclyViewable(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("blogs.date_published <= ? AND LOWER(blogs.status) = ?", now, string(models.StatusPublished))
	}
}

func withTag(tag string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`EXISTS (SELECT 1 FROM blog_tags bt JOIN tags t ON t.id = bt.tag_id
			WHERE bt.blog_id = blogs.id AND t.name = ?)`, tag)
	}
}

func (r *BlogRepository) list(ctx context.Context, page Page, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Blog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Blog{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	posts := make([]models.Blog, 0)
	q := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Scopes(scopes...).
		Order(blogOrder)
	if page.Limit > 0 {
		q = q.Limit(page.Limit).Offset(page.Offset)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, 0, translate(err)
	}
	return posts, total, nil
}

// PubliclyViewable lists published posts whose publish date has passed.
func (r *BlogRepository) PubliclyViewable(ctx context.Context, now time.Time, page Page) ([]models.Blog, int64, error) {
	return r.list(ctx, page, publiclyViewable(now))
}

// PubliclyViewableByTag narrows PubliclyViewable to one tag name.
func (r *BlogRepository) PubliclyViewableByTag(ctx context.Context, now time.Time, tag string, page Page) ([]models.Blog, int64, error) {
	return r.list(ctx, page, publiclyViewable(now), withTag(tag))
}

// RecentPosts returns the latest n publicly viewable posts.
func (r *BlogRepository) RecentPosts(ctx context.Context, now time.Time, n int) ([]models.Blog, error) {
	posts, _, err := r.list(ctx, Page{Limit: n}, publiclyViewable(now))
	return posts, err
}

// AdminList lists every post matching the filter.
func (r *BlogRepository) AdminList(ctx context.Context, f BlogFilter, page Page) ([]models.Blog, int64, error) {
	var scopes []func(*gorm.DB) *gorm.DB
	if f.Status != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where("blogs.status = ?", f.Status) })
	}
	if f.AuthorID != 0 {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where("blogs.author_id = ?", f.AuthorID) })
	}
	if f.Tag != "" {
		scopes = append(scopes, withTag(f.Tag))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + q + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("blogs.title ILIKE ? OR blogs.content ILIKE ?", like, like)
		})
	}
	return r.list(ctx, page, scopes...)
}

// FindBySlug loads one post; with a non-nil visibleAt only a publicly
// viewable post matches.
func (r *BlogRepository) FindBySlug(ctx context.Context, slug string, visibleAt *time.Time) (*models.Blog, error) {
	q := r.db.WithContext(ctx).Preload("Author").Preload("Tags").Where("blogs.slug = ?", slug)
	if visibleAt != nil {
		q = q.Scopes(publiclyViewable(*visibleAt))
	}

	var post models.Blog
	if err := q.First(&post).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *BlogRepository) Get(ctx context.Context, id uint) (*models.Blog, error) {
	var post models.Blog
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Tags").First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// SlugTaken reports whether another post already uses slug.
func (r *BlogRepository) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// Save inserts or fully updates a post and replaces its tags, creating tags
// that do not exist yet.
func (r *BlogRepository) Save(ctx context.Context, post *models.Blog) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags := make([]models.Tag, 0, len(post.Tags))
		for _, t := range post.Tags {
			tag := models.Tag{Name: t.Name, Slug: t.Slug}
			if err := tx.Where(models.Tag{Name: t.Name}).Attrs(models.Tag{Slug: t.Slug}).FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			tags = append(tags, tag)
		}

		var err error
		if post.ID == 0 {
			err = tx.Omit(clause.Associations).Create(post).Error
		} else {
			err = tx.Omit(clause.Associations).Save(post).Error
		}
		if err != nil {
			return err
		}

		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return err
		}
		post.Tags = tags
		return nil
	}))
}

func (r *BlogRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Select("Tags").Delete(&models.Blog{TimeStamped: models.TimeStamped{ID: id}})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UsedTags lists tags attached to at least one post, by name.
func (r *BlogRepository) UsedTags(ctx context.Context) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	err := r.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM blog_tags bt WHERE bt.tag_id = tags.id)").
		Order("name").
		Find(&tags).Error
	return tags, translate(err)
}

// RandomAd picks one ad for the position, or nil when there is none.
func (r *BlogRepository) RandomAd(ctx context.Context, position models.AdPosition) (*models.BlogAd, error) {
	var ad models.BlogAd
	err := r.db.WithContext(ctx).
		Where("position = ?", position).
		Order("RANDOM()").
		Take(&ad).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &ad, nil
}
