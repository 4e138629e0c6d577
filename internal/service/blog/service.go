package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/internal/repository/postgres"
)

const (
	// PageSize is the number of posts per public listing page.
	PageSize = 15
	// RecentCount is the size of the recent posts sidebar and the feed.
	RecentCount = 5
)

// Repository is the post store.
type Repository interface {
	PubliclyViewable(ctx context.Context, now time.Time, page postgres.Page) ([]models.Blog, int64, error)
	PubliclyViewableByTag(ctx context.Context, now time.Time, tag string, page postgres.Page) ([]models.Blog, int64, error)
	RecentPosts(ctx context.Context, now time.Time, n int) ([]models.Blog, error)
	AdminList(ctx context.Context, f postgres.BlogFilter, page postgres.Page) ([]models.Blog, int64, error)
	FindBySlug(ctx context.Context, slug string, visibleAt *time.Time) (*models.Blog, error)
	Get(ctx context.Context, id uint) (*models.Blog, error)
	SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error)
	Save(ctx context.Context, post *models.Blog) error
	Delete(ctx context.Context, id uint) error
	UsedTags(ctx context.Context) ([]models.Tag, error)
	RandomAd(ctx context.Context, position models.AdPosition) (*models.BlogAd, error)
}

// Viewer is the reader of a page; the zero value is anonymous.
type Viewer struct {
	UserID    uint
	Superuser bool
}

// Sidebar is attached to every public blog page.
type Sidebar struct {
	BlogTags       []models.Tag  `json:"blog_tags"`
	RecentBlogList []models.Blog `json:"recent_blog_list"`
}

// ListPage is one page of posts.
type ListPage struct {
	Sidebar
	Posts    []models.Blog `json:"blog_list"`
	Page     int           `json:"page"`
	NumPages int           `json:"num_pages"`
	Total    int64         `json:"count"`
	Tag      string        `json:"tag,omitempty"`
}

// DetailPage is a single post with its ad slots.
type DetailPage struct {
	Sidebar
	Post     *models.Blog   `json:"blog"`
	AdTop    *models.BlogAd `json:"ad_top"`
	AdMiddle *models.BlogAd `json:"ad_middle"`
	AdBottom *models.BlogAd `json:"ad_bottom"`
}

// Service serves the public blog and its administration.
type Service struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, now: time.Now, logger: logger}
}

// List returns page n (1-based) of the publicly viewable posts.
func (s *Service) List(ctx context.Context, page int) (*ListPage, error) {
	return s.list(ctx, page, "")
}

// ListByTag is List narrowed to posts carrying tag.
func (s *Service) ListByTag(ctx context.Context, tag string, page int) (*ListPage, error) {
	return s.list(ctx, page, tag)
}

func (s *Service) list(ctx context.Context, page int, tag string) (*ListPage, error) {
	if page < 1 {
		page = 1
	}
	now := s.now()
	window := postgres.Page{Limit: PageSize, Offset: (page - 1) * PageSize}

	var (
		posts []models.Blog
		total int64
		err   error
	)
	if tag == "" {
		posts, total, err = s.repo.PubliclyViewable(ctx, now, window)
	} else {
		posts, total, err = s.repo.PubliclyViewableByTag(ctx, now, tag, window)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	sidebar, err := s.sidebar(ctx, now)
	if err != nil {
		return nil, err
	}

	return &ListPage{
		Sidebar:  sidebar,
		Posts:    posts,
		Page:     page,
		NumPages: numPages(total, PageSize),
		Total:    total,
		Tag:      tag,
	}, nil
}

// Detail loads one post. Superusers may read unpublished posts; everybody
// else gets postgres.ErrNotFound for them.
func (s *Service) Detail(ctx context.Context, slug string, viewer Viewer) (*DetailPage, error) {
	now := s.now()
	var visibleAt *time.Time
	if !viewer.Superuser {
		visibleAt = &now
	}

	post, err := s.repo.FindBySlug(ctx, slug, visibleAt)
	if err != nil {
		return nil, fmt.Errorf("find post %q: %w", slug, err)
	}

	sidebar, err := s.sidebar(ctx, now)
	if err != nil {
		return nil, err
	}

	page := &DetailPage{Sidebar: sidebar, Post: post}
	slots := map[models.AdPosition]**models.BlogAd{
		models.AdTop:    &page.AdTop,
		models.AdMiddle: &page.AdMiddle,
		models.AdBottom: &page.AdBottom,
	}
	for _, pos := range models.AdPositions {
		ad, err := s.repo.RandomAd(ctx, pos)
		if err != nil {
			return nil, fmt.Errorf("pick %s ad: %w", pos, err)
		}
		*slots[pos] = ad
	}
	return page, nil
}

// Recent returns the latest publicly viewable posts.
func (s *Service) Recent(ctx context.Context) ([]models.Blog, error) {
	posts, err := s.repo.RecentPosts(ctx, s.now(), RecentCount)
	if err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	return posts, nil
}

// AllPublic lists every publicly viewable post, used by the sitemap.
func (s *Service) AllPublic(ctx context.Context) ([]models.Blog, error) {
	posts, _, err := s.repo.PubliclyViewable(ctx, s.now(), postgres.Page{})
	if err != nil {
		return nil, fmt.Errorf("list public posts: %w", err)
	}
	return posts, nil
}

func (s *Service) sidebar(ctx context.Context, now time.Time) (Sidebar, error) {
	tags, err := s.repo.UsedTags(ctx)
	if err != nil {
		return Sidebar{}, fmt.Errorf("load blog tags: %w", err)
	}
	recent, err := s.repo.RecentPosts(ctx, now, RecentCount)
	if err != nil {
		return Sidebar{}, fmt.Errorf("load recent posts: %w", err)
	}
	return Sidebar{BlogTags: tags, RecentBlogList: recent}, nil
}

// PostInput is the editable part of a post.
type PostInput struct {
	Title         string            `json:"title" validate:"required,max=250"`
	Slug          string            `json:"slug" validate:"max=255"`
	Content       string            `json:"content" validate:"required"`
	Status        models.BlogStatus `json:"status" validate:"omitempty,oneof=draft ready published"`
	AuthorID      *uint             `json:"author_id"`
	DatePublished *time.Time        `json:"date_published"`
	Tags          []string          `json:"tags" validate:"dive,max=100"`
}

// AdminPost is a post as shown in the admin listing.
type AdminPost struct {
	models.Blog
	TagList string `json:"tag_list"`
}

// AdminList lists every post matching f, newest first.
func (s *Service) AdminList(ctx context.Context, f postgres.BlogFilter, page postgres.Page) ([]AdminPost, int64, error) {
	posts, total, err := s.repo.AdminList(ctx, f, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	out := make([]AdminPost, 0, len(posts))
	for i := range posts {
		out = append(out, AdminPost{Blog: posts[i], TagList: posts[i].TagList()})
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Blog, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return post, nil
}

// Create stores a new post. The author defaults to editorID.
func (s *Service) Create(ctx context.Context, editorID uint, in PostInput) (*models.Blog, error) {
	post := &models.Blog{AuthorID: editorID}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.logger.Info("post created", zap.Uint("id", post.ID), zap.String("slug", post.Slug))
	return s.Get(ctx, post.ID)
}

// Update replaces the editable fields of post id.
func (s *Service) Update(ctx context.Context, id uint, in PostInput) (*models.Blog, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	post.Author = nil
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("save post %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}

func (s *Service) apply(ctx context.Context, post *models.Blog, in PostInput) error {
	post.Title = strings.TrimSpace(in.Title)
	post.Content = in.Content
	post.Status = in.Status
	if post.Status == "" {
		post.Status = models.StatusDraft
	}
	if in.AuthorID != nil {
		post.AuthorID = *in.AuthorID
	}
	post.DatePublished = in.DatePublished
	if post.DatePublished == nil && post.Status == models.StatusPublished {
		now := s.now()
		post.DatePublished = &now
	}

	base := Slugify(in.Slug)
	if base == "" {
		base = Slugify(post.Title)
	}
	if base == "" {
		base = "post"
	}
	unique, err := s.uniqueSlug(ctx, base, post.ID)
	if err != nil {
		return err
	}
	post.Slug = unique

	post.Tags = post.Tags[:0]
	seen := map[string]bool{}
	for _, name := range in.Tags {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		post.Tags = append(post.Tags, models.Tag{Name: name, Slug: Slugify(name)})
	}
	return nil
}

// uniqueSlug returns base, or base-2, base-3... when taken by another post.
func (s *Service) uniqueSlug(ctx context.Context, base string, selfID uint) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		taken, err := s.repo.SlugTaken(ctx, candidate, selfID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", n)
		candidate = truncate(base, maxSlugLen-len(suffix)) + suffix
	}
}

const maxSlugLen = 255

// Slugify transliterates s to ASCII and joins its words with dashes.
func Slugify(s string) string {
	return truncate(slug.Make(s), maxSlugLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}

func numPages(total int64, size int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}
