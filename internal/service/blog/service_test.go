package blog

import (
	"context"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/feeds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/internal/repository/postgres"
)

// memoryBlogs mimics the postgres visibility rules over a slice.
type memoryBlogs struct {
	posts  []models.Blog
	ads    map[models.AdPosition]*models.BlogAd
	nextID uint
}

func newMemoryBlogs() *memoryBlogs {
	return &memoryBlogs{ads: map[models.AdPosition]*models.BlogAd{}, nextID: 1}
}

func (m *memoryBlogs) visible(now time.Time, tag string) []models.Blog {
	out := []models.Blog{}
	for _, p := range m.posts {
		if !p.IsPubliclyViewable(now) {
			continue
		}
		if tag != "" && !strings.Contains(", "+p.TagList()+", ", ", "+tag+", ") {
			continue
		}
		out = append(out, p)
	}
	return out
}

func window(posts []models.Blog, page postgres.Page) []models.Blog {
	if page.Limit == 0 {
		return posts
	}
	if page.Offset >= len(posts) {
		return []models.Blog{}
	}
	end := page.Offset + page.Limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[page.Offset:end]
}

func (m *memoryBlogs) PubliclyViewable(_ context.Context, now time.Time, page postgres.Page) ([]models.Blog, int64, error) {
	all := m.visible(now, "")
	return window(all, page), int64(len(all)), nil
}

func (m *memoryBlogs) PubliclyViewableByTag(_ context.Context, now time.Time, tag string, page postgres.Page) ([]models.Blog, int64, error) {
	all := m.visible(now, tag)
	return window(all, page), int64(len(all)), nil
}

func (m *memoryBlogs) RecentPosts(_ context.Context, now time.Time, n int) ([]models.Blog, error) {
	return window(m.visible(now, ""), postgres.Page{Limit: n}), nil
}

func (m *memoryBlogs) AdminList(_ context.Context, f postgres.BlogFilter, page postgres.Page) ([]models.Blog, int64, error) {
	out := []models.Blog{}
	for _, p := range m.posts {
		if f.Status == "" || p.Status == f.Status {
			out = append(out, p)
		}
	}
	return window(out, page), int64(len(out)), nil
}

func (m *memoryBlogs) FindBySlug(_ context.Context, slug string, visibleAt *time.Time) (*models.Blog, error) {
	for _, p := range m.posts {
		if p.Slug == slug && (visibleAt == nil || p.IsPubliclyViewable(*visibleAt)) {
			found := p
			return &found, nil
		}
	}
	return nil, postgres.ErrNotFound
}

func (m *memoryBlogs) Get(_ context.Context, id uint) (*models.Blog, error) {
	for _, p := range m.posts {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, postgres.ErrNotFound
}

func (m *memoryBlogs) SlugTaken(_ context.Context, slug string, excludeID uint) (bool, error) {
	for _, p := range m.posts {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryBlogs) Save(_ context.Context, post *models.Blog) error {
	if post.ID == 0 {
		post.ID = m.nextID
		m.nextID++
		m.posts = append(m.posts, *post)
		return nil
	}
	for i := range m.posts {
		if m.posts[i].ID == post.ID {
			m.posts[i] = *post
			return nil
		}
	}
	return postgres.ErrNotFound
}

func (m *memoryBlogs) Delete(_ context.Context, id uint) error {
	for i := range m.posts {
		if m.posts[i].ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return postgres.ErrNotFound
}

func (m *memoryBlogs) UsedTags(context.Context) ([]models.Tag, error) {
	return []models.Tag{{Name: "chicks"}, {Name: "eggs"}}, nil
}

func (m *memoryBlogs) RandomAd(_ context.Context, pos models.AdPosition) (*models.BlogAd, error) {
	return m.ads[pos], nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *Service {
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func at(d time.Duration) *time.Time {
	t := fixedNow.Add(d)
	return &t
}

func TestCreateSetsPublishDateOnlyWhenPublished(t *testing.T) {
	repo := newMemoryBlogs()
	svc := newTestService(repo)

	published, err := svc.Create(context.Background(), 1, PostInput{Title: "Hello", Content: "x", Status: models.StatusPublished})
	require.NoError(t, err)
	require.NotNil(t, published.DatePublished)
	assert.Equal(t, fixedNow, *published.DatePublished)
	assert.Equal(t, uint(1), published.AuthorID)

	draft, err := svc.Create(context.Background(), 1, PostInput{Title: "Later", Content: "x"})
	require.NoError(t, err)
	assert.Nil(t, draft.DatePublished)
	assert.Equal(t, models.StatusDraft, draft.Status)
}

func TestSlugsAreUnique(t *testing.T) {
	svc := newTestService(newMemoryBlogs())

	var slugs []string
	for i := 0; i < 3; i++ {
		post, err := svc.Create(context.Background(), 1, PostInput{Title: "Raising Koekoek Chicks!", Content: "x"})
		require.NoError(t, err)
		slugs = append(slugs, post.Slug)
	}

	assert.Equal(t, []string{"raising-koekoek-chicks", "raising-koekoek-chicks-2", "raising-koekoek-chicks-3"}, slugs)
}

func TestUpdateKeepsOwnSlug(t *testing.T) {
	svc := newTestService(newMemoryBlogs())
	post, err := svc.Create(context.Background(), 1, PostInput{Title: "Hello", Content: "x"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), post.ID, PostInput{Title: "Hello", Content: "y", Tags: []string{"eggs", " eggs", "chicks"}})
	require.NoError(t, err)

	assert.Equal(t, "hello", updated.Slug)
	assert.Equal(t, "eggs, chicks", updated.TagList())
	assert.Equal(t, uint(1), updated.AuthorID)
}

func TestDetailVisibility(t *testing.T) {
	repo := newMemoryBlogs()
	repo.posts = []models.Blog{
		{TimeStamped: models.TimeStamped{ID: 1}, Slug: "live", Status: models.StatusPublished, DatePublished: at(-time.Hour)},
		{TimeStamped: models.TimeStamped{ID: 2}, Slug: "future", Status: models.StatusPublished, DatePublished: at(time.Hour)},
		{TimeStamped: models.TimeStamped{ID: 3}, Slug: "draft", Status: models.StatusDraft},
	}
	repo.ads[models.AdTop] = &models.BlogAd{Code: "<b>top</b>"}
	svc := newTestService(repo)

	page, err := svc.Detail(context.Background(), "live", Viewer{})
	require.NoError(t, err)
	assert.Equal(t, "live", page.Post.Slug)
	require.NotNil(t, page.AdTop)
	assert.Nil(t, page.AdMiddle)
	assert.Nil(t, page.AdBottom)
	assert.Len(t, page.RecentBlogList, 1)

	for _, slug := range []string{"future", "draft"} {
		_, err := svc.Detail(context.Background(), slug, Viewer{UserID: 5})
		assert.ErrorIs(t, err, postgres.ErrNotFound, slug)

		page, err := svc.Detail(context.Background(), slug, Viewer{UserID: 1, Superuser: true})
		require.NoError(t, err, slug)
		assert.Equal(t, slug, page.Post.Slug)
	}
}

func TestListPaginatesAndFiltersByTag(t *testing.T) {
	repo := newMemoryBlogs()
	for i := 0; i < 20; i++ {
		post := models.Blog{Status: models.StatusPublished, DatePublished: at(-time.Duration(i+1) * time.Hour)}
		if i%2 == 0 {
			post.Tags = []models.Tag{{Name: "eggs"}}
		}
		require.NoError(t, repo.Save(context.Background(), &post))
	}
	svc := newTestService(repo)

	first, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 2, first.NumPages)
	assert.Len(t, first.Posts, PageSize)
	assert.Equal(t, int64(20), first.Total)
	assert.Len(t, first.BlogTags, 2)

	second, err := svc.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, second.Posts, 5)

	tagged, err := svc.ListByTag(context.Background(), "eggs", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), tagged.Total)
	assert.Equal(t, "eggs", tagged.Tag)
}

func TestAdminListAddsTagList(t *testing.T) {
	repo := newMemoryBlogs()
	repo.posts = []models.Blog{{Title: "a", Tags: []models.Tag{{Name: "eggs"}, {Name: "chicks"}}}}
	svc := newTestService(repo)

	posts, total, err := svc.AdminList(context.Background(), postgres.BlogFilter{}, postgres.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "eggs, chicks", posts[0].TagList)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":              "hello-world",
		"  Égg -- Incubation 101 ": "egg-incubation-101",
		"!!!":                      "",
		"Poulets élevés à Addis":   "poulets-eleves-a-addis",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
	assert.Len(t, Slugify(strings.Repeat("a", 300)), maxSlugLen)
}

func TestFeed(t *testing.T) {
	repo := newMemoryBlogs()
	repo.posts = []models.Blog{{
		Title:         "Hatch day",
		Slug:          "hatch-day",
		Status:        models.StatusPublished,
		DatePublished: at(-time.Hour),
		Content:       strings.Repeat("word ", 100),
	}}
	svc := newTestService(repo)

	raw, err := svc.Feed(context.Background(), "TelelBirds", "https://telelbirds.com/")
	require.NoError(t, err)

	var doc feeds.RssFeedXml
	require.NoError(t, xml.Unmarshal(raw, &doc))
	require.NotNil(t, doc.Channel)
	assert.Equal(t, "2.0", doc.Version)
	assert.Equal(t, "TelelBirds Blog | TelelBirds", doc.Channel.Title)
	assert.Equal(t, "https://telelbirds.com/", doc.Channel.Link)
	assert.Equal(t, "Updates on changes and additions to TelelBirds", doc.Channel.Description)
	require.Len(t, doc.Channel.Items, 1)
	assert.Equal(t, "https://telelbirds.com/blog/hatch-day/", doc.Channel.Items[0].Link)
	assert.Len(t, strings.Fields(doc.Channel.Items[0].Description), feedWords)
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "a b c", TruncateWords("a  b\nc", 3))
	assert.Equal(t, "a b...", TruncateWords("a b c", 2))
}
