//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/mamadbah2/telelbirds/internal/config"
	"github.com/mamadbah2/telelbirds/internal/domain/models"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgis/postgis:16-3.4-alpine",
		tcpostgres.WithDatabase("telel_birds"),
		tcpostgres.WithUsername("telel"),
		tcpostgres.WithPassword("telel"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	testDB, err = Open(config.DatabaseConfig{DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 1}, nil)
	if err != nil {
		panic(err)
	}
	if err := Migrate(testDB); err != nil {
		panic(err)
	}

	code := m.Run()

	_ = Close(testDB)
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestMigrateIsIdempotent(t *testing.T) {
	require.NoError(t, Migrate(testDB))
}

func TestDeletingBreedKeepsBreeders(t *testing.T) {
	ctx := context.Background()
	breeds := NewStore[models.Breed](testDB)
	breeders := NewStore[models.Breeders](testDB, "Breed")

	breed := &models.Breed{Code: "KOEK", BreedName: "Koekoek"}
	require.NoError(t, breeds.Create(ctx, breed))
	batch := &models.Breeders{Batch: "BR-1", BreedID: &breed.ID, Hens: 10, Cocks: 5, Butchered: 2, Sold: 1}
	require.NoError(t, breeders.Create(ctx, batch))

	stored, err := breeders.Get(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.CurrentNumber)
	require.NotNil(t, stored.Breed)
	assert.Equal(t, "Koekoek", stored.Breed.BreedName)

	require.NoError(t, breeds.Delete(ctx, breed.ID))

	stored, err = breeders.Get(ctx, batch.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.BreedID)

	assert.ErrorIs(t, breeds.Delete(ctx, breed.ID), ErrNotFound)
}

func TestUnknownParentIsForeignKeyError(t *testing.T) {
	missing := uint(987654)
	err := NewStore[models.Breeders](testDB).Create(context.Background(), &models.Breeders{BreedID: &missing})
	assert.ErrorIs(t, err, ErrForeignKey)
}

func TestCustomerLocationIsStored(t *testing.T) {
	ctx := context.Background()
	lat, lng := 9.03, 38.74
	c := &models.Customer{FirstName: "Abebe", LastName: "Kebede", Latitude: &lat, Longitude: &lng}
	require.NoError(t, NewStore[models.Customer](testDB).Create(ctx, c))

	var wkt string
	require.NoError(t, testDB.Raw(`SELECT ST_AsText(location) FROM customers WHERE id = ?`, c.ID).Scan(&wkt).Error)
	assert.Equal(t, "POINT(38.74 9.03)", wkt)
	assert.Equal(t, "Abebe Kebede", c.FullName)
}

func TestCreateUserCreatesOneSettingsRow(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(testDB)

	user := &models.User{Username: "keeper", PasswordHash: "x", IsActive: true}
	require.NoError(t, repo.CreateUser(ctx, user))

	var count int64
	require.NoError(t, testDB.Model(&models.UserSettings{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindByUsername(ctx, "keeper")
	require.NoError(t, err)
	require.NotNil(t, found.Settings)
	assert.Equal(t, "UTC", found.Settings.Timezone)

	err = repo.CreateUser(ctx, &models.User{Username: "keeper", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPubliclyViewable(t *testing.T) {
	ctx := context.Background()
	repo := NewBlogRepository(testDB)
	author := &models.User{Username: "writer", PasswordHash: "x", IsActive: true}
	require.NoError(t, NewAccountRepository(testDB).CreateUser(ctx, author))

	now := time.Now().UTC()
	past, future := now.Add(-time.Hour), now.Add(time.Hour)
	posts := []*models.Blog{
		{AuthorID: author.ID, Title: "Visible", Slug: "visible", Content: "a", Status: models.StatusPublished, DatePublished: &past,
			Tags: []models.Tag{{Name: "hatchery", Slug: "hatchery"}}},
		{AuthorID: author.ID, Title: "Scheduled", Slug: "scheduled", Content: "b", Status: models.StatusPublished, DatePublished: &future},
		{AuthorID: author.ID, Title: "Draft", Slug: "draft", Content: "c", Status: models.StatusDraft, DatePublished: &past},
	}
	for _, p := range posts {
		require.NoError(t, repo.Save(ctx, p))
	}

	got, total, err := repo.PubliclyViewable(ctx, now, Page{Limit: 15})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, "visible", got[0].Slug)
	require.NotNil(t, got[0].Author)
	assert.Equal(t, "writer", got[0].Author.Username)

	byTag, _, err := repo.PubliclyViewableByTag(ctx, now, "hatchery", Page{Limit: 15})
	require.NoError(t, err)
	assert.Len(t, byTag, 1)

	_, err = repo.FindBySlug(ctx, "draft", &now)
	assert.ErrorIs(t, err, ErrNotFound)
	draft, err := repo.FindBySlug(ctx, "draft", nil)
	require.NoError(t, err)
	assert.Equal(t, "Draft", draft.Title)

	tags, err := repo.UsedTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "hatchery", tags[0].Name)

	dup := &models.Blog{AuthorID: author.ID, Title: "Copy", Slug: "visible", Content: "d"}
	assert.ErrorIs(t, repo.Save(ctx, dup), ErrDuplicate)

	ad, err := repo.RandomAd(ctx, models.AdTop)
	require.NoError(t, err)
	assert.Nil(t, ad)
}

func TestFarmTotals(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.Exec(`TRUNCATE "Candling", "Hatching", chickssold CASCADE`).Error)

	require.NoError(t, NewStore[models.Candling](testDB).Create(ctx, &models.Candling{Eggs: 100, SpoiltEggs: 7}))
	require.NoError(t, NewStore[models.Hatching](testDB).Create(ctx, &models.Hatching{Hatched: 90, Deformed: 3}))
	require.NoError(t, NewStore[models.ChicksSold](testDB).Create(ctx, &models.ChicksSold{Number: 10, Price: decimal.RequireFromString("12.50")}))

	totals, err := NewFarmRepository(testDB).FarmTotals(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(100), totals.EggsCandled)
	assert.Equal(t, int64(93), totals.FertileEggs)
	assert.Equal(t, int64(87), totals.ChicksHatched)
	assert.Equal(t, int64(10), totals.ChicksSold)
	assert.True(t, decimal.RequireFromString("125").Equal(totals.SalesRevenue), totals.SalesRevenue.String())
}

func TestRecentPostsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewBlogRepository(testDB)
	author := &models.User{Username: "archivist", PasswordHash: "x", IsActive: true}
	require.NoError(t, NewAccountRepository(testDB).CreateUser(ctx, author))

	// Posts dated before every other fixture, seen from an instant in 2000.
	now := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	order := []int{3, 1, 6, 2, 5, 4}
	for _, day := range order {
		published := time.Date(1999, time.December, day, 12, 0, 0, 0, time.UTC)
		post := &models.Blog{
			AuthorID:      author.ID,
			Title:         fmt.Sprintf("Archive %d", day),
			Slug:          fmt.Sprintf("archive-%d", day),
			Content:       "old news",
			Status:        models.StatusPublished,
			DatePublished: &published,
		}
		require.NoError(t, repo.Save(ctx, post))
	}

	got, err := repo.RecentPosts(ctx, now, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)

	slugs := make([]string, 0, len(got))
	for _, p := range got {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"archive-6", "archive-5", "archive-4", "archive-3", "archive-2"}, slugs)
}
