package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jo-maerz/loka/internal/domain/experience"
	"github.com/jo-maerz/loka/internal/domain/shared"
	"github.com/jo-maerz/loka/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before any tests and handles cleanup
func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func newExperienceFixture(t *testing.T, name, address string, start, end time.Time, category experience.Category) *experience.Experience {
	t.Helper()

	exp, err := experience.NewExperience(
		name, address, "An evening worth leaving the house for",
		start, end,
		experience.Position{Lat: 52.52, Lng: 13.405},
		category,
		[]string{"live", "outdoor"},
		"creator@example.com",
	)
	require.NoError(t, err)
	return exp
}

// TestExperienceRepository_Integration tests the experience repository
// against a real PostgreSQL database.
func TestExperienceRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormExperienceRepository(testDB.DB)
	ctx := context.Background()

	base := time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC)

	t.Run("Save and FindByID", func(t *testing.T) {
		exp := newExperienceFixture(t, "Open Air Jazz", "Mauerpark, Berlin", base, base.Add(4*time.Hour), experience.CategoryConcert)

		err := repo.Save(ctx, exp)
		require.NoError(t, err)
		require.NotZero(t, exp.ID)

		found, err := repo.FindByID(ctx, exp.ID)
		require.NoError(t, err)
		assert.Equal(t, exp.Name, found.Name)
		assert.Equal(t, exp.Address, found.Address)
		assert.Equal(t, experience.CategoryConcert, found.Category)
		assert.InDelta(t, 52.52, found.Position.Lat, 1e-9)
		assert.Equal(t, []string{"live", "outdoor"}, found.HashtagList())
	})

	t.Run("FindByID not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 999999)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Save replaces hashtags on update", func(t *testing.T) {
		exp := newExperienceFixture(t, "Street Food Night", "Markthalle Neun, Berlin", base, base.Add(3*time.Hour), experience.CategoryFoodFestival)
		require.NoError(t, repo.Save(ctx, exp))

		err := exp.Update(
			exp.Name, exp.Address, exp.Description,
			exp.StartDateTime, exp.EndDateTime,
			exp.Position, exp.Category,
			[]string{"streetfood"},
		)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, exp))

		found, err := repo.FindByID(ctx, exp.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"streetfood"}, found.HashtagList())
	})

	t.Run("FindByFilters by city and window", func(t *testing.T) {
		testDB.CleanTables()

		inWindow := newExperienceFixture(t, "Harbour Market", "Fischmarkt, Hamburg", base, base.Add(6*time.Hour), experience.CategoryFleaMarket)
		require.NoError(t, repo.Save(ctx, inWindow))

		otherCity := newExperienceFixture(t, "Harbour Market South", "Hafen, Rostock", base, base.Add(6*time.Hour), experience.CategoryFleaMarket)
		require.NoError(t, repo.Save(ctx, otherCity))

		past := newExperienceFixture(t, "Winter Market", "Rathausmarkt, Hamburg", base.AddDate(0, -6, 0), base.AddDate(0, -6, 0).Add(5*time.Hour), experience.CategoryFleaMarket)
		require.NoError(t, repo.Save(ctx, past))

		start := base.Add(-time.Hour)
		end := base.Add(8 * time.Hour)
		results, err := repo.FindByFilters(ctx, experience.Filter{
			City:  "hamburg",
			Start: &start,
			End:   &end,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, inWindow.ID, results[0].ID)
	})

	t.Run("FindByFilters overlap includes running events", func(t *testing.T) {
		testDB.CleanTables()

		// Starts before the window but still running inside it
		running := newExperienceFixture(t, "Weekend Festival", "Tempelhofer Feld, Berlin", base.Add(-24*time.Hour), base.Add(24*time.Hour), experience.CategoryOutdoorGathering)
		require.NoError(t, repo.Save(ctx, running))

		start := base
		end := base.Add(2 * time.Hour)
		results, err := repo.FindByFilters(ctx, experience.Filter{Start: &start, End: &end})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, running.ID, results[0].ID)
	})

	t.Run("FindByFilters by category", func(t *testing.T) {
		testDB.CleanTables()

		concert := newExperienceFixture(t, "Cellar Concert", "Kreuzberg, Berlin", base, base.Add(2*time.Hour), experience.CategoryConcert)
		require.NoError(t, repo.Save(ctx, concert))
		market := newExperienceFixture(t, "Flea Market", "Boxhagener Platz, Berlin", base, base.Add(2*time.Hour), experience.CategoryFleaMarket)
		require.NoError(t, repo.Save(ctx, market))

		results, err := repo.FindByFilters(ctx, experience.Filter{Category: experience.CategoryConcert})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, concert.ID, results[0].ID)
	})

	t.Run("Delete cascades to hashtags and images", func(t *testing.T) {
		testDB.CleanTables()

		exp := newExperienceFixture(t, "Gallery Night", "Mitte, Berlin", base, base.Add(2*time.Hour), experience.CategoryExhibition)
		require.NoError(t, repo.Save(ctx, exp))

		imageRepo := persistence.NewGormImageRepository(testDB.DB)
		img, err := experience.NewImage(exp.ID, "poster.jpg", "image/jpeg")
		require.NoError(t, err)
		require.NoError(t, imageRepo.Save(ctx, img))

		require.NoError(t, repo.Delete(ctx, exp.ID))

		_, err = repo.FindByID(ctx, exp.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		var hashtagCount, imageCount int64
		require.NoError(t, testDB.DB.Raw("SELECT COUNT(*) FROM experience_hashtags").Scan(&hashtagCount).Error)
		require.NoError(t, testDB.DB.Raw("SELECT COUNT(*) FROM images").Scan(&imageCount).Error)
		assert.Zero(t, hashtagCount)
		assert.Zero(t, imageCount)
	})

	t.Run("Delete not found", func(t *testing.T) {
		err := repo.Delete(ctx, 424242)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
