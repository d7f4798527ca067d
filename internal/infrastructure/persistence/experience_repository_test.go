package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jo-maerz/loka/internal/domain/experience"
	"github.com/jo-maerz/loka/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockExperienceRepository creates a GormExperienceRepository with a mocked SQL connection
func newMockExperienceRepository(t *testing.T) (*GormExperienceRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormExperienceRepository(gormDB), mock, mockDB
}

func experienceColumns() []string {
	return []string{
		"id", "name", "start_date_time", "end_date_time", "address",
		"lat", "lng", "description", "category", "created_by",
		"created_at", "updated_at",
	}
}

func TestGormExperienceRepository_FindByID(t *testing.T) {
	t.Run("finds existing experience with hashtags and images", func(t *testing.T) {
		repo, mock, mockDB := newMockExperienceRepository(t)
		defer mockDB.Close()

		start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
		end := start.Add(3 * time.Hour)

		rows := sqlmock.NewRows(experienceColumns()).
			AddRow(int64(7), "Street Food Night", start, end, "Turmstrasse 10, Berlin",
				52.5200, 13.4050, "Food trucks by the river", "FoodFestival", "user-1",
				start, start)

		mock.ExpectQuery(`SELECT \* FROM "experiences" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(int64(7), 1).
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT \* FROM "experience_hashtags" WHERE .* ORDER BY idx ASC`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "experience_id", "idx", "tag"}).
				AddRow(int64(1), int64(7), 0, "streetfood").
				AddRow(int64(2), int64(7), 1, "berlin"))
		mock.ExpectQuery(`SELECT \* FROM "images" WHERE .* ORDER BY id ASC`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "experience_id", "file_name", "storage_key", "content_type"}).
				AddRow(int64(3), int64(7), "poster.png", "experiences/7/poster.png", "image/png"))

		exp, err := repo.FindByID(context.Background(), 7)

		assert.NoError(t, err)
		require.NotNil(t, exp)
		assert.Equal(t, int64(7), exp.ID)
		assert.Equal(t, "Street Food Night", exp.Name)
		assert.Equal(t, 52.52, exp.Position.Lat)
		assert.Equal(t, []string{"streetfood", "berlin"}, exp.HashtagList())
		require.Len(t, exp.Images, 1)
		assert.Equal(t, "experiences/7/poster.png", exp.Images[0].StorageKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing experience", func(t *testing.T) {
		repo, mock, mockDB := newMockExperienceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "experiences" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(int64(404), 1).
			WillReturnError(gorm.ErrRecordNotFound)

		exp, err := repo.FindByID(context.Background(), 404)

		assert.Nil(t, exp)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExperienceRepository_FindByFilters(t *testing.T) {
	t.Run("combines city, date window and category", func(t *testing.T) {
		repo, mock, mockDB := newMockExperienceRepository(t)
		defer mockDB.Close()

		start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "experiences" WHERE address ILIKE \$1 AND end_date_time >= \$2 AND start_date_time <= \$3 AND category = \$4 ORDER BY id ASC`).
			WithArgs("%Berlin%", start, end, "Concert").
			WillReturnRows(sqlmock.NewRows(experienceColumns()))

		exps, err := repo.FindByFilters(context.Background(), experience.Filter{
			City:     "Berlin",
			Start:    &start,
			End:      &end,
			Category: experience.CategoryConcert,
		})

		assert.NoError(t, err)
		assert.Empty(t, exps)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("single date bound filters on that bound alone", func(t *testing.T) {
		repo, mock, mockDB := newMockExperienceRepository(t)
		defer mockDB.Close()

		start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "experiences" WHERE end_date_time >= \$1 ORDER BY id ASC`).
			WithArgs(start).
			WillReturnRows(sqlmock.NewRows(experienceColumns()))

		_, err := repo.FindByFilters(context.Background(), experience.Filter{Start: &start})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty filter selects everything", func(t *testing.T) {
		repo, mock, mockDB := newMockExperienceRepository(t)
		defer mockDB.Close()

		now := time.Now()
		rows := sqlmock.NewRows(experienceColumns()).
			AddRow(int64(1), "A", now, now.Add(time.Hour), "Somewhere 1",
				0.0, 0.0, "", "Others", "user-1", now, now).
			AddRow(int64(2), "B", now, now.Add(time.Hour), "Somewhere 2",
				0.0, 0.0, "", "Others", "user-2", now, now)

		mock.ExpectQuery(`SELECT \* FROM "experiences" ORDER BY id ASC`).
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT \* FROM "experience_hashtags" WHERE .* ORDER BY idx ASC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "experience_id", "idx", "tag"}))
		mock.ExpectQuery(`SELECT \* FROM "images" WHERE .* ORDER BY id ASC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "experience_id", "file_name", "storage_key", "content_type"}))

		exps, err := repo.FindByFilters(context.Background(), experience.Filter{})

		assert.NoError(t, err)
		assert.Len(t, exps, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExperienceRepository_Delete(t *testing.T) {
	t.Run("deletes existing experience", func(t *testing.T) {
		repo, mock, mockDB := newMockExperienceRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "experiences" WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), 7)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing was deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockExperienceRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "experiences" WHERE id = \$1`).
			WithArgs(int64(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 404)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExperienceRepository_Save(t *testing.T) {
	t.Run("replaces hashtags when updating", func(t *testing.T) {
		repo, mock, mockDB := newMockExperienceRepository(t)
		defer mockDB.Close()

		now := time.Now()
		exp := &experience.Experience{
			ID:            7,
			Name:          "Street Food Night",
			StartDateTime: now,
			EndDateTime:   now.Add(time.Hour),
			Address:       "Turmstrasse 10, Berlin",
			Category:      experience.CategoryFoodFestival,
			CreatedBy:     "user-1",
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		exp.SetHashtags([]string{"streetfood"})

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "experience_hashtags" WHERE experience_id = \$1`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`UPDATE "experiences" SET .*`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "experience_hashtags" .*`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
		mock.ExpectCommit()

		err := repo.Save(context.Background(), exp)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
