package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

func setupReviewsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	reviews := `
CREATE TABLE IF NOT EXISTS reviews (
  id TEXT PRIMARY KEY,
  book_id TEXT NOT NULL,
  reviewer_id TEXT NOT NULL,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  comment TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (book_id, reviewer_id)
);`
	require.NoError(t, db.Exec(reviews).Error)
	return db
}

func TestRepositoryCreateEnforcesOneReviewPerReviewer(t *testing.T) {
	db := setupReviewsTestDB(t)
	repo := NewRepository(db)
	bookID := uuid.New()
	reviewer := uuid.New()

	_, err := repo.Create(context.Background(), &models.Review{
		BookID: bookID, ReviewerID: reviewer, Rating: 4,
	})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), &models.Review{
		BookID: bookID, ReviewerID: reviewer, Rating: 5,
	})
	require.Error(t, err)
}

func TestRepositoryRatingsByBook(t *testing.T) {
	db := setupReviewsTestDB(t)
	repo := NewRepository(db)
	bookID := uuid.New()

	for _, rating := range []int{5, 3, 4} {
		_, err := repo.Create(context.Background(), &models.Review{
			BookID: bookID, ReviewerID: uuid.New(), Rating: rating,
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(context.Background(), &models.Review{
		BookID: uuid.New(), ReviewerID: uuid.New(), Rating: 1,
	})
	require.NoError(t, err)

	ratings, err := repo.RatingsByBook(context.Background(), bookID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{5, 3, 4}, ratings)
}

func TestRepositoryListByBookPaginates(t *testing.T) {
	db := setupReviewsTestDB(t)
	repo := NewRepository(db)
	bookID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(context.Background(), &models.Review{
			BookID: bookID, ReviewerID: uuid.New(), Rating: 4,
		})
		require.NoError(t, err)
	}

	page, total, err := repo.ListByBook(context.Background(), bookID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)
}
