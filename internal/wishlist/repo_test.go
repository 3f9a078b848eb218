package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

func setupWishlistTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	books := `
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  isbn TEXT,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL,
  condition TEXT NOT NULL,
  price NUMERIC NOT NULL,
  image_urls TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS wishlist_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  book_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, book_id)
);`
	require.NoError(t, db.Exec(books).Error)
	require.NoError(t, db.Exec(items).Error)
	return db
}

func createWishlistBook(t *testing.T, db *gorm.DB, status enums.BookStatus) *models.Book {
	t.Helper()

	book := &models.Book{
		ID:        uuid.New(),
		SellerID:  uuid.New(),
		Title:     "Wishlist Book",
		Author:    "Author",
		Category:  enums.BookCategoryAcademic,
		Condition: enums.BookConditionGood,
		Price:     decimal.NewFromInt(150),
		ImageURLs: []string{"https://img.example/cover.jpg"},
		Status:    status,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestRepositoryCreateEnforcesUniquePair(t *testing.T) {
	db := setupWishlistTestDB(t)
	repo := NewRepository(db)
	user := uuid.New()
	book := createWishlistBook(t, db, enums.BookStatusApproved)

	_, err := repo.Create(context.Background(), &models.WishlistItem{UserID: user, BookID: book.ID})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), &models.WishlistItem{UserID: user, BookID: book.ID})
	require.Error(t, err)
}

func TestRepositoryDeleteByUserAndBookReportsAffected(t *testing.T) {
	db := setupWishlistTestDB(t)
	repo := NewRepository(db)
	user := uuid.New()
	book := createWishlistBook(t, db, enums.BookStatusApproved)

	_, err := repo.Create(context.Background(), &models.WishlistItem{UserID: user, BookID: book.ID})
	require.NoError(t, err)

	affected, err := repo.DeleteByUserAndBook(context.Background(), user, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.DeleteByUserAndBook(context.Background(), user, book.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestRepositoryListEntriesFiltersToApproved(t *testing.T) {
	db := setupWishlistTestDB(t)
	repo := NewRepository(db)
	user := uuid.New()

	approved := createWishlistBook(t, db, enums.BookStatusApproved)
	sold := createWishlistBook(t, db, enums.BookStatusSold)

	_, err := repo.Create(context.Background(), &models.WishlistItem{UserID: user, BookID: approved.ID})
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), &models.WishlistItem{UserID: user, BookID: sold.ID})
	require.NoError(t, err)

	entries, total, err := repo.ListEntries(context.Background(), user, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, approved.ID, entries[0].Book.ID)
}
