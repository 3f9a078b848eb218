package cart

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
)

func setupCartTestDB(t *testing.T) *gorm.DB {
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
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  book_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, book_id)
);`
	require.NoError(t, db.Exec(books).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func createCartBook(t *testing.T, db *gorm.DB, status enums.BookStatus) *models.Book {
	t.Helper()

	book := &models.Book{
		ID:        uuid.New(),
		SellerID:  uuid.New(),
		Title:     "Cart Book",
		Author:    "Author",
		Category:  enums.BookCategoryAcademic,
		Condition: enums.BookConditionGood,
		Price:     decimal.NewFromInt(250),
		ImageURLs: []string{"https://img.example/cover.jpg"},
		Status:    status,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestRepositoryAddOrIncrementUpserts(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	user := uuid.New()
	book := createCartBook(t, db, enums.BookStatusApproved)

	require.NoError(t, repo.AddOrIncrement(context.Background(), user, book.ID, 1))
	require.NoError(t, repo.AddOrIncrement(context.Background(), user, book.ID, 1))

	line, err := repo.FindLine(context.Background(), user, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryAddOrIncrementHonoursQuantity(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	user := uuid.New()
	book := createCartBook(t, db, enums.BookStatusApproved)

	require.NoError(t, repo.AddOrIncrement(context.Background(), user, book.ID, 2))
	require.NoError(t, repo.AddOrIncrement(context.Background(), user, book.ID, 3))

	line, err := repo.FindLine(context.Background(), user, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryListLinesJoinsBooks(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	user := uuid.New()
	approved := createCartBook(t, db, enums.BookStatusApproved)
	sold := createCartBook(t, db, enums.BookStatusSold)

	require.NoError(t, repo.AddOrIncrement(context.Background(), user, approved.ID, 1))
	require.NoError(t, repo.AddOrIncrement(context.Background(), user, sold.ID, 1))

	lines, err := repo.ListLines(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.NotEqual(t, uuid.Nil, line.Book.ID)
	}
}

func TestRepositoryClearRemovesOnlyOwnLines(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	userA := uuid.New()
	userB := uuid.New()
	book := createCartBook(t, db, enums.BookStatusApproved)

	require.NoError(t, repo.AddOrIncrement(context.Background(), userA, book.ID, 1))
	require.NoError(t, repo.AddOrIncrement(context.Background(), userB, book.ID, 1))

	require.NoError(t, repo.Clear(context.Background(), userA))

	_, err := repo.FindLine(context.Background(), userA, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	line, err := repo.FindLine(context.Background(), userB, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
}

func TestRepositoryDeleteByUserAndBook(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	user := uuid.New()
	book := createCartBook(t, db, enums.BookStatusApproved)

	require.NoError(t, repo.AddOrIncrement(context.Background(), user, book.ID, 1))
	require.NoError(t, repo.DeleteByUserAndBook(context.Background(), user, book.ID))

	_, err := repo.FindLine(context.Background(), user, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
