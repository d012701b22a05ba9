package products

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fruitstand-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqlite stand-in for gen_random_uuid() so inserts that omit the id
// still get a valid v4 value back through RETURNING.
const sqliteUUIDDefault = `(lower(hex(randomblob(4))) || '-' || lower(hex(randomblob(2))) || '-4' || substr(lower(hex(randomblob(2))), 2) || '-' || substr('89ab', abs(random()) % 4 + 1, 1) || substr(lower(hex(randomblob(2))), 2) || '-' || lower(hex(randomblob(6))))`

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY DEFAULT %s,
  name TEXT NOT NULL,
  description TEXT,
  price_cents INTEGER NOT NULL,
  image_url TEXT,
  stock INTEGER NOT NULL DEFAULT 0,
  tags TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, sqliteUUIDDefault)
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func newProductService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestCreateProduct(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductService(t, db)

	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "  Honeycrisp Apples ",
		PriceCents: 350,
		Stock:      40,
		Tags:       []string{" Fresh ", "fresh", "SEASONAL", ""},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, dto.ID)
	assert.Equal(t, "Honeycrisp Apples", dto.Name)
	assert.Equal(t, 350, dto.PriceCents)
	assert.Equal(t, "3.50", dto.Price)
	assert.Equal(t, []string{"fresh", "seasonal"}, dto.Tags)
}

func TestCreateProductValidation(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductService(t, db)
	ctx := context.Background()

	cases := []CreateProductInput{
		{Name: "  ", PriceCents: 100},
		{Name: "Figs", PriceCents: -1},
		{Name: "Figs", PriceCents: 100, Stock: -5},
	}
	for _, input := range cases {
		_, err := svc.CreateProduct(ctx, input)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "input %+v", input)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

func TestUpdateProduct(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductService(t, db)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Kiwis", PriceCents: 275, Stock: 10})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "no fields to update", typed.Message())

	newPrice := 299
	newStock := 25
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{
		PriceCents: &newPrice,
		Stock:      &newStock,
	})
	require.NoError(t, err)
	assert.Equal(t, 299, updated.PriceCents)
	assert.Equal(t, "2.99", updated.Price)
	assert.Equal(t, 25, updated.Stock)
	assert.Equal(t, "Kiwis", updated.Name)

	_, err = svc.UpdateProduct(ctx, uuid.New(), UpdateProductInput{PriceCents: &newPrice})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetAndDeleteProduct(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductService(t, db)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Mangoes", PriceCents: 450})
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))

	_, err = svc.GetProduct(ctx, created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	err = svc.DeleteProduct(ctx, created.ID)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListProductsPagination(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductService(t, db)
	ctx := context.Background()

	now := time.Now().UTC()
	names := []string{"Apricots", "Blueberries", "Cherries"}
	for i, name := range names {
		product := &models.Product{
			ID:         uuid.New(),
			Name:       name,
			PriceCents: 100 * (i + 1),
			Tags:       pq.StringArray{"stone"},
			CreatedAt:  now.Add(time.Duration(i) * time.Minute),
			UpdatedAt:  now.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(product).Error)
	}

	first, err := svc.ListProducts(ctx, ListProductsInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, "Cherries", first.Products[0].Name)
	assert.Equal(t, "Blueberries", first.Products[1].Name)

	second, err := svc.ListProducts(ctx, ListProductsInput{Limit: 2, Cursor: *first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	assert.Nil(t, second.NextCursor)
	assert.Equal(t, "Apricots", second.Products[0].Name)
}

func TestListProductsBadCursor(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductService(t, db)

	_, err := svc.ListProducts(context.Background(), ListProductsInput{Cursor: "not-base64!"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
