package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	productsCollection        = "products"
	categoriesCollection      = "categories"
	deliveryOptionsCollection = "delivery_options"
)

// MongoCatalogRepository reads products, categories and delivery options.
// The Upsert methods are used by the seed command only.
type MongoCatalogRepository struct {
	db *mongo.Database
}

func NewMongoCatalogRepository(db *mongo.Database) *MongoCatalogRepository {
	return &MongoCatalogRepository{db: db}
}

func (m *MongoCatalogRepository) ListProducts(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	filter := bson.M{}
	if categoryID != "" {
		filter["category_id"] = categoryID
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := m.db.Collection(productsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	products := make([]*domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetProduct looks the product up by id, then by slug.
func (m *MongoCatalogRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	filter := bson.M{"$or": bson.A{bson.M{"_id": id}, bson.M{"slug": id}}}

	err := m.db.Collection(productsCollection).FindOne(ctx, filter).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (m *MongoCatalogRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.db.Collection(categoriesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	categories := make([]*domain.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// ListDeliveryOptions returns every option in declaration order, which is
// also the order custom city triggers are matched in.
func (m *MongoCatalogRepository) ListDeliveryOptions(ctx context.Context) ([]domain.DeliveryOption, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "value", Value: 1}})
	cursor, err := m.db.Collection(deliveryOptionsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery options: %w", err)
	}
	result := make([]domain.DeliveryOption, 0)
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode delivery options: %w", err)
	}
	return result, nil
}

func (m *MongoCatalogRepository) UpsertProduct(ctx context.Context, p *domain.Product) error {
	return m.replace(ctx, productsCollection, bson.M{"_id": p.ID}, p)
}

func (m *MongoCatalogRepository) UpsertCategory(ctx context.Context, c *domain.Category) error {
	return m.replace(ctx, categoriesCollection, bson.M{"_id": c.ID}, c)
}

func (m *MongoCatalogRepository) UpsertDeliveryOption(ctx context.Context, o domain.DeliveryOption) error {
	return m.replace(ctx, deliveryOptionsCollection, bson.M{"value": o.Value}, o)
}

func (m *MongoCatalogRepository) replace(ctx context.Context, collection string, filter bson.M, doc interface{}) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := m.db.Collection(collection).ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", collection, err)
	}
	return nil
}

func (m *MongoCatalogRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.db.Collection(productsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	_, err = m.db.Collection(deliveryOptionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "value", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create delivery option indexes: %w", err)
	}
	return nil
}
