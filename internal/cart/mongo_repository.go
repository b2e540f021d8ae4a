package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository stores one document per session in the "carts" collection.
type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *MongoRepository) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	var c domain.Cart

	filter := bson.M{"session_id": sessionID}
	err := m.collection.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &c, nil
}

func (m *MongoRepository) AddItem(ctx context.Context, sessionID string, item domain.CartItem) error {
	if item.Quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	now := time.Now()
	item.AddedAt = now

	filter := bson.M{"session_id": sessionID}

	existing, err := m.GetCart(ctx, sessionID)
	if errors.Is(err, ErrCartNotFound) {
		c := domain.NewCart(sessionID)
		c.Items = []domain.CartItem{item}

		_, err = m.collection.InsertOne(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to create cart with item: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check existing cart: %w", err)
	}

	// currency and quantity rules live in the domain; check them on a copy
	if err := existing.Clone().Add(item, item.Quantity); err != nil {
		return err
	}

	if _, ok := existing.Find(item.ProductID); ok {
		update := bson.M{
			"$inc": bson.M{"items.$[elem].quantity": item.Quantity},
			"$set": bson.M{"updated_at": now},
		}
		arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"elem.product_id": item.ProductID},
			},
		})

		_, err = m.collection.UpdateOne(ctx, filter, update, arrayFilters)
		if err != nil {
			return fmt.Errorf("failed to increment existing item: %w", err)
		}
		return nil
	}

	update := bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updated_at": now},
	}
	_, err = m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add new item: %w", err)
	}
	return nil
}

func (m *MongoRepository) UpdateItemQuantity(ctx context.Context, sessionID string, productID int64, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	filter := bson.M{
		"session_id":       sessionID,
		"items.product_id": productID,
	}

	update := bson.M{
		"$set": bson.M{
			"items.$[elem].quantity": quantity,
			"updated_at":             time.Now(),
		},
	}

	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": productID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (m *MongoRepository) RemoveItem(ctx context.Context, sessionID string, productID int64) error {
	filter := bson.M{"session_id": sessionID}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *MongoRepository) RemoveQuantities(ctx context.Context, sessionID string, quantities map[int64]int) error {
	filter := bson.M{"session_id": sessionID}
	if len(quantities) == 0 {
		n, err := m.collection.CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to check cart: %w", err)
		}
		if n == 0 {
			return ErrCartNotFound
		}
		return nil
	}

	inc := bson.M{}
	filters := make([]interface{}, 0, len(quantities))
	i := 0
	for productID, quantity := range quantities {
		elem := fmt.Sprintf("e%d", i)
		inc[fmt.Sprintf("items.$[%s].quantity", elem)] = -quantity
		filters = append(filters, bson.M{elem + ".product_id": productID})
		i++
	}
	update := bson.M{
		"$inc": inc,
		"$set": bson.M{"updated_at": time.Now()},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{Filters: filters})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to decrement items: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	// lines only ever go to zero or below through the decrement above
	pull := bson.M{"$pull": bson.M{"items": bson.M{"quantity": bson.M{"$lte": 0}}}}
	if _, err := m.collection.UpdateOne(ctx, filter, pull); err != nil {
		return fmt.Errorf("failed to drop empty items: %w", err)
	}

	if _, err := m.collection.DeleteOne(ctx, bson.M{"session_id": sessionID, "items": bson.M{"$size": 0}}); err != nil {
		return fmt.Errorf("failed to delete empty cart: %w", err)
	}
	return nil
}

func (m *MongoRepository) DeleteCart(ctx context.Context, sessionID string) error {
	filter := bson.M{"session_id": sessionID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
