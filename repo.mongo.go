package main

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var (
	_ BookStorage  = (*MongoBookStorage)(nil)
	_ BookReporter = (*MongoBookStorage)(nil)
)

// IndexedFields are the book fields indexed at startup.
var IndexedFields = []string{"title", "author", "price"}

// bookDocument is the shape of a book inside the collection.
type bookDocument struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Book `bson:",inline"`
}

func (d bookDocument) toStoredBook() StoredBook {
	return StoredBook{ID: d.ID.Hex(), Book: d.Book}
}

type MongoBookStorage struct {
	logger     *zap.Logger
	collection *mongo.Collection
}

// GetMongoClient provides a ready to use mongo client after a successful ping.
func GetMongoClient(ctx context.Context, config *Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(config.Mongo.URI).
		SetTimeout(config.Mongo.OpsTimeout)
	if config.Mongo.ConnectTimeout > 0 {
		opts.SetConnectTimeout(config.Mongo.ConnectTimeout)
	}
	if config.Mongo.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(config.Mongo.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	// test connection.
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("test connection failed: %w", err)
	}
	return client, nil
}

// NewMongoBookStorage provides an instance of mongo-based book storage.
func NewMongoBookStorage(logger *zap.Logger, collection *mongo.Collection) *MongoBookStorage {
	return &MongoBookStorage{
		logger:     logger,
		collection: collection,
	}
}

// ParseBookID converts the hex representation of a book id into an ObjectID.
func ParseBookID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidBookID, id)
	}
	return oid, nil
}

// EnsureIndexes creates one ascending index per indexed field. Creating
// an index which already exists with the same keys is a no-op.
func (ms *MongoBookStorage) EnsureIndexes(ctx context.Context) error {
	for _, field := range IndexedFields {
		name, err := ms.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: field, Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", field, err)
		}
		ms.logger.Info("storage: index ready", zap.String("index.field", field), zap.String("index.name", name))
	}
	return nil
}

// Add inserts a new book record then fetches it back with its assigned id.
func (ms *MongoBookStorage) Add(ctx context.Context, book Book) (StoredBook, error) {
	res, err := ms.collection.InsertOne(ctx, book)
	if err != nil {
		return StoredBook{}, fmt.Errorf("failed to insert book: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return StoredBook{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return ms.findByObjectID(ctx, oid)
}

// GetOne retrieves a book record based on its ID.
func (ms *MongoBookStorage) GetOne(ctx context.Context, id string) (StoredBook, error) {
	oid, err := ParseBookID(id)
	if err != nil {
		return StoredBook{}, err
	}
	return ms.findByObjectID(ctx, oid)
}

func (ms *MongoBookStorage) findByObjectID(ctx context.Context, oid primitive.ObjectID) (StoredBook, error) {
	var doc bookDocument
	err := ms.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return StoredBook{}, ErrBookNotFound
	}
	if err != nil {
		return StoredBook{}, fmt.Errorf("failed to find book: %w", err)
	}
	return doc.toStoredBook(), nil
}

// Replace overwrites every field of an existing book and keeps its id.
// It returns the book as stored after the replacement, not the previous
// version. A missing id never inserts a new book.
func (ms *MongoBookStorage) Replace(ctx context.Context, id string, book Book) (StoredBook, error) {
	oid, err := ParseBookID(id)
	if err != nil {
		return StoredBook{}, err
	}
	var doc bookDocument
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	err = ms.collection.FindOneAndReplace(ctx, bson.M{"_id": oid}, book, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return StoredBook{}, ErrBookNotFound
	}
	if err != nil {
		return StoredBook{}, fmt.Errorf("failed to replace book: %w", err)
	}
	return doc.toStoredBook(), nil
}

// Delete removes a book record based on its ID.
func (ms *MongoBookStorage) Delete(ctx context.Context, id string) error {
	oid, err := ParseBookID(id)
	if err != nil {
		return err
	}
	res, err := ms.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrBookNotFound
	}
	return nil
}

// GetAll retrieves all stored books in the collection natural order.
func (ms *MongoBookStorage) GetAll(ctx context.Context) ([]StoredBook, error) {
	return ms.find(ctx, bson.M{})
}

// Search retrieves the books matching every criteria set on the filter.
func (ms *MongoBookStorage) Search(ctx context.Context, filter SearchFilter) ([]StoredBook, error) {
	return ms.find(ctx, BuildSearchQuery(filter))
}

func (ms *MongoBookStorage) find(ctx context.Context, query bson.M) ([]StoredBook, error) {
	cursor, err := ms.collection.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find books: %w", err)
	}
	defer cursor.Close(ctx)

	books := []StoredBook{}
	for cursor.Next(ctx) {
		var doc bookDocument
		if err = cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode book: %w", err)
		}
		books = append(books, doc.toStoredBook())
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, nil
}

// TotalStock sums the stock of all books. An empty collection gives zero.
func (ms *MongoBookStorage) TotalStock(ctx context.Context) (TotalStock, error) {
	var total TotalStock
	cursor, err := ms.collection.Aggregate(ctx, TotalStockPipeline())
	if err != nil {
		return total, fmt.Errorf("failed to aggregate total stock: %w", err)
	}
	defer cursor.Close(ctx)

	if cursor.Next(ctx) {
		if err = cursor.Decode(&total); err != nil {
			return total, fmt.Errorf("failed to decode total stock: %w", err)
		}
	}
	return total, cursor.Err()
}

// AuthorsWithMostStock returns the authors with the highest summed stock.
func (ms *MongoBookStorage) AuthorsWithMostStock(ctx context.Context, limit int) ([]StockGroup, error) {
	return ms.aggregateGroups(ctx, StockByFieldPipeline("author", -1, limit))
}

// TitlesWithLeastStock returns the titles with the lowest summed stock.
func (ms *MongoBookStorage) TitlesWithLeastStock(ctx context.Context, limit int) ([]StockGroup, error) {
	return ms.aggregateGroups(ctx, StockByFieldPipeline("title", 1, limit))
}

func (ms *MongoBookStorage) aggregateGroups(ctx context.Context, pipeline mongo.Pipeline) ([]StockGroup, error) {
	cursor, err := ms.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stock groups: %w", err)
	}
	defer cursor.Close(ctx)

	groups := []StockGroup{}
	for cursor.Next(ctx) {
		var g StockGroup
		if err = cursor.Decode(&g); err != nil {
			return nil, fmt.Errorf("failed to decode stock group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, cursor.Err()
}

// BuildSearchQuery translates a SearchFilter into a mongo query. Title and
// author match as case-insensitive literal substrings. Price bounds are
// inclusive and each one applies on its own.
func BuildSearchQuery(filter SearchFilter) bson.M {
	query := bson.M{}
	if filter.Title != "" {
		query["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Title), Options: "i"}
	}
	if filter.Author != "" {
		query["author"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Author), Options: "i"}
	}

	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) != 0 {
		query["price"] = price
	}
	return query
}

// TotalStockPipeline groups all books into a single total_books sum.
func TotalStockPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_books", Value: bson.D{{Key: "$sum", Value: "$stock"}}},
		}}},
	}
}

// StockByFieldPipeline sums the stock per distinct value of field, sorts the
// groups by that sum in the given direction (1 or -1) then by group key, and
// keeps the first limit groups.
func StockByFieldPipeline(field string, direction, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: "$stock"}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: direction},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$limit", Value: limit}},
	}
}
