package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func float(v float64) *float64 {
	return &v
}

func TestBuildSearchQuery(t *testing.T) {
	testCases := []struct {
		name     string
		filter   SearchFilter
		expected bson.M
	}{
		{
			"empty filter matches all",
			SearchFilter{},
			bson.M{},
		},
		{
			"title only",
			SearchFilter{Title: "go"},
			bson.M{"title": primitive.Regex{Pattern: "go", Options: "i"}},
		},
		{
			"regex characters are literal",
			SearchFilter{Author: "O'Reilly (ed.)"},
			bson.M{"author": primitive.Regex{Pattern: `O'Reilly \(ed\.\)`, Options: "i"}},
		},
		{
			"lower bound only",
			SearchFilter{MinPrice: float(10)},
			bson.M{"price": bson.M{"$gte": 10.0}},
		},
		{
			"upper bound only",
			SearchFilter{MaxPrice: float(0)},
			bson.M{"price": bson.M{"$lte": 0.0}},
		},
		{
			"all criteria",
			SearchFilter{Title: "a", Author: "b", MinPrice: float(10), MaxPrice: float(20)},
			bson.M{
				"title":  primitive.Regex{Pattern: "a", Options: "i"},
				"author": primitive.Regex{Pattern: "b", Options: "i"},
				"price":  bson.M{"$gte": 10.0, "$lte": 20.0},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, BuildSearchQuery(tc.filter))
		})
	}
}

func TestTotalStockPipeline(t *testing.T) {
	expected := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_books", Value: bson.D{{Key: "$sum", Value: "$stock"}}},
		}}},
	}
	assert.Equal(t, expected, TotalStockPipeline())
}

func TestStockByFieldPipeline(t *testing.T) {
	pipeline := StockByFieldPipeline("author", -1, ReportsLimit)
	assert.Len(t, pipeline, 3)
	assert.Equal(t, bson.E{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$author"},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: "$stock"}}},
	}}, pipeline[0][0])
	assert.Equal(t, bson.E{Key: "$sort", Value: bson.D{
		{Key: "count", Value: -1},
		{Key: "_id", Value: 1},
	}}, pipeline[1][0])
	assert.Equal(t, bson.E{Key: "$limit", Value: 5}, pipeline[2][0])
}

func TestParseBookID(t *testing.T) {
	oid, err := ParseBookID("65a1f0c2e4b0a1b2c3d4e5f6")
	assert.NoError(t, err)
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", oid.Hex())

	for _, id := range []string{"", "abc", "65a1f0c2e4b0a1b2c3d4e5fz", "65a1f0c2e4b0a1b2c3d4e5f6aa"} {
		_, err = ParseBookID(id)
		assert.ErrorIs(t, err, ErrInvalidBookID, id)
	}
}
