package mongo

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

func (s *Store) GetProduct(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	err := s.Collection(ProductsCollection).FindOne(ctx, bson.D{{Key: "_id", Value: code}}).Decode(&product)
	if err != nil {
		return nil, translateError(err, "product "+code)
	}
	return &product, nil
}

// ListProducts pages through the catalog newest first, optionally filtered by
// a case-insensitive name match
func (s *Store) ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	q.Normalize()
	collection := s.Collection(ProductsCollection)

	filter := bson.D{}
	if q.SearchTerm != "" {
		filter = bson.D{{Key: "name", Value: bson.Regex{Pattern: regexp.QuoteMeta(q.SearchTerm), Options: "i"}}}
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, translateError(err, "products")
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "create_date", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(q.Page) * int64(q.Size)).
		SetLimit(int64(q.Size))
	items, err := findAll[models.Product](ctx, collection, filter, findOptions)
	if err != nil {
		return nil, translateError(err, "products")
	}
	return models.NewProductPage(items, q, total), nil
}

// UpsertProduct replaces the product stored under its code, keeping the
// original create date
func (s *Store) UpsertProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if existing, err := s.GetProduct(ctx, product.Code); err == nil {
		product.CreateDate = existing.CreateDate
	} else if !global.IsKind(err, global.KindNotFound) {
		return nil, err
	}
	product.SetCreateDate()

	_, err := s.Collection(ProductsCollection).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: product.Code}},
		product,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, translateError(err, "product "+product.Code)
	}
	return product, nil
}

// DeleteProduct refuses to remove products that appear in any order
func (s *Store) DeleteProduct(ctx context.Context, code string) error {
	ordered, err := s.Collection(OrdersCollection).CountDocuments(ctx, bson.D{{Key: "details.product_code", Value: code}})
	if err != nil {
		return translateError(err, "orders")
	}
	if ordered > 0 {
		return global.Conflict("product %s is associated with existing orders", code)
	}

	result, err := s.Collection(ProductsCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: code}})
	if err != nil {
		return translateError(err, "product "+code)
	}
	if result.DeletedCount == 0 {
		return global.NotFound("product %s not found", code)
	}
	return nil
}

func (s *Store) SetProductStatus(ctx context.Context, code, status string) error {
	result, err := s.Collection(ProductsCollection).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: code}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
	)
	if err != nil {
		return translateError(err, "product "+code)
	}
	if result.MatchedCount == 0 {
		return global.NotFound("product %s not found", code)
	}
	return nil
}
