package mongodb

import (
	"context"
	"errors"
	"regexp"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo sobre la colección productos.
type ProductRepo struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database, collection string) *ProductRepo {
	return &ProductRepo{coll: db.Collection(collection)}
}

// EnsureIndexes índices de consulta del catálogo; sku único solo cuando está presente.
func (r *ProductRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}}},
		{Keys: bson.D{{Key: "categoria", Value: 1}}},
		{Keys: bson.D{{Key: "activo", Value: 1}}},
		{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		return dependencyErr("create product indexes", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id entity.ProductID) (*entity.Product, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.M{"productId": productIDMatch(id)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, dependencyErr("get product", err)
	}
	return doc.toEntity(), nil
}

func (r *ProductRepo) List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, int, error) {
	q := bson.M{}
	if filter.Active != nil {
		q["activo"] = *filter.Active
	}
	if filter.Category != "" {
		q["categoria"] = containsRegex(filter.Category)
	}
	if filter.Search != "" {
		q["$or"] = bson.A{
			bson.M{"nombre": containsRegex(filter.Search)},
			bson.M{"descripcion": containsRegex(filter.Search)},
		}
	}
	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, dependencyErr("count products", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}, {Key: "productId", Value: 1}})
	if filter.Limit > 0 {
		opts.SetSkip(int64(filter.Offset)).SetLimit(int64(filter.Limit))
	}
	list, err := r.find(ctx, "list products", q, opts)
	if err != nil {
		return nil, 0, err
	}
	return list, int(total), nil
}

func (r *ProductRepo) Search(ctx context.Context, term string) ([]*entity.Product, error) {
	rx := containsRegex(term)
	q := bson.M{
		"activo": true,
		"$or": bson.A{
			bson.M{"nombre": rx},
			bson.M{"descripcion": rx},
			bson.M{"categoria": rx},
		},
	}
	return r.find(ctx, "search products", q, options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}}))
}

func (r *ProductRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "categoria", bson.M{"activo": true})
	if err != nil {
		return nil, dependencyErr("list categories", err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	doc := newProductDoc(p)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"productId": productIDMatch(p.ID)}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return dependencyErr("upsert product", err)
	}
	return nil
}

func (r *ProductRepo) find(ctx context.Context, op string, q bson.M, opts *options.FindOptions) ([]*entity.Product, error) {
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, dependencyErr(op, err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, dependencyErr(op, err)
	}
	out := make([]*entity.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

// containsRegex subcadena sin distinguir mayúsculas, con el término escapado.
func containsRegex(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}
