package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/precios-especiales-api/internal/domain"
	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
)

var _ repository.SpecialPriceRepository = (*SpecialPriceRepo)(nil)

// SpecialPriceRepo precios especiales sobre la colección preciosEspecialesGarcia25.
// El índice único compuesto {usuario.userId, producto.productKey} garantiza un registro por par,
// sin importar si productId quedó guardado como número o como texto.
type SpecialPriceRepo struct {
	coll *mongo.Collection
}

func NewSpecialPriceRepository(db *mongo.Database, collection string) *SpecialPriceRepo {
	return &SpecialPriceRepo{coll: db.Collection(collection)}
}

const (
	uniqueIndexName       = "usuario_producto_key_unique"
	legacyUniqueIndexName = "usuario_producto_unique"
)

// Códigos de error del servidor que DropOne tolera.
const (
	codeNamespaceNotFound = 26
	codeIndexNotFound     = 27
)

func specialPriceIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "usuario.userId", Value: 1}, {Key: "producto.productKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(uniqueIndexName),
		},
		{Keys: bson.D{{Key: "producto.productKey", Value: 1}}},
		{Keys: bson.D{{Key: "usuario.email", Value: 1}}},
		{Keys: bson.D{{Key: "activo", Value: 1}}},
		{Keys: bson.D{{Key: "vigencia.fechaInicio", Value: 1}, {Key: "vigencia.fechaFin", Value: 1}}},
	}
}

// EnsureIndexes completa producto.productKey en los documentos heredados, retira el índice único
// anterior (sobre productId) y crea los índices. Debe ejecutarse antes de aceptar escrituras.
// Si los datos heredados ya tienen el mismo par con productId numérico y de texto, la creación
// del índice único falla y el arranque se detiene.
func (r *SpecialPriceRepo) EnsureIndexes(ctx context.Context) error {
	if err := r.backfillProductKeys(ctx); err != nil {
		return err
	}
	if _, err := r.coll.Indexes().DropOne(ctx, legacyUniqueIndexName); err != nil && !isIndexNotFound(err) {
		return dependencyErr("drop legacy special price index", err)
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, specialPriceIndexes()); err != nil {
		return dependencyErr("create special price indexes", err)
	}
	return nil
}

func (r *SpecialPriceRepo) backfillProductKeys(ctx context.Context) error {
	cur, err := r.coll.Find(ctx,
		bson.M{"producto.productKey": bson.M{"$exists": false}},
		options.Find().SetProjection(bson.M{"producto.productId": 1}),
	)
	if err != nil {
		return dependencyErr("find special prices without product key", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc legacyKeyDoc
		if err := cur.Decode(&doc); err != nil {
			return fmt.Errorf("productKey heredado: %w", err)
		}
		_, err := r.coll.UpdateOne(ctx, bson.M{"_id": doc.ID},
			bson.M{"$set": bson.M{"producto.productKey": doc.key()}})
		if err != nil {
			return dependencyErr("backfill product key", err)
		}
	}
	if err := cur.Err(); err != nil {
		return dependencyErr("backfill product key", err)
	}
	return nil
}

func isIndexNotFound(err error) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return cmdErr.Code == codeIndexNotFound || cmdErr.Code == codeNamespaceNotFound
}

func (r *SpecialPriceRepo) InsertUnique(ctx context.Context, sp *entity.SpecialPrice) error {
	if _, err := r.coll.InsertOne(ctx, newSpecialPriceDoc(sp)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.ConflictError{Key: domain.ConflictKey(sp.User.UserID, sp.Product.ProductID.String())}
		}
		return dependencyErr("insert special price", err)
	}
	return nil
}

func (r *SpecialPriceRepo) GetByID(ctx context.Context, id string) (*entity.SpecialPrice, error) {
	return r.findOne(ctx, "get special price", bson.M{"_id": idMatch(id)})
}

func (r *SpecialPriceRepo) FindByUserAndProduct(ctx context.Context, userID string, productID entity.ProductID) (*entity.SpecialPrice, error) {
	return r.findOne(ctx, "find special price", bson.M{
		"usuario.userId":      userID,
		"producto.productKey": productKey(productID),
	})
}

func (r *SpecialPriceRepo) FindByUserAndProducts(ctx context.Context, userID string, productIDs []entity.ProductID) ([]*entity.SpecialPrice, error) {
	if len(productIDs) == 0 {
		return []*entity.SpecialPrice{}, nil
	}
	keys := make(bson.A, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	return r.find(ctx, "find special prices batch", bson.M{
		"usuario.userId":      userID,
		"producto.productKey": bson.M{"$in": keys},
	}, nil)
}

func (r *SpecialPriceRepo) Update(ctx context.Context, sp *entity.SpecialPrice) error {
	doc := newSpecialPriceDoc(sp)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": idMatch(sp.ID)}, bson.M{"$set": bson.M{
		"precioEspecial":      doc.SpecialPrice,
		"porcentajeDescuento": doc.DiscountPercent,
		"vigencia":            doc.Validity,
		"activo":              doc.Active,
		"motivo":              doc.Reason,
		"updatedAt":           doc.UpdatedAt,
	}})
	if err != nil {
		return dependencyErr("update special price", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "precio especial", ID: sp.ID}
	}
	return nil
}

func (r *SpecialPriceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": idMatch(id)})
	if err != nil {
		return dependencyErr("delete special price", err)
	}
	if res.DeletedCount == 0 {
		return &domain.NotFoundError{Resource: "precio especial", ID: id}
	}
	return nil
}

func (r *SpecialPriceRepo) QueryByUser(ctx context.Context, userID string, q entity.SpecialPriceQuery) ([]*entity.SpecialPrice, error) {
	filter := bson.M{"usuario.userId": userID}
	applyQuery(filter, q)
	return r.find(ctx, "query special prices by user", filter, byCreation(1))
}

func (r *SpecialPriceRepo) QueryByProduct(ctx context.Context, productID entity.ProductID, q entity.SpecialPriceQuery) ([]*entity.SpecialPrice, error) {
	filter := bson.M{"producto.productKey": productKey(productID)}
	applyQuery(filter, q)
	return r.find(ctx, "query special prices by product", filter, byCreation(1))
}

func (r *SpecialPriceRepo) List(ctx context.Context, f entity.SpecialPriceFilter) ([]*entity.SpecialPrice, int, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["usuario.userId"] = f.UserID
	}
	if !f.ProductID.IsZero() {
		filter["producto.productKey"] = productKey(f.ProductID)
	}
	if f.Active != nil {
		filter["activo"] = *f.Active
	}
	if f.ValidAt != nil {
		applyQuery(filter, entity.SpecialPriceQuery{ActiveOnly: true, ValidAt: f.ValidAt})
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, dependencyErr("count special prices", err)
	}
	opts := byCreation(-1)
	if f.Limit > 0 {
		opts.SetSkip(int64(f.Offset)).SetLimit(int64(f.Limit))
	}
	list, err := r.find(ctx, "list special prices", filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return list, int(total), nil
}

func applyQuery(filter bson.M, q entity.SpecialPriceQuery) {
	if q.ActiveOnly {
		filter["activo"] = true
	}
	if q.ValidAt != nil {
		at := q.ValidAt.UTC().Truncate(time.Millisecond)
		filter["vigencia.fechaInicio"] = bson.M{"$lte": at}
		filter["vigencia.fechaFin"] = bson.M{"$gte": at}
	}
}

func byCreation(dir int) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: dir}, {Key: "_id", Value: 1}})
}

func (r *SpecialPriceRepo) findOne(ctx context.Context, op string, filter bson.M) (*entity.SpecialPrice, error) {
	var doc specialPriceDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, dependencyErr(op, err)
	}
	return doc.toEntity(), nil
}

func (r *SpecialPriceRepo) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]*entity.SpecialPrice, error) {
	if opts == nil {
		opts = options.Find()
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, dependencyErr(op, err)
	}
	var docs []specialPriceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, dependencyErr(op, err)
	}
	out := make([]*entity.SpecialPrice, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}
