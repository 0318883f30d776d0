package mongodb

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

type productDoc struct {
	ProductID   productRef `bson:"productId"`
	Name        string     `bson:"nombre"`
	Description string     `bson:"descripcion,omitempty"`
	Price       money      `bson:"precio"`
	Category    string     `bson:"categoria,omitempty"`
	Stock       int        `bson:"stock"`
	ImageURL    string     `bson:"imagen,omitempty"`
	Active      bool       `bson:"activo"`
	SKU         string     `bson:"sku,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func (d productDoc) toEntity() *entity.Product {
	return &entity.Product{
		ID:          entity.ProductID(d.ProductID),
		Name:        d.Name,
		Description: d.Description,
		Price:       decimal.Decimal(d.Price),
		Category:    d.Category,
		Stock:       d.Stock,
		Active:      d.Active,
		SKU:         d.SKU,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func newProductDoc(p *entity.Product) productDoc {
	return productDoc{
		ProductID:   productRef(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		Category:    p.Category,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Active:      p.Active,
		SKU:         p.SKU,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type userDoc struct {
	UserID     string `bson:"userId"`
	Name       string `bson:"nombre"`
	Email      string `bson:"email"`
	ClientType string `bson:"tipoCliente"`
}

// productSnapshotDoc Key es el id canónico en texto; el índice único se apoya en él porque
// productId puede estar guardado como número en los documentos heredados.
type productSnapshotDoc struct {
	ProductID     productRef `bson:"productId"`
	Key           string     `bson:"productKey,omitempty"`
	Name          string     `bson:"nombre"`
	OriginalPrice money      `bson:"precioOriginal"`
}

// legacyKeyDoc proyección mínima para completar productKey en documentos que no lo tienen.
type legacyKeyDoc struct {
	ID      interface{} `bson:"_id"`
	Product struct {
		ProductID productRef `bson:"productId"`
	} `bson:"producto"`
}

func (d legacyKeyDoc) key() string {
	return productKey(entity.ProductID(d.Product.ProductID))
}

func productKey(id entity.ProductID) string {
	return entity.NormalizeProductID(id.String()).String()
}

type validityDoc struct {
	Start time.Time `bson:"fechaInicio"`
	End   time.Time `bson:"fechaFin"`
}

type specialPriceDoc struct {
	ID              string             `bson:"_id"`
	User            userDoc            `bson:"usuario"`
	Product         productSnapshotDoc `bson:"producto"`
	SpecialPrice    money              `bson:"precioEspecial"`
	DiscountPercent money              `bson:"porcentajeDescuento"`
	Validity        validityDoc        `bson:"vigencia"`
	Active          bool               `bson:"activo"`
	Reason          string             `bson:"motivo,omitempty"`
	CreatedBy       string             `bson:"creadoPor"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (d specialPriceDoc) toEntity() *entity.SpecialPrice {
	clientType, ok := entity.ParseClientType(d.User.ClientType)
	if !ok {
		clientType = entity.ClientType(d.User.ClientType)
	}
	return &entity.SpecialPrice{
		ID: d.ID,
		User: entity.SpecialPriceUser{
			UserID:     d.User.UserID,
			Name:       d.User.Name,
			Email:      d.User.Email,
			ClientType: clientType,
		},
		Product: entity.SpecialPriceProduct{
			ProductID:     entity.ProductID(d.Product.ProductID),
			Name:          d.Product.Name,
			OriginalPrice: decimal.Decimal(d.Product.OriginalPrice),
		},
		SpecialPrice:    decimal.Decimal(d.SpecialPrice),
		DiscountPercent: decimal.Decimal(d.DiscountPercent),
		Validity:        entity.Validity{Start: d.Validity.Start, End: d.Validity.End},
		Active:          d.Active,
		Reason:          d.Reason,
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func newSpecialPriceDoc(sp *entity.SpecialPrice) specialPriceDoc {
	return specialPriceDoc{
		ID: sp.ID,
		User: userDoc{
			UserID:     sp.User.UserID,
			Name:       sp.User.Name,
			Email:      sp.User.Email,
			ClientType: string(sp.User.ClientType),
		},
		Product: productSnapshotDoc{
			ProductID:     productRef(sp.Product.ProductID),
			Key:           productKey(sp.Product.ProductID),
			Name:          sp.Product.Name,
			OriginalPrice: money(sp.Product.OriginalPrice),
		},
		SpecialPrice:    money(sp.SpecialPrice),
		DiscountPercent: money(sp.DiscountPercent),
		Validity:        validityDoc{Start: sp.Validity.Start, End: sp.Validity.End},
		Active:          sp.Active,
		Reason:          sp.Reason,
		CreatedBy:       sp.CreatedBy,
		CreatedAt:       sp.CreatedAt,
		UpdatedAt:       sp.UpdatedAt,
	}
}
