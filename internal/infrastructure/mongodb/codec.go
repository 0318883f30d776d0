package mongodb

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

// money guarda decimal.Decimal como Decimal128. Al leer acepta también double e int,
// que es como están los precios en los documentos antiguos.
type money decimal.Decimal

func (m money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(decimal.Decimal(m).String())
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(d128)
}

func (m *money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Decimal128:
		d, err := decimal.NewFromString(rv.Decimal128().String())
		if err != nil {
			return err
		}
		*m = money(d)
	case bsontype.Double:
		*m = money(decimal.NewFromFloat(rv.Double()))
	case bsontype.Int32:
		*m = money(decimal.NewFromInt32(rv.Int32()))
	case bsontype.Int64:
		*m = money(decimal.NewFromInt(rv.Int64()))
	case bsontype.Null, bsontype.Undefined:
		*m = money(decimal.Zero)
	default:
		return fmt.Errorf("monto: tipo BSON no soportado %s", t)
	}
	return nil
}

// productRef productId "Mixed": se escribe como string y se lee desde string o número.
type productRef entity.ProductID

func (p productRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(p))
}

func (p *productRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*p = productRef(entity.NormalizeProductID(rv.StringValue()))
	case bsontype.Int32:
		*p = productRef(strconv.FormatInt(int64(rv.Int32()), 10))
	case bsontype.Int64:
		*p = productRef(strconv.FormatInt(rv.Int64(), 10))
	case bsontype.Double:
		*p = productRef(entity.NormalizeProductID(strconv.FormatFloat(rv.Double(), 'f', -1, 64)))
	default:
		return fmt.Errorf("productId: tipo BSON no soportado %s", t)
	}
	return nil
}

// productIDMatch coincide con el id guardado como string o, si es entero, como número.
func productIDMatch(id entity.ProductID) interface{} {
	if n, err := strconv.ParseInt(id.String(), 10, 64); err == nil {
		return bson.M{"$in": bson.A{id.String(), n}}
	}
	return id.String()
}

// idMatch coincide con _id string (registros nuevos) u ObjectID (registros heredados).
func idMatch(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$in": bson.A{id, oid}}
	}
	return id
}
