package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

// Documentos escritos por la versión anterior: productId numérico, precios double, _id ObjectID y
// tipo de cliente en español.
func TestDecode_LegacySpecialPrice(t *testing.T) {
	oid := primitive.NewObjectID()
	fin := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(bson.M{
		"_id":     oid,
		"usuario": bson.M{"userId": "u-7", "nombre": "García", "email": "g@x.co", "tipoCliente": "Corporativo"},
		"producto": bson.M{
			"productId":      int32(12),
			"nombre":         "Café",
			"precioOriginal": 15000.0,
		},
		"precioEspecial":      12000.5,
		"porcentajeDescuento": int32(20),
		"vigencia":            bson.M{"fechaInicio": fin.AddDate(0, -1, 0), "fechaFin": fin},
		"activo":              true,
		"creadoPor":           "Sistema",
	})
	require.NoError(t, err)

	var doc specialPriceDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	sp := doc.toEntity()

	assert.Equal(t, oid.Hex(), sp.ID)
	assert.Equal(t, entity.ProductID("12"), sp.Product.ProductID)
	assert.Equal(t, entity.ClientTypeCorporate, sp.User.ClientType)
	assert.True(t, sp.Product.OriginalPrice.Equal(decimal.NewFromInt(15000)))
	assert.True(t, sp.SpecialPrice.Equal(decimal.RequireFromString("12000.5")))
	assert.True(t, sp.DiscountPercent.Equal(decimal.NewFromInt(20)))
	assert.True(t, sp.Validity.End.Equal(fin))
}

func TestMoney_EncodesDecimal128(t *testing.T) {
	typ, data, err := money(decimal.RequireFromString("19.99")).MarshalBSONValue()
	require.NoError(t, err)
	assert.Equal(t, bsontype.Decimal128, typ)

	var back money
	require.NoError(t, back.UnmarshalBSONValue(typ, data))
	assert.True(t, decimal.Decimal(back).Equal(decimal.RequireFromString("19.99")))

	assert.Error(t, back.UnmarshalBSONValue(bsontype.String, []byte{}))
}

func TestProductIDMatch(t *testing.T) {
	assert.Equal(t, bson.M{"$in": bson.A{"12", int64(12)}}, productIDMatch("12"))
	assert.Equal(t, "SKU-9", productIDMatch("SKU-9"))
}

func TestIDMatch(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, bson.M{"$in": bson.A{oid.Hex(), oid}}, idMatch(oid.Hex()))
	assert.Equal(t, "4f1c2a7e-uuid", idMatch("4f1c2a7e-uuid"))
}

// El mismo par escrito hoy (string) y por la versión anterior (int32, double) produce la misma clave
// del índice único.
func TestProductKey_MismaClaveParaIdNumericoYTexto(t *testing.T) {
	sp := &entity.SpecialPrice{
		ID:      "nuevo",
		User:    entity.SpecialPriceUser{UserID: "u-1"},
		Product: entity.SpecialPriceProduct{ProductID: "12", OriginalPrice: decimal.NewFromInt(100)},
	}
	raw, err := bson.Marshal(newSpecialPriceDoc(sp))
	require.NoError(t, err)
	written := bson.Raw(raw).Lookup("producto", "productKey")
	require.Equal(t, bsontype.String, written.Type)
	assert.Equal(t, "12", written.StringValue())

	for name, legacyID := range map[string]interface{}{
		"int32":  int32(12),
		"int64":  int64(12),
		"double": 12.0,
		"texto":  " 12 ",
	} {
		t.Run(name, func(t *testing.T) {
			legacy, err := bson.Marshal(bson.M{
				"_id":      primitive.NewObjectID(),
				"producto": bson.M{"productId": legacyID},
			})
			require.NoError(t, err)

			var doc legacyKeyDoc
			require.NoError(t, bson.Unmarshal(legacy, &doc))
			assert.Equal(t, written.StringValue(), doc.key())
		})
	}
}

func TestSpecialPriceIndexes_UnicoSobreProductKey(t *testing.T) {
	var unique []mongoIndex
	for _, m := range specialPriceIndexes() {
		if m.Options != nil && m.Options.Unique != nil && *m.Options.Unique {
			unique = append(unique, mongoIndex{keys: m.Keys.(bson.D), name: *m.Options.Name})
		}
	}
	require.Len(t, unique, 1)
	assert.Equal(t, uniqueIndexName, unique[0].name)
	assert.NotEqual(t, legacyUniqueIndexName, unique[0].name)
	assert.Equal(t, bson.D{{Key: "usuario.userId", Value: 1}, {Key: "producto.productKey", Value: 1}}, unique[0].keys)
}

type mongoIndex struct {
	keys bson.D
	name string
}
