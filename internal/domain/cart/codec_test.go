package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	c := Apply(Cart{}, Add{Candidate: Candidate{
		ProductID: 7, Price: 950, Name: "Tote Bag", SKU: "TOTE-07", Image: "tote.jpg", Category: "bags",
	}})
	c = Apply(c, Add{Candidate: Candidate{ProductID: 9, Price: 120, Name: "Sticker", SKU: "STK-09", Category: "print"}})
	c = Apply(c, SetQuantity{ProductID: 7, Quantity: 25})

	items, err := Decode(Encode(c))
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, int64(7), items[0].ProductID)
	assert.Equal(t, 25, items[0].Quantity)
	assert.Equal(t, int64(950), items[0].Price)
	assert.Equal(t, "tote.jpg", items[0].Image)
	assert.Equal(t, int64(9), items[1].ProductID)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestDecode_UnknownFieldsIgnored(t *testing.T) {
	data := []byte(`{
		"version": 3,
		"items": [
			{"productId": 1, "quantity": 2, "price": 500, "name": "Mug", "sku": "MUG-001", "category": "drinkware", "addedAt": "2025-01-01"}
		],
		"total": 999999,
		"itemCount": 42,
		"extra": {"nested": [1, 2, 3]}
	}`)

	items, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(500), items[0].Price)
}

func TestDecode_Malformed(t *testing.T) {
	for _, data := range []string{
		`{"items": [{`,
		`not json at all`,
		`{"items": "nope"}`,
		`[]`,
	} {
		_, err := Decode([]byte(data))
		assert.Error(t, err, "input: %s", data)
	}
}

func TestDecode_MissingItems(t *testing.T) {
	items, err := Decode([]byte(`{"total": 0}`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEncode_OmitsEmptyImage(t *testing.T) {
	c := Apply(Cart{}, Add{Candidate: Candidate{ProductID: 1, Price: 10, Name: "Pen", SKU: "PEN-01", Category: "office"}})

	assert.NotContains(t, string(Encode(c)), `"image"`)
}
