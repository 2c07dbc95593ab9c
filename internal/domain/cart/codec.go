package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Encode serializes c into the persisted cart record:
//
//	{"items":[{"productId":1,"quantity":2,"price":950,...}],"total":1900,"itemCount":2}
//
// The totals are written for the benefit of external readers; Decode and the
// store recompute them and never trust the stored values.
func Encode(c Cart) []byte {
	e := &jx.Encoder{}
	e.ObjStart()

	e.FieldStart("items")
	e.ArrStart()
	for _, it := range c.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(it.ProductID)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("price")
		e.Int64(it.Price)
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("sku")
		e.Str(it.SKU)
		if it.Image != "" {
			e.FieldStart("image")
			e.Str(it.Image)
		}
		e.FieldStart("category")
		e.Str(it.Category)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("total")
	e.Int64(c.Total)
	e.FieldStart("itemCount")
	e.Int(c.ItemCount)

	e.ObjEnd()
	return e.Bytes()
}

// Decode parses a persisted cart record and returns its line items. Unknown
// fields are skipped; stored totals are ignored. A decode error means the
// record is malformed — callers treat that as an empty cart, not a failure.
func Decode(data []byte) ([]Item, error) {
	var items []Item

	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			it, err := decodeItem(d)
			if err != nil {
				return err
			}
			items = append(items, it)
			return nil
		})
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart record")
	}

	return items, nil
}

func decodeItem(d *jx.Decoder) (Item, error) {
	var it Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			it.ProductID, err = d.Int64()
		case "quantity":
			it.Quantity, err = d.Int()
		case "price":
			it.Price, err = d.Int64()
		case "name":
			it.Name, err = d.Str()
		case "sku":
			it.SKU, err = d.Str()
		case "image":
			it.Image, err = d.Str()
		case "category":
			it.Category, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return it, err
}
