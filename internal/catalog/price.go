package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Price is a decimal amount. It binds from form fields, encodes as a JSON
// string, stores as a string in documents and as a decimal in SQL.
type Price struct {
	decimal.Decimal
}

// NewPrice parses s, e.g. "19.99".
func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return Price{d}, nil
}

// MustPrice is NewPrice for literals.
func MustPrice(s string) Price {
	p, err := NewPrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// UnmarshalParam binds a form value. An empty value is zero.
func (p *Price) UnmarshalParam(param string) error {
	if strings.TrimSpace(param) == "" {
		*p = Price{}
		return nil
	}
	v, err := NewPrice(param)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Price) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(p.String())
}

func (p *Price) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		return p.UnmarshalParam(raw.StringValue())
	case bsontype.Double:
		*p = Price{decimal.NewFromFloat(raw.Double())}
		return nil
	case bsontype.Decimal128:
		return p.UnmarshalParam(raw.Decimal128().String())
	case bsontype.Null:
		*p = Price{}
		return nil
	}
	return fmt.Errorf("cannot decode %s into price", t)
}

// Float64 is the value seen by validation rules.
func (p Price) Float64() float64 {
	f, _ := p.Decimal.Float64()
	return f
}
