// Package catalog is a small product catalog served through the crud dispatcher.
package catalog

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/huynhanx03/go-crud/pkg/common/http/validation"
	"github.com/huynhanx03/go-crud/pkg/crud"
)

const (
	ResourceProducts   = "products"
	ResourceCategories = "categories"

	// ViewDataCategories holds []*Category for product forms.
	ViewDataCategories = "categories"
)

// ErrUnknownCategory rejects a product pointing at a missing category.
var ErrUnknownCategory = errors.New("category_id: unknown category")

// Product is sold in a Category. Its id is a uuid so it fits every backend.
type Product struct {
	ID         string `json:"id" form:"id" bson:"_id"`
	Name       string `json:"name" form:"name" bson:"name" validate:"required,max=120"`
	SKU        string `json:"sku" form:"sku" bson:"sku" validate:"required,alphanum,max=32"`
	CategoryID int64  `json:"category_id,string" form:"category_id" bson:"category_id" validate:"required"`
	Price      Price  `json:"price" form:"price" bson:"price" validate:"gte=0"`
}

func (p *Product) GetID() string   { return p.ID }
func (p *Product) SetID(id string) { p.ID = id }

// Category groups products. Ids come from the snowflake generator.
type Category struct {
	ID   int64  `json:"id,string" form:"id" bson:"_id"`
	Name string `json:"name" form:"name" bson:"name" validate:"required,max=60"`
}

func (c *Category) GetID() int64   { return c.ID }
func (c *Category) SetID(id int64) { c.ID = id }

var registerOnce sync.Once

func registerPrice() {
	registerOnce.Do(func() {
		validation.Validator().RegisterCustomTypeFunc(func(v reflect.Value) any {
			return v.Interface().(Price).Float64()
		}, Price{})
	})
}

// Catalog holds the hooks that tie products to categories.
type Catalog struct {
	categories crud.Service[Category, int64]
}

// New creates a Catalog reading categories from svc.
func New(categories crud.Service[Category, int64]) *Catalog {
	registerPrice()
	return &Catalog{categories: categories}
}

// ValidateProduct runs the tag rules and checks that the category exists.
func (c *Catalog) ValidateProduct(ctx context.Context, p *Product) error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	cat, err := c.categories.Read(ctx, p.CategoryID)
	if err != nil {
		return errors.WithMessage(err, "look up category")
	}
	if cat == nil {
		return ErrUnknownCategory
	}
	return nil
}

// ValidateCategory runs the tag rules.
func (c *Catalog) ValidateCategory(_ context.Context, cat *Category) error {
	return validation.Struct(cat)
}

// PrepareProductForm loads the category dropdown, sorted by name.
func (c *Catalog) PrepareProductForm(ctx context.Context, _ *Product, data crud.ViewData) error {
	cats, err := c.categories.ReadAll(ctx)
	if err != nil {
		return errors.WithMessage(err, "load categories")
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	data[ViewDataCategories] = cats
	return nil
}
