package catalog

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/huynhanx03/go-crud/pkg/common/http/validation"
	"github.com/huynhanx03/go-crud/pkg/crud"
	"github.com/huynhanx03/go-crud/pkg/crud/crudtest"
	"github.com/huynhanx03/go-crud/pkg/database"
	"github.com/huynhanx03/go-crud/pkg/database/ent"
	"github.com/huynhanx03/go-crud/pkg/settings"
)

func newCatalog(t *testing.T) (*Catalog, *crudtest.Service[Category, *Category, int64]) {
	t.Helper()
	cats := crudtest.New[Category, *Category](crudtest.Seq())
	cats.Put(Category{ID: 1, Name: "Tools"})
	cats.Put(Category{ID: 2, Name: "Garden"})
	return New(cats), cats
}

// =============================================================================
// Validation
// =============================================================================

func TestValidateProduct(t *testing.T) {
	valid := Product{Name: "Hammer", SKU: "HAM01", CategoryID: 1, Price: MustPrice("12.50")}

	tests := []struct {
		name      string
		mutate    func(*Product)
		wantField string
		wantErr   error
	}{
		{name: "valid", mutate: func(*Product) {}},
		{name: "missing_name", mutate: func(p *Product) { p.Name = "" }, wantField: "name"},
		{name: "sku_not_alphanumeric", mutate: func(p *Product) { p.SKU = "HAM-01" }, wantField: "sku"},
		{name: "negative_price", mutate: func(p *Product) { p.Price = MustPrice("-1") }, wantField: "price"},
		{name: "unknown_category", mutate: func(p *Product) { p.CategoryID = 99 }, wantErr: ErrUnknownCategory},
	}

	c, _ := newCatalog(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)

			err := c.ValidateProduct(context.Background(), &p)
			switch {
			case tt.wantField != "":
				fields := validation.FieldErrors(err)
				if len(fields) != 1 || fields[0].Field != tt.wantField {
					t.Errorf("fields = %+v, want %s", fields, tt.wantField)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestValidateProduct_CategoryLookupFault(t *testing.T) {
	c, cats := newCatalog(t)
	cats.Fault = errors.New("store down")

	p := Product{Name: "Hammer", SKU: "HAM01", CategoryID: 1}
	if err := c.ValidateProduct(context.Background(), &p); !errors.Is(err, cats.Fault) {
		t.Errorf("err = %v", err)
	}
}

func TestPrepareProductForm(t *testing.T) {
	c, _ := newCatalog(t)
	data := map[string]any{}

	if err := c.PrepareProductForm(context.Background(), nil, data); err != nil {
		t.Fatalf("PrepareProductForm: %v", err)
	}
	cats, ok := data[ViewDataCategories].([]*Category)
	if !ok || len(cats) != 2 {
		t.Fatalf("categories = %v", data[ViewDataCategories])
	}
	if cats[0].Name != "Garden" || cats[1].Name != "Tools" {
		t.Errorf("not sorted: %s, %s", cats[0].Name, cats[1].Name)
	}
}

// =============================================================================
// Price encodings
// =============================================================================

func TestPrice_FormBinding(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		want    string
		wantErr bool
	}{
		{name: "decimal", price: "19.99", want: "19.99"},
		{name: "empty_is_zero", price: "", want: "0"},
		{name: "garbage", price: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"name": {"Saw"}, "category_id": {"2"}, "price": {tt.price}}
			var p Product
			err := binding.MapFormWithTag(&p, form, "form")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("MapFormWithTag: %v", err)
			}
			if p.Price.String() != tt.want || p.CategoryID != 2 {
				t.Errorf("got %+v", p)
			}
		})
	}
}

func TestPrice_JSONAndBSON(t *testing.T) {
	in := Product{ID: "p1", Name: "Saw", SKU: "SAW1", CategoryID: 1 << 60, Price: MustPrice("7.25")}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	var fromJSON Product
	if err := json.Unmarshal(raw, &fromJSON); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if !fromJSON.Price.Equal(in.Price.Decimal) || fromJSON.CategoryID != in.CategoryID {
		t.Errorf("json round trip = %+v", fromJSON)
	}

	doc, err := bson.Marshal(in)
	if err != nil {
		t.Fatalf("bson.Marshal: %v", err)
	}
	if got := bson.Raw(doc).Lookup("price").StringValue(); got != "7.25" {
		t.Errorf("stored price = %q", got)
	}
	var fromBSON Product
	if err := bson.Unmarshal(doc, &fromBSON); err != nil {
		t.Fatalf("bson.Unmarshal: %v", err)
	}
	if !fromBSON.Price.Equal(in.Price.Decimal) || fromBSON.ID != "p1" {
		t.Errorf("bson round trip = %+v", fromBSON)
	}
}

// =============================================================================
// SQL storage
// =============================================================================

func sqliteProducts(t *testing.T) *ent.Repository[Product, *Product, string] {
	t.Helper()
	drv, err := ent.NewDriver(settings.Database{
		Driver:   ent.DriverSQLite,
		Database: filepath.Join(t.TempDir(), "catalog.db"),
	})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	t.Cleanup(func() { drv.Close() })

	if err := Migrate(context.Background(), drv); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	repo, err := ent.NewRepository[Product, *Product, string](drv, ent.WithTable(TableProducts))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return repo
}

func TestProducts_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := sqliteProducts(t)

	in := &Product{ID: "p1", Name: "Saw", SKU: "SAW1", CategoryID: 3, Price: MustPrice("7.25")}
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := *in
	if err := repo.Create(ctx, &dup); !errors.Is(err, database.ErrDuplicateKey) {
		t.Errorf("duplicate id err = %v", err)
	}
	dup.ID = "p2"
	if err := repo.Create(ctx, &dup); err != nil {
		t.Errorf("shared sku err = %v", err)
	}

	got, err := repo.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Price.Equal(in.Price.Decimal) || got.SKU != "SAW1" || got.CategoryID != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestProducts_SQLiteClone(t *testing.T) {
	ctx := context.Background()
	svc := database.AsService[Product, *Product](sqliteProducts(t), uuid.NewString)
	d := crud.New[Product, *Product, string](TableProducts, svc, crud.WithVariant[Product](crud.VariantFull))

	created, err := d.Create(ctx, &Product{Name: "Saw", SKU: "SAW1", CategoryID: 3, Price: MustPrice("7.25")})
	if err != nil || !created.OK() {
		t.Fatalf("Create: %+v, %v", created, err)
	}
	src := created.Entity

	for range 2 {
		res, err := d.Clone(ctx, src.ID)
		if err != nil || !res.OK() {
			t.Fatalf("Clone: %+v, %v", res, err)
		}
		cp := res.Entity
		if cp.ID == "" || cp.ID == src.ID {
			t.Errorf("clone id = %q, source %q", cp.ID, src.ID)
		}
		if cp.Name != src.Name || cp.SKU != src.SKU || cp.CategoryID != src.CategoryID || !cp.Price.Equal(src.Price.Decimal) {
			t.Errorf("clone = %+v, source %+v", cp, src)
		}
	}

	list, err := d.List(ctx)
	if err != nil || len(list.Entities) != 3 {
		t.Errorf("List: %d entities, %v", len(list.Entities), err)
	}
}
