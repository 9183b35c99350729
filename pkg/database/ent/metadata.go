package ent

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/huynhanx03/go-crud/pkg/utils"
)

type fieldInfo struct {
	Index  int
	Column string
}

type tableMetadata struct {
	Typ     reflect.Type
	Table   string
	ID      fieldInfo
	Fields  []fieldInfo // every mapped field except the key
	Columns []string    // key first, then Fields

	byName map[string]string // column, field name or snake_case field name -> column
}

func (m *tableMetadata) column(key string) (string, bool) {
	col, ok := m.byName[key]
	return col, ok
}

// columnName follows the same rules as ent's row scanner so that rows scan back into T.
func columnName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup(TagSQL); ok {
		return tag
	}
	if tag, ok := f.Tag.Lookup(TagJSON); ok {
		return strings.Split(tag, ",")[0]
	}
	return strings.ToLower(f.Name)
}

func newTableMetadata[T any](table string) (*tableMetadata, error) {
	var zero T
	typ := reflect.TypeOf(zero)

	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("T must be a struct, got %s", typ.Kind())
	}
	if table == "" {
		table = utils.ToSnakeCase(typ.Name()) + "s"
	}

	meta := &tableMetadata{Typ: typ, Table: table, ID: fieldInfo{Index: -1}, byName: make(map[string]string)}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col := columnName(field)
		if col == "-" || col == "" {
			continue
		}

		info := fieldInfo{Index: i, Column: col}
		meta.byName[col] = col
		meta.byName[field.Name] = col
		meta.byName[utils.ToSnakeCase(field.Name)] = col
		if col == ColumnID {
			meta.ID = info
			continue
		}
		meta.Fields = append(meta.Fields, info)
	}

	if meta.ID.Index < 0 {
		return nil, fmt.Errorf("%s has no %q column", typ.Name(), ColumnID)
	}

	meta.Columns = append(meta.Columns, meta.ID.Column)
	for _, f := range meta.Fields {
		meta.Columns = append(meta.Columns, f.Column)
	}
	return meta, nil
}

// values returns the key followed by every field value of model, matching Columns.
func (m *tableMetadata) values(model reflect.Value) []any {
	out := make([]any, 0, len(m.Columns))
	out = append(out, model.Field(m.ID.Index).Interface())
	for _, f := range m.Fields {
		out = append(out, model.Field(f.Index).Interface())
	}
	return out
}
