package db

import (
	"context"
	"fmt"
	"strings"

	"soundcatalog/model"
)

// KeyAttribute is the attribute every table is keyed by.
const KeyAttribute = model.AttrUID

// Store 是实体记录所在的键值存储。所有实现都把底层失败包装为 *model.StoreError
type Store interface {
	// GetItem returns nil when no record exists for uid.
	GetItem(ctx context.Context, table, uid string) (model.Record, error)
	// PutItem writes the whole record, replacing any previous one with the same uid.
	PutItem(ctx context.Context, table string, record model.Record) error
	// DeleteItem is a no-op when the record is already gone.
	DeleteItem(ctx context.Context, table, uid string) error
	// Scan returns every record of table matching filter; nil filter means all.
	Scan(ctx context.Context, table string, filter *Filter) ([]model.Record, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Filter 表示 "attr IN (:v1, :v2, ...)" 条件。Values 为空时不匹配任何记录
type Filter struct {
	Attribute   string
	Values      []string
	placeholder string
}

// In builds an IN filter over a string attribute. placeholder names the bound
// parameters, e.g. "trackId" renders ":trackId1, :trackId2".
func In(attribute, placeholder string, values []string) *Filter {
	return &Filter{Attribute: attribute, Values: values, placeholder: placeholder}
}

func (f *Filter) paramName(i int) string {
	name := f.placeholder
	if name == "" {
		name = "v"
	}
	return fmt.Sprintf(":%s%d", name, i+1)
}

// Expression renders the parameterized predicate, one parameter per value.
func (f *Filter) Expression() string {
	names := make([]string, len(f.Values))
	for i := range f.Values {
		names[i] = f.paramName(i)
	}
	return fmt.Sprintf("%s IN (%s)", f.Attribute, strings.Join(names, ", "))
}

// Parameters returns the bound values keyed by placeholder name.
func (f *Filter) Parameters() map[string]model.AttributeValue {
	params := make(map[string]model.AttributeValue, len(f.Values))
	for i, v := range f.Values {
		params[f.paramName(i)] = model.StringValue(v)
	}
	return params
}

// Match reports whether r satisfies the filter.
func (f *Filter) Match(r model.Record) bool {
	s, ok := r.String(f.Attribute)
	if !ok {
		return false
	}
	for _, v := range f.Values {
		if v == s {
			return true
		}
	}
	return false
}

// OnKey reports whether the filter selects by primary key, which lets
// adapters look records up directly instead of scanning.
func (f *Filter) OnKey() bool {
	return f != nil && f.Attribute == KeyAttribute
}

// distinct 去重并保持顺序，用于主键批量查询
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func recordKey(table string, record model.Record) (string, error) {
	uid, ok := record.String(KeyAttribute)
	if !ok || uid == "" {
		return "", model.NewStoreError("PutItem", table, fmt.Errorf("record has no %q key", KeyAttribute))
	}
	return uid, nil
}
