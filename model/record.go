package model

// AttributeValue is a tagged value stored in a key-value record.
// Exactly one of S or L is set.
type AttributeValue struct {
	S *string  `json:"S,omitempty"`
	L []string `json:"L,omitempty"`
}

// StringValue 构造字符串类型的属性值
func StringValue(s string) AttributeValue {
	return AttributeValue{S: &s}
}

// StringListValue 构造字符串列表类型的属性值（保持顺序，允许重复）
func StringListValue(l []string) AttributeValue {
	cp := make([]string, len(l))
	copy(cp, l)
	return AttributeValue{L: cp}
}

// IsString reports whether the value carries the string tag.
func (v AttributeValue) IsString() bool {
	return v.S != nil
}

// IsStringList reports whether the value carries the list tag.
// An empty list loses its tag in JSON, so an untagged value counts as an empty list.
func (v AttributeValue) IsStringList() bool {
	return v.S == nil
}

// Record is a single entity record as held by the key-value store.
type Record map[string]AttributeValue

// String 返回字符串属性，不存在或类型不符时 ok 为 false
func (r Record) String(name string) (string, bool) {
	v, exists := r[name]
	if !exists || !v.IsString() {
		return "", false
	}
	return *v.S, true
}
