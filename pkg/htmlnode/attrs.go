package htmlnode

import "strings"

// Attr is a single HTML attribute.
type Attr struct {
	Key   string
	Value string
}

// Attrs is an insertion-ordered attribute list with unique keys.
type Attrs []Attr

// NewAttrs builds an attribute list from pairs. A repeated key keeps its
// first position and takes the last value.
func NewAttrs(pairs ...Attr) Attrs {
	if len(pairs) == 0 {
		return nil
	}

	var attrs Attrs
	for _, pair := range pairs {
		attrs = attrs.With(pair.Key, pair.Value)
	}
	return attrs
}

// With returns a copy of the list with key set to value.
func (a Attrs) With(key, value string) Attrs {
	result := a.clone()
	for i := range result {
		if result[i].Key == key {
			result[i].Value = value
			return result
		}
	}
	return append(result, Attr{Key: key, Value: value})
}

// Get returns the value for key and whether it was present.
func (a Attrs) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Render serializes the attributes as ` key="value"` pairs.
// An empty list renders as the empty string.
func (a Attrs) Render() string {
	if len(a) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, attr := range a {
		builder.WriteByte(' ')
		builder.WriteString(attr.Key)
		builder.WriteString(`="`)
		builder.WriteString(attr.Value)
		builder.WriteByte('"')
	}
	return builder.String()
}

// String implements fmt.Stringer.
func (a Attrs) String() string {
	if len(a) == 0 {
		return "{}"
	}
	return "{" + strings.TrimSpace(a.Render()) + "}"
}

func (a Attrs) clone() Attrs {
	if a == nil {
		return nil
	}
	result := make(Attrs, len(a))
	copy(result, a)
	return result
}
