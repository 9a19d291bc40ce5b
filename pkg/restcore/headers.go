package restcore

import (
	"net/http"
	"strings"
)

// HeaderField is a single header name and value
type HeaderField struct {
	Name  string
	Value string
}

// Header is an ordered set of header fields, unique by case-insensitive name.
// Mutations never touch the backing array of a copied Header.
type Header struct {
	fields []HeaderField
}

// NewHeader builds a header from name/value pairs. A trailing name without a
// value is ignored.
func NewHeader(pairs ...string) Header {
	var h Header
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

func (h Header) index(name string) int {
	for i, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// Set adds a field or replaces the value of an existing one in place
func (h *Header) Set(name, value string) {
	i := h.index(name)
	if i < 0 {
		h.fields = append(h.fields[:len(h.fields):len(h.fields)], HeaderField{Name: name, Value: value})
		return
	}

	fields := h.Fields()
	fields[i].Value = value
	h.fields = fields
}

// Get returns the value for name, or "" if absent
func (h Header) Get(name string) string {
	if i := h.index(name); i >= 0 {
		return h.fields[i].Value
	}
	return ""
}

// Has reports whether name is present
func (h Header) Has(name string) bool {
	return h.index(name) >= 0
}

// Del removes name
func (h *Header) Del(name string) {
	i := h.index(name)
	if i < 0 {
		return
	}

	fields := make([]HeaderField, 0, len(h.fields)-1)
	fields = append(fields, h.fields[:i]...)
	fields = append(fields, h.fields[i+1:]...)
	h.fields = fields
}

// Len returns the number of fields
func (h Header) Len() int {
	return len(h.fields)
}

// Fields returns a copy of the fields in order
func (h Header) Fields() []HeaderField {
	out := make([]HeaderField, len(h.fields))
	copy(out, h.fields)
	return out
}

// Merge sets every field of other on h, in other's order
func (h *Header) Merge(other Header) {
	for _, f := range other.fields {
		h.Set(f.Name, f.Value)
	}
}

// toHTTP converts to net/http form
func (h Header) toHTTP() http.Header {
	out := make(http.Header, len(h.fields))
	for _, f := range h.fields {
		out.Set(f.Name, f.Value)
	}
	return out
}
