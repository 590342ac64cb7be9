package catalog

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// Schema describes the catalog document: an array of books.
func Schema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		return "catalog." + t.Name()
	}

	return reflector.Reflect([]*Book{})
}
