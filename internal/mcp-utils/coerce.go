// Package mcputils binds MCP tool arguments onto typed request structs.
package mcputils

import (
	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is the part of an MCP request the binder needs.
type ArgumentGetter interface {
	GetArguments() map[string]any
}

// BindArguments fills target from the request arguments, matching fields by
// json tag. Coercion is deliberately weak: clients that send numbers or
// booleans as strings still bind. Arguments without a matching field are
// ignored; fields without a matching argument keep their zero value, so the
// caller validates required fields after binding.
func BindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}
