package storage

import (
	"encoding/json"
	"fmt"

	"github.com/standardbeagle/codeindex/internal/types"
)

// decodeSymbol reverses insertSymbols' json.Marshal(sym), dispatching on the
// stored kind so callers get back the concrete Symbol variant.
func decodeSymbol(kind string, data []byte) (types.Symbol, error) {
	switch types.SymbolKind(kind) {
	case types.KindFunction, types.KindMethod, types.KindConstructor, types.KindCallback:
		var v types.FunctionSignature
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case types.KindClass:
		var v types.ClassSignature
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case types.KindInterface:
		var v types.InterfaceSignature
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case types.KindTypeAlias:
		var v types.TypeAliasSignature
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case types.KindVariable:
		var v types.VariableSignature
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case types.KindProperty:
		var v types.PropertySignature
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case types.KindConfigEntry:
		var v types.ConfigEntrySignature
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unrecognized symbol kind %q", kind)
	}
}
