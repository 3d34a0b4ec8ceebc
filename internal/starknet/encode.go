package starknet

import (
	"fmt"

	domainerrors "stark-ops.backend/internal/domain/errors"
)

// EncodeArgs encodes a structured argument object into the flat felt
// sequence the wire call expects. Formal parameters are walked in their
// declared order; the key order of the argument object is irrelevant.
func EncodeArgs(ix *Index, params []Param, args Value) ([]string, error) {
	logical := logicalParams(params)

	if len(logical) > 0 && args.IsAbsent() {
		return nil, fmt.Errorf("%d argument(s) required: %w", len(logical), domainerrors.ErrMissingConstructorArguments)
	}
	if len(logical) == 0 {
		if !args.IsAbsent() {
			return nil, domainerrors.ErrUnexpectedConstructorArguments
		}
		return []string{}, nil
	}
	if args.Kind() != KindObject {
		return nil, fmt.Errorf("arguments must be a named object: %w", domainerrors.ErrArgumentShape)
	}

	flat := make([]string, 0, len(logical))
	for _, param := range logical {
		value, ok := args.Field(param.Name)
		if !ok {
			return nil, fmt.Errorf("missing argument %q: %w", param.Name, domainerrors.ErrArgumentShape)
		}
		paramType, err := ix.ResolveType(param.Type)
		if err != nil {
			return nil, err
		}
		flat, err = encodeValue(ix, param.Name, paramType, value, flat)
		if err != nil {
			return nil, err
		}
	}
	return flat, nil
}

// encodeValue appends the pre-order, length-prefixed encoding of value to
// flat. Arrays contribute an implicit length felt before their elements.
func encodeValue(ix *Index, name string, t Type, value Value, flat []string) ([]string, error) {
	switch t.Kind {
	case TypeFelt:
		if value.Kind() != KindScalar {
			return nil, fmt.Errorf("argument %q: expected a felt: %w", name, domainerrors.ErrArgumentShape)
		}
		return append(flat, FormatFelt(value.Scalar())), nil

	case TypeArray:
		if value.Kind() != KindList {
			return nil, fmt.Errorf("argument %q: expected an array: %w", name, domainerrors.ErrArgumentShape)
		}
		items := value.Items()
		flat = append(flat, fmt.Sprintf("%d", len(items)))
		for i, item := range items {
			var err error
			flat, err = encodeValue(ix, fmt.Sprintf("%s[%d]", name, i), *t.Elem, item, flat)
			if err != nil {
				return nil, err
			}
		}
		return flat, nil

	case TypeStruct:
		if value.Kind() != KindObject {
			return nil, fmt.Errorf("argument %q: expected a %s object: %w", name, t.StructName, domainerrors.ErrArgumentShape)
		}
		entry, ok := ix.Lookup(t.StructName)
		if !ok || entry.Type != EntryStruct {
			return nil, fmt.Errorf("struct %q not in abi: %w", t.StructName, domainerrors.ErrMalformedAbi)
		}
		for _, member := range entry.Members {
			field, ok := value.Field(member.Name)
			if !ok {
				return nil, fmt.Errorf("argument %q: missing field %q: %w", name, member.Name, domainerrors.ErrArgumentShape)
			}
			memberType, err := ix.ResolveType(member.Type)
			if err != nil {
				return nil, err
			}
			flat, err = encodeValue(ix, name+"."+member.Name, memberType, field, flat)
			if err != nil {
				return nil, err
			}
		}
		return flat, nil

	default:
		return nil, fmt.Errorf("argument %q: unsupported type: %w", name, domainerrors.ErrMalformedAbi)
	}
}
