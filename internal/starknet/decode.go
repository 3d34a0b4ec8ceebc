package starknet

import (
	"fmt"
	"math/big"

	domainerrors "stark-ops.backend/internal/domain/errors"
)

// DecodeResult reconstructs a structured result object from the flat felt
// sequence returned by the network, consuming it left to right in output
// declaration order. The sequence must be consumed exactly: running out
// early is ErrTruncatedOutput, values left over is ErrTrailingOutput.
func DecodeResult(ix *Index, outputs []Param, flat []string) (Value, error) {
	cursor := &feltCursor{flat: flat}
	fields := make(map[string]Value)

	for _, output := range logicalParams(outputs) {
		outputType, err := ix.ResolveType(output.Type)
		if err != nil {
			return Value{}, err
		}
		value, err := decodeValue(ix, output.Name, outputType, cursor)
		if err != nil {
			return Value{}, err
		}
		fields[output.Name] = value
	}

	if cursor.pos != len(flat) {
		return Value{}, fmt.Errorf("%d value(s) left after decoding all outputs: %w",
			len(flat)-cursor.pos, domainerrors.ErrTrailingOutput)
	}
	return Object(fields), nil
}

type feltCursor struct {
	flat []string
	pos  int
}

func (c *feltCursor) next(name string) (*big.Int, error) {
	if c.pos >= len(c.flat) {
		return nil, fmt.Errorf("output %q: %w", name, domainerrors.ErrTruncatedOutput)
	}
	raw := c.flat[c.pos]
	c.pos++
	v, err := ParseFelt(raw)
	if err != nil {
		return nil, fmt.Errorf("output %q: invalid felt %q: %w", name, raw, domainerrors.ErrUnparsableSubmission)
	}
	return v, nil
}

func decodeValue(ix *Index, name string, t Type, cursor *feltCursor) (Value, error) {
	switch t.Kind {
	case TypeFelt:
		v, err := cursor.next(name)
		if err != nil {
			return Value{}, err
		}
		return BigFelt(v), nil

	case TypeArray:
		length, err := cursor.next(name + "_len")
		if err != nil {
			return Value{}, err
		}
		if !length.IsInt64() || length.Int64() < 0 {
			return Value{}, fmt.Errorf("output %q: invalid array length: %w", name, domainerrors.ErrUnparsableSubmission)
		}
		n := int(length.Int64())
		items := make([]Value, 0, n)
		for i := 0; i < n; i++ {
			item, err := decodeValue(ix, fmt.Sprintf("%s[%d]", name, i), *t.Elem, cursor)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return List(items...), nil

	case TypeStruct:
		entry, ok := ix.Lookup(t.StructName)
		if !ok || entry.Type != EntryStruct {
			return Value{}, fmt.Errorf("struct %q not in abi: %w", t.StructName, domainerrors.ErrMalformedAbi)
		}
		fields := make(map[string]Value, len(entry.Members))
		for _, member := range entry.Members {
			memberType, err := ix.ResolveType(member.Type)
			if err != nil {
				return Value{}, err
			}
			field, err := decodeValue(ix, name+"."+member.Name, memberType, cursor)
			if err != nil {
				return Value{}, err
			}
			fields[member.Name] = field
		}
		return Object(fields), nil

	default:
		return Value{}, fmt.Errorf("output %q: unsupported type: %w", name, domainerrors.ErrMalformedAbi)
	}
}
