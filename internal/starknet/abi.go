package starknet

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	domainerrors "stark-ops.backend/internal/domain/errors"
)

// Entry kinds found in a Cairo contract ABI.
const (
	EntryFunction    = "function"
	EntryConstructor = "constructor"
	EntryStruct      = "struct"
	EntryEvent       = "event"
	EntryL1Handler   = "l1_handler"
)

// ConstructorName is the reserved entry name of a contract constructor.
const ConstructorName = "constructor"

// Param is a named, typed input or output of a function entry.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Member is a named, typed field of a struct entry.
type Member struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Offset int    `json:"offset"`
}

// Entry is one ABI entry: a function, constructor, struct or event.
type Entry struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Inputs  []Param  `json:"inputs,omitempty"`
	Outputs []Param  `json:"outputs,omitempty"`
	Members []Member `json:"members,omitempty"`
	Size    int      `json:"size,omitempty"`
	Keys    []Param  `json:"keys,omitempty"`
	Data    []Param  `json:"data,omitempty"`
}

// Index maps entry names to ABI entries. Built once per contract and
// immutable afterward, so it is safe to share across goroutines.
type Index struct {
	entries map[string]Entry
}

// LoadIndex reads and indexes a contract ABI file.
func LoadIndex(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, domainerrors.ErrAbiNotFound)
	}
	return ParseIndex(raw)
}

// ParseIndex indexes a raw ABI JSON document.
func ParseIndex(raw []byte) (*Index, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse abi: %v: %w", err, domainerrors.ErrAbiNotFound)
	}

	index := &Index{entries: make(map[string]Entry, len(entries))}
	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("abi entry of type %q has no name: %w", entry.Type, domainerrors.ErrMalformedAbi)
		}
		index.entries[entry.Name] = entry
	}
	return index, nil
}

// Lookup returns the entry with the given name. Absence is a checked
// outcome, not an error; callers decide whether it is fatal.
func (ix *Index) Lookup(name string) (Entry, bool) {
	entry, ok := ix.entries[name]
	return entry, ok
}

// Function returns the function entry with the given name.
func (ix *Index) Function(name string) (Entry, bool) {
	entry, ok := ix.entries[name]
	if !ok || entry.Type != EntryFunction {
		return Entry{}, false
	}
	return entry, true
}

// Constructor returns the contract's constructor entry, if any.
func (ix *Index) Constructor() (Entry, bool) {
	entry, ok := ix.entries[ConstructorName]
	if !ok || entry.Type != EntryConstructor {
		return Entry{}, false
	}
	return entry, true
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return len(ix.entries) }

// TypeKind discriminates the closed set of ABI type shapes.
type TypeKind int

const (
	TypeFelt TypeKind = iota
	TypeArray
	TypeStruct
)

// Type is a recursive ABI type descriptor.
type Type struct {
	Kind       TypeKind
	Elem       *Type  // element type, for arrays
	StructName string // struct entry name, for structs
}

// ResolveType parses a raw ABI type string into a Type, resolving struct
// names against the index. A trailing "*" marks an array of the prefix type.
func (ix *Index) ResolveType(raw string) (Type, error) {
	raw = strings.TrimSpace(raw)
	if raw == "felt" {
		return Type{Kind: TypeFelt}, nil
	}
	if strings.HasSuffix(raw, "*") {
		elem, err := ix.ResolveType(strings.TrimSuffix(raw, "*"))
		if err != nil {
			return Type{}, err
		}
		return Type{Kind: TypeArray, Elem: &elem}, nil
	}
	entry, ok := ix.entries[raw]
	if !ok || entry.Type != EntryStruct {
		return Type{}, fmt.Errorf("unknown type %q: %w", raw, domainerrors.ErrMalformedAbi)
	}
	return Type{Kind: TypeStruct, StructName: raw}, nil
}

// isLengthMarker reports whether params[i] is the implicit "<name>_len: felt"
// length field of the array parameter that immediately follows it. Such a
// pair encodes a single logical array argument.
func isLengthMarker(params []Param, i int) bool {
	if params[i].Type != "felt" || !strings.HasSuffix(params[i].Name, "_len") {
		return false
	}
	if i+1 >= len(params) {
		return false
	}
	next := params[i+1]
	return strings.HasSuffix(next.Type, "*") &&
		next.Name == strings.TrimSuffix(params[i].Name, "_len")
}

// logicalParams strips array length markers, leaving one Param per caller
// visible argument in declared order.
func logicalParams(params []Param) []Param {
	out := make([]Param, 0, len(params))
	for i := range params {
		if isLengthMarker(params, i) {
			continue
		}
		out = append(out, params[i])
	}
	return out
}
