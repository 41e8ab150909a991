package upb

import (
	"errors"
	"fmt"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// FieldLayout declares one field of a message type.
type FieldLayout struct {
	Number protowire.Number
	Name   string
	Kind   protoreflect.Kind

	Repeated bool
	// Map fields declare their entry types with MapKey and MapValue; Kind is
	// ignored.
	Map      bool
	MapKey   protoreflect.Kind
	MapValue protoreflect.Kind

	// Presence tracks set/unset for singular scalars. Singular messages and
	// oneof members always track presence.
	Presence bool
	// Oneof names the oneof the field belongs to, if any.
	Oneof string

	Packed       bool
	ValidateUTF8 bool

	// Sub is the layout of message-typed fields and map values. It may be
	// linked after construction with LinkSub.
	Sub *MiniTable
}

// Field is a validated FieldLayout bound to its table.
type Field struct {
	FieldLayout

	table  *MiniTable
	ctype  CType
	key    CType
	val    CType
	slot   int
	hasbit int // -1 when the field has no hasbit
	oneof  int // -1 when the field is not in a oneof
}

// CType is the storage type: the element type for repeated fields and
// CTypeMap for maps.
func (f *Field) CType() CType { return f.ctype }

// KeyType and ValueType describe map entries.
func (f *Field) KeyType() CType   { return f.key }
func (f *Field) ValueType() CType { return f.val }

// IsMap, IsRepeated and IsSingular classify the field's cardinality. Map
// fields are not repeated.
func (f *Field) IsMap() bool      { return f.Map }
func (f *Field) IsRepeated() bool { return f.Repeated && !f.Map }
func (f *Field) IsSingular() bool { return !f.Repeated && !f.Map }

// HasPresence reports whether the field distinguishes unset from default.
func (f *Field) HasPresence() bool {
	return f.IsSingular() && (f.hasbit >= 0 || f.oneof >= 0 || f.ctype == CTypeMessage)
}

// InOneof reports whether the field shares its slot with other members.
func (f *Field) InOneof() bool { return f.oneof >= 0 }

// Table is the message type the field belongs to.
func (f *Field) Table() *MiniTable { return f.table }

// String formats the field as Table.name(number) for panics and logs.
func (f *Field) String() string {
	return fmt.Sprintf("%s.%s(%d)", f.table.name, f.Name, f.Number)
}

// MiniTable is the storage layout of a message type: how many slots it has,
// which fields share a oneof slot, and which fields carry a hasbit.
type MiniTable struct {
	name       string
	fields     []*Field // ordered by number
	byNum      map[protowire.Number]*Field
	byName     map[string]*Field
	oneofs     []string
	numSlots   int
	numHasbits int
}

var errNoField = errors.New("no such field")

// NewMiniTable validates fields and computes their storage layout.
func NewMiniTable(name string, fields ...FieldLayout) (*MiniTable, error) {
	t := &MiniTable{
		name:   name,
		byNum:  make(map[protowire.Number]*Field, len(fields)),
		byName: make(map[string]*Field, len(fields)),
	}
	sorted := slices.Clone(fields)
	slices.SortFunc(sorted, func(a, b FieldLayout) int { return int(a.Number) - int(b.Number) })

	oneofSlot := map[string]int{}
	for _, fl := range sorted {
		f, err := t.bind(fl)
		if err != nil {
			return nil, fmt.Errorf("%s: field %d: %w", name, fl.Number, err)
		}
		if _, dup := t.byNum[f.Number]; dup {
			return nil, fmt.Errorf("%s: duplicate field number %d", name, f.Number)
		}
		if f.Name != "" {
			if _, dup := t.byName[f.Name]; dup {
				return nil, fmt.Errorf("%s: duplicate field name %q", name, f.Name)
			}
			t.byName[f.Name] = f
		}

		switch {
		case f.Oneof != "":
			idx, ok := oneofSlot[f.Oneof]
			if !ok {
				idx = len(t.oneofs)
				oneofSlot[f.Oneof] = idx
				t.oneofs = append(t.oneofs, f.Oneof)
			}
			f.oneof = idx
		case f.Presence:
			f.hasbit = t.numHasbits
			t.numHasbits++
		}
		t.byNum[f.Number] = f
		t.fields = append(t.fields, f)
	}

	// Oneof members take the slots after the regular fields.
	for _, f := range t.fields {
		if f.oneof < 0 {
			f.slot = t.numSlots
			t.numSlots++
		}
	}
	for _, f := range t.fields {
		if f.oneof >= 0 {
			f.slot = t.numSlots + f.oneof
		}
	}
	t.numSlots += len(t.oneofs)
	return t, nil
}

func (t *MiniTable) bind(fl FieldLayout) (*Field, error) {
	f := &Field{FieldLayout: fl, table: t, hasbit: -1, oneof: -1}
	if !fl.Number.IsValid() || (fl.Number >= protowire.FirstReservedNumber && fl.Number <= protowire.LastReservedNumber) {
		return nil, fmt.Errorf("invalid field number %d", fl.Number)
	}
	if fl.Map {
		f.key = CTypeOf(fl.MapKey)
		f.val = CTypeOf(fl.MapValue)
		if !f.key.IsMapKey() || fl.MapKey == protoreflect.EnumKind {
			return nil, fmt.Errorf("invalid map key kind %v", fl.MapKey)
		}
		if f.val == 0 || fl.MapValue == protoreflect.GroupKind {
			return nil, fmt.Errorf("invalid map value kind %v", fl.MapValue)
		}
		if fl.Oneof != "" || fl.Presence || fl.Packed {
			return nil, errors.New("map fields cannot be in a oneof, track presence or be packed")
		}
		f.ctype = CTypeMap
		return f, nil
	}

	f.ctype = CTypeOf(fl.Kind)
	if f.ctype == 0 {
		return nil, fmt.Errorf("invalid kind %v", fl.Kind)
	}
	if fl.Repeated {
		if fl.Oneof != "" || fl.Presence {
			return nil, errors.New("repeated fields cannot be in a oneof or track presence")
		}
		if fl.Packed && !f.ctype.Packable() {
			return nil, fmt.Errorf("%v fields cannot be packed", fl.Kind)
		}
		return f, nil
	}
	if fl.Packed {
		return nil, errors.New("singular fields cannot be packed")
	}
	if f.ctype == CTypeMessage && fl.Oneof == "" {
		// Messages track presence by pointer, not by hasbit.
		f.Presence = false
	}
	return f, nil
}

// LinkSub sets the sub-table of message field num. It is how recursive types
// refer to themselves.
func (t *MiniTable) LinkSub(num protowire.Number, sub *MiniTable) error {
	f := t.byNum[num]
	if f == nil {
		return fmt.Errorf("%s: %w %d", t.name, errNoField, num)
	}
	if !f.needsSub() {
		return fmt.Errorf("%s: field %d does not hold messages", t.name, num)
	}
	f.Sub = sub
	return nil
}

// Linked reports the first message field still missing its sub-table.
func (t *MiniTable) Linked() error {
	for _, f := range t.fields {
		if f.needsSub() && f.Sub == nil {
			return fmt.Errorf("%s: field %d has no sub-table", t.name, f.Number)
		}
	}
	return nil
}

func (f *Field) needsSub() bool {
	if f.Map {
		return f.val == CTypeMessage
	}
	return f.ctype == CTypeMessage
}

// sub returns the linked sub-table or panics.
func (f *Field) sub() *MiniTable {
	if f.Sub == nil {
		panic(fmt.Sprintf("upb: field %v has no linked sub-table", f))
	}
	return f.Sub
}

// Name is the full message name, as used in diagnostics.
func (t *MiniTable) Name() string { return t.name }

// Fields returns the fields ordered by number.
func (t *MiniTable) Fields() []*Field { return t.fields }

// FieldByNumber returns nil when num is not declared.
func (t *MiniTable) FieldByNumber(num protowire.Number) *Field { return t.byNum[num] }

// FieldByName returns nil when name is not declared.
func (t *MiniTable) FieldByName(name string) *Field { return t.byName[name] }

// Oneofs returns the oneof names ordered by their first member.
func (t *MiniTable) Oneofs() []string { return t.oneofs }

// OneofMembers returns the fields of the named oneof.
func (t *MiniTable) OneofMembers(name string) []*Field {
	var out []*Field
	for _, f := range t.fields {
		if f.Oneof == name {
			out = append(out, f)
		}
	}
	return out
}

func (t *MiniTable) oneofIndex(name string) int {
	return slices.Index(t.oneofs, name)
}
