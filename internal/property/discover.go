package property

import (
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Strategy names reported in events, logs and stats.
const (
	StrategyRegistered    = "registered"
	StrategyGetter        = "getter"
	StrategyPrivateGetter = "private_getter"
	StrategyField         = "field"
	StrategyPrivateField  = "private_field"
	StrategyNone          = "none"
)

// maxAncestry bounds how many embedding levels discovery inspects.
const maxAncestry = 32

// discover runs the strategy chain for one key. It returns nil when no
// accessor applies.
func (r *Resolver) discover(t reflect.Type, name string, typ DeclaredType, withEnv bool) (accessor, string) {
	if fn, ok := r.registered(t, name); ok {
		return &funcAccessor{fn: fn}, StrategyRegistered
	}

	names := getterNames(name, isBoolean(typ))
	levels := ancestry(t)
	for _, getter := range names {
		if a := findPublicGetter(levels, getter, withEnv); a != nil {
			return a, StrategyGetter
		}
	}
	override := r.visibilityOverride.Load()
	if override {
		for _, getter := range names {
			if a := findPrivateGetter(levels, getter, withEnv); a != nil {
				return a, StrategyPrivateGetter
			}
		}
	}

	if a := findPublicField(t, name); a != nil {
		return a, StrategyField
	}
	if override {
		if a := findPrivateField(t, name); a != nil {
			return a, StrategyPrivateField
		}
	}
	return nil, StrategyNone
}

// getterNames lists candidate getter names in lookup order.
func getterNames(property string, boolean bool) []string {
	exported := exportedName(property)
	if boolean {
		return []string{"Is" + exported, "Get" + exported}
	}
	return []string{"Get" + exported}
}

func exportedName(property string) string {
	r, size := utf8.DecodeRuneInString(property)
	if r == utf8.RuneError {
		return property
	}
	return string(unicode.ToUpper(r)) + property[size:]
}

// level is one step of a type's ancestry: the type itself or a value embedded
// in it, directly or transitively.
type level struct {
	typ  reflect.Type
	path []int
	// public is set when every embedded field on path is exported.
	public bool
	// addressable is set when the value at this level is addressable given a
	// pointer or value target of the root type.
	addressable bool
}

// ancestry returns t followed by its embedded fields, breadth first in
// declaration order. Each type is visited once.
func ancestry(t reflect.Type) []level {
	levels := []level{{typ: t, public: true}}
	seen := map[reflect.Type]bool{t: true}
	for i := 0; i < len(levels) && len(levels) < maxAncestry; i++ {
		parent := levels[i]
		st, addressable := parent.typ, parent.addressable
		if st.Kind() == reflect.Pointer {
			st, addressable = st.Elem(), true
		}
		if st.Kind() != reflect.Struct {
			continue
		}
		for j := 0; j < st.NumField(); j++ {
			f := st.Field(j)
			if !f.Anonymous || seen[f.Type] {
				continue
			}
			seen[f.Type] = true
			levels = append(levels, level{
				typ:         f.Type,
				path:        appendIndex(parent.path, j),
				public:      parent.public && f.IsExported(),
				addressable: addressable,
			})
		}
	}
	return levels
}

func appendIndex(path []int, i int) []int {
	out := make([]int, len(path)+1)
	copy(out, path)
	out[len(path)] = i
	return out
}

// findPublicGetter looks for an exported getter reachable without the
// visibility override: on publicly embedded levels only, and through the
// pointer method set only where the level value is addressable.
func findPublicGetter(levels []level, name string, withEnv bool) *methodAccessor {
	for _, lv := range levels {
		if !lv.public {
			continue
		}
		if m, ok := lv.typ.MethodByName(name); ok {
			if a := newMethodAccessor(lv, m, false, false, withEnv); a != nil {
				return a
			}
			continue
		}
		if lv.addressable && hasValueReceiver(lv.typ) {
			if m, ok := reflect.PointerTo(lv.typ).MethodByName(name); ok {
				if a := newMethodAccessor(lv, m, true, false, withEnv); a != nil {
					return a
				}
			}
		}
	}
	return nil
}

// findPrivateGetter looks at every level, including those behind unexported
// embedded fields, and at pointer-receiver getters of values that are not
// addressable. The receiver is reached through an addressable copy.
func findPrivateGetter(levels []level, name string, withEnv bool) *methodAccessor {
	for _, lv := range levels {
		var candidates []*methodAccessor
		if m, ok := lv.typ.MethodByName(name); ok {
			if a := newMethodAccessor(lv, m, false, true, withEnv); a != nil {
				candidates = append(candidates, a)
			}
		}
		if hasValueReceiver(lv.typ) {
			if m, ok := reflect.PointerTo(lv.typ).MethodByName(name); ok {
				if a := newMethodAccessor(lv, m, true, true, withEnv); a != nil {
					candidates = append(candidates, a)
				}
			}
		}
		if len(candidates) == 0 {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].takesEnv && !candidates[j].takesEnv
		})
		return candidates[0]
	}
	return nil
}

// hasValueReceiver reports whether t has a distinct pointer method set.
func hasValueReceiver(t reflect.Type) bool {
	k := t.Kind()
	return k != reflect.Pointer && k != reflect.Interface
}

// newMethodAccessor checks m against the accepted getter shapes and builds an
// accessor for it, or returns nil.
func newMethodAccessor(lv level, m reflect.Method, addr, private, withEnv bool) *methodAccessor {
	mt := m.Type
	// Method types from concrete types carry the receiver as first input.
	in := 1
	if lv.typ.Kind() == reflect.Interface {
		in = 0
	}
	if mt.IsVariadic() {
		return nil
	}

	a := &methodAccessor{
		name:    m.Name,
		path:    lv.path,
		index:   m.Index,
		addr:    addr,
		private: private,
	}
	switch mt.NumOut() {
	case 1:
	case 2:
		if mt.Out(1) != errorType {
			return nil
		}
		a.returnsErr = true
	default:
		return nil
	}
	switch mt.NumIn() - in {
	case 0:
	case 1:
		if !withEnv || mt.In(in) != envType {
			return nil
		}
		a.takesEnv = true
	default:
		return nil
	}
	return a
}

// findPublicField finds an exported field, promoted fields included: first
// one tagged `graphql:"<name>"`, then one named after the property.
func findPublicField(t reflect.Type, name string) *fieldAccessor {
	st, ok := structType(t)
	if !ok {
		return nil
	}
	for _, f := range reflect.VisibleFields(st) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if tagName(f.Tag.Get("graphql")) == name {
			return &fieldAccessor{index: f.Index}
		}
	}
	if f, ok := st.FieldByName(exportedName(name)); ok && f.IsExported() {
		return &fieldAccessor{index: f.Index}
	}
	return nil
}

// findPrivateField finds an unexported field named exactly like the property.
func findPrivateField(t reflect.Type, name string) *fieldAccessor {
	st, ok := structType(t)
	if !ok {
		return nil
	}
	if f, ok := st.FieldByName(name); ok && !f.IsExported() {
		return &fieldAccessor{index: f.Index, private: true}
	}
	return nil
}

func structType(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return name
}
