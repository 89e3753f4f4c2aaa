// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import "reflect"

// BindingFlags selects which members Type.Methods/Fields return,
// mirroring the member-filtering knobs of spec.md §4.6: visibility,
// instance/static, declared-vs-inherited and flattening, independent
// axes that combine with AND.
type BindingFlags uint8

// Flag bits. A caller ORs together the axes it wants; Public|NonPublic
// and Instance|Static both select everything along that axis.
const (
	BindingPublic BindingFlags = 1 << iota
	BindingNonPublic
	BindingInstance
	BindingStatic
	// BindingDeclaredOnly restricts the result to members declared
	// directly on the type, never walking BaseType().
	BindingDeclaredOnly
	// BindingFlattenHierarchy additionally admits inherited static
	// members; inherited instance members are always admitted once the
	// base chain is walked at all (spec.md §4.6).
	BindingFlattenHierarchy
)

// BindingDefault matches every public and non-public, instance and
// static member, walking the base-type chain the way BindingDeclaredOnly's
// absence implies: inherited instance members are included, inherited
// static members are not (BindingFlattenHierarchy is unset), matching
// spec.md §4.6's default view.
const BindingDefault = BindingPublic | BindingNonPublic | BindingInstance | BindingStatic

// flattenMethods returns t's methods matching binding. Unless
// BindingDeclaredOnly is set, it walks t.BaseType() upward, admitting
// an inherited member only if it is Instance, or it is Static and
// BindingFlattenHierarchy is set (spec.md §4.6's inherited-member
// clause). While walking, a more-derived method hides a less-derived
// one of the same name (hide-by-name), or of the same name and
// parameter types when the more-derived method's HideBySig bit is set
// (hide-by-sig, per MethodAttributes.IsHideBySig and spec.md §4.6).
func flattenMethods(t Type, binding BindingFlags) ([]Method, error) {
	var (
		out         []Method
		hiddenNames = map[string]bool{}
		hiddenSigs  []hiddenSig
	)

	cur := t
	inherited := false
	for {
		own, err := ownMethods(cur)
		if err != nil {
			return nil, err
		}
		var (
			levelNames []string
			levelSigs  []hiddenSig
		)
		for _, m := range own {
			name, err := m.Name()
			if err != nil {
				return nil, err
			}
			attrs, err := m.Attributes()
			if err != nil {
				return nil, err
			}
			sig, err := m.Signature()
			if err != nil {
				return nil, err
			}

			if !hiddenByName(hiddenNames, hiddenSigs, name, sig.Params) {
				eligible := !inherited || !attrs.IsStatic() || binding&BindingFlattenHierarchy != 0
				if eligible {
					include, err := m.matches(binding)
					if err != nil {
						return nil, err
					}
					if include {
						out = append(out, m)
					}
				}
			}

			if attrs.IsHideBySig() {
				levelSigs = append(levelSigs, hiddenSig{name: name, params: sig.Params})
			} else {
				levelNames = append(levelNames, name)
			}
		}
		for _, name := range levelNames {
			hiddenNames[name] = true
		}
		hiddenSigs = append(hiddenSigs, levelSigs...)

		if binding&BindingDeclaredOnly != 0 {
			break
		}
		base, err := cur.BaseType()
		if err != nil {
			return nil, err
		}
		if base.IsZero() {
			break
		}
		cur = base
		inherited = true
	}
	return out, nil
}

// flattenFields returns t's fields matching binding, walking the base
// chain the same way flattenMethods does. Field has no HideBySig bit,
// so a more-derived field always hides a less-derived one of the same
// name (spec.md §4.6's predicate applied without the hide-by-sig
// refinement, which ECMA-335 reserves to methods).
func flattenFields(t Type, binding BindingFlags) ([]Field, error) {
	var (
		out    []Field
		hidden = map[string]bool{}
	)

	cur := t
	inherited := false
	for {
		own, err := ownFields(cur)
		if err != nil {
			return nil, err
		}
		var levelHidden []string
		for _, f := range own {
			name, err := f.Name()
			if err != nil {
				return nil, err
			}
			attrs, err := f.Attributes()
			if err != nil {
				return nil, err
			}

			if !hidden[name] {
				eligible := !inherited || !attrs.IsStatic() || binding&BindingFlattenHierarchy != 0
				if eligible {
					include, err := f.matches(binding)
					if err != nil {
						return nil, err
					}
					if include {
						out = append(out, f)
					}
				}
			}
			levelHidden = append(levelHidden, name)
		}
		for _, name := range levelHidden {
			hidden[name] = true
		}

		if binding&BindingDeclaredOnly != 0 {
			break
		}
		base, err := cur.BaseType()
		if err != nil {
			return nil, err
		}
		if base.IsZero() {
			break
		}
		cur = base
		inherited = true
	}
	return out, nil
}

// hiddenSig is one hide-by-sig entry recorded while walking the base
// chain: a more-derived method's name and parameter types.
type hiddenSig struct {
	name   string
	params []TypeSig
}

// hiddenByName reports whether name (with params) is hidden by a
// more-derived declaration already seen: either a hide-by-name entry
// for the same name, or a hide-by-sig entry with matching parameters.
func hiddenByName(names map[string]bool, sigs []hiddenSig, name string, params []TypeSig) bool {
	if names[name] {
		return true
	}
	for _, h := range sigs {
		if h.name == name && reflect.DeepEqual(h.params, params) {
			return true
		}
	}
	return false
}
