// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// Event is a logical handle to an Event row, reached through its
// owning type's EventMap entry (spec.md §4.7).
type Event struct {
	typ Type
	ref RowRef
}

// DeclaringType returns the type that declares the event.
func (e Event) DeclaringType() Type { return e.typ }

func (e Event) row() (Row, error) { return e.typ.assembly.ctx.db.Row(e.ref) }

// Name returns the event's name.
func (e Event) Name() (string, error) {
	row, err := e.row()
	if err != nil {
		return "", err
	}
	return row.String(colEventName)
}

// EventType resolves the event's delegate type, following
// cross-assembly resolution for a TypeRef (spec.md §4.3).
func (e Event) EventType() (Type, error) {
	row, err := e.row()
	if err != nil {
		return Type{}, err
	}
	ref, err := row.Coded(colEventType)
	if err != nil {
		return Type{}, err
	}
	return e.typ.resolve(ref)
}

func (e Event) methodWithSemantics(bit uint16) (Method, bool, error) {
	db := e.typ.assembly.ctx.db
	coded, err := hasSemantics.encode(Event, e.ref.Index)
	if err != nil {
		return Method{}, false, err
	}
	first, last, err := db.sortedRange(MethodSemantics, uint64(coded))
	if err != nil {
		return Method{}, false, err
	}
	for i := first; i < last; i++ {
		row, err := db.Row(RowRef{Table: MethodSemantics, Index: i})
		if err != nil {
			return Method{}, false, err
		}
		if row.Uint16(colMethodSemanticsSemantics)&bit == 0 {
			continue
		}
		method := row.Simple(colMethodSemanticsMethod)
		return Method{assembly: e.typ.assembly, ref: method}, true, nil
	}
	return Method{}, false, nil
}

// AddMethod returns the event's add accessor, if it has one.
func (e Event) AddMethod() (Method, bool, error) { return e.methodWithSemantics(semanticsAddOn) }

// RemoveMethod returns the event's remove accessor, if it has one.
func (e Event) RemoveMethod() (Method, bool, error) { return e.methodWithSemantics(semanticsRemoveOn) }

// RaiseMethod returns the event's fire accessor, if it has one.
func (e Event) RaiseMethod() (Method, bool, error) { return e.methodWithSemantics(semanticsFire) }

// CustomAttributes returns every CustomAttribute attached to the
// event.
func (e Event) CustomAttributes() ([]CustomAttribute, error) {
	return customAttributesOf(e.typ.assembly.ctx, e.ref)
}

// Events returns the type's declared events, found via its EventMap
// row's owned range into the Event table (spec.md §4.7). A type with
// no events has no EventMap row at all.
func (t Type) Events() ([]Event, error) {
	if err := t.requireTypeDef(); err != nil {
		return nil, err
	}
	db := t.assembly.ctx.db
	mapRef, ok, err := findMapRow(db, EventMap, colEventMapParent, t.ref.Index)
	if err != nil || !ok {
		return nil, err
	}
	mapRow, err := db.Row(mapRef)
	if err != nil {
		return nil, err
	}
	first := mapRow.Simple(colEventMapEventList).Index
	end, err := nextOwnedEnd(db, EventMap, mapRef.Index, colEventMapEventList, Event)
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, end-first)
	for i := first; i < end; i++ {
		out = append(out, Event{typ: t, ref: RowRef{Table: Event, Index: i}})
	}
	return out, nil
}
