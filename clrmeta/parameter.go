// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// Parameter is a logical handle to a Param row (spec.md §4.7).
type Parameter struct {
	method Method
	ref    RowRef
}

// DeclaringMethod returns the method the parameter belongs to.
func (p Parameter) DeclaringMethod() Method { return p.method }

func (p Parameter) row() (Row, error) { return p.method.assembly.ctx.db.Row(p.ref) }

// Name returns the parameter's declared name, empty if none (common
// for parameters compiled without debug metadata).
func (p Parameter) Name() (string, error) {
	row, err := p.row()
	if err != nil {
		return "", err
	}
	return row.String(colParamName)
}

// Sequence returns the parameter's 1-based ordinal among the method's
// formal parameters.
func (p Parameter) Sequence() (uint16, error) {
	row, err := p.row()
	if err != nil {
		return 0, err
	}
	return row.Uint16(colParamSequence), nil
}

// Attributes returns the parameter's Flags.
func (p Parameter) Attributes() (ParamAttributes, error) {
	row, err := p.row()
	if err != nil {
		return 0, err
	}
	return ParamAttributes(row.Uint16(colParamFlags)), nil
}

// CustomAttributes returns every CustomAttribute attached to the
// parameter.
func (p Parameter) CustomAttributes() ([]CustomAttribute, error) {
	return customAttributesOf(p.method.assembly.ctx, p.ref)
}
