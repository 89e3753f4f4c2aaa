// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import (
	"path/filepath"
	"sync"

	"github.com/saferwall/clrmeta/log"
	"github.com/saferwall/clrmeta/peloader"
)

// Opener delivers the CLI metadata root byte range for a path,
// playing the "helper" role spec.md §1 puts deliberately out of
// core scope (PE/COFF parsing, file I/O, mmap). Pluggable so the
// core never hard-depends on one PE-loading strategy.
type Opener interface {
	// Open returns the metadata root bytes for path and a closer to
	// release any backing resource (e.g. an mmap) once the caller is
	// done with the assembly.
	Open(path string) (root []byte, closer func() error, err error)
}

// peOpener is the default Opener, adapting this module's peloader
// package (itself adapted from saferwall/pe's PE/COFF parser) the way
// spec.md §6 describes: mmap the file, walk just far enough to find
// the CLR data directory, hand back the metadata root.
type peOpener struct{}

func (peOpener) Open(path string) ([]byte, func() error, error) {
	f, err := peloader.New(path, nil)
	if err != nil {
		return nil, nil, wrapf(Io, err, "open %s", path)
	}
	if err := f.Parse(); err != nil {
		f.Close()
		return nil, nil, wrapf(Io, err, "parse PE headers of %s", path)
	}
	if f.CLR.MetadataRoot == nil {
		f.Close()
		return nil, nil, errf(Corrupt, "%s has no CLR metadata directory", path)
	}
	return f.CLR.MetadataRoot, f.Close, nil
}

// DefaultOpener is the Opener used when NewLoader is given none.
var DefaultOpener Opener = peOpener{}

// Resolver turns an assembly name into a loadable path, the
// pluggable collaborator load_by_name delegates to (spec.md §4.3).
type Resolver interface {
	Resolve(name AssemblyName) (path string, err error)
}

// DirectoryResolver resolves a simple name against a fixed list of
// directories, trying "<dir>/<name>.dll" then "<dir>/<name>.exe" in
// each, in order — the same shape as CxxReflect's
// DirectoryBasedMetadataResolver (SPEC_FULL.md §5).
type DirectoryResolver struct {
	Dirs []string
	stat func(string) bool
}

// NewDirectoryResolver returns a DirectoryResolver searching dirs, in
// order.
func NewDirectoryResolver(dirs ...string) *DirectoryResolver {
	return &DirectoryResolver{Dirs: dirs, stat: fileExists}
}

// Resolve implements Resolver.
func (d *DirectoryResolver) Resolve(name AssemblyName) (string, error) {
	stat := d.stat
	if stat == nil {
		stat = fileExists
	}
	for _, dir := range d.Dirs {
		for _, ext := range []string{".dll", ".exe"} {
			candidate := filepath.Join(dir, name.Name+ext)
			if stat(candidate) {
				return candidate, nil
			}
		}
	}
	return "", errf(NotFound, "could not resolve assembly %q in %d configured directories", name.Name, len(d.Dirs))
}

// Loader owns every loaded AssemblyContext; contexts live until the
// Loader is discarded (spec.md §3). A Loader is safe for concurrent
// read-only use; operations that insert a new assembly or populate a
// lazy cache serialize on an internal mutex (spec.md §5).
type Loader struct {
	opener   Opener
	resolver Resolver
	opts     *Options
	logger   *log.Helper

	mu     sync.Mutex
	byPath map[string]*AssemblyContext
}

// NewLoader returns a Loader using opener to read assembly files (nil
// means DefaultOpener) and resolver to turn assembly names into paths
// (nil means load_by_name always fails with NotFound).
func NewLoader(opener Opener, resolver Resolver, opts *Options) *Loader {
	if opener == nil {
		opener = DefaultOpener
	}
	if opts == nil {
		opts = &Options{}
	}
	return &Loader{
		opener:   opener,
		resolver: resolver,
		opts:     opts,
		logger:   newLogger(opts),
		byPath:   make(map[string]*AssemblyContext),
	}
}

// LoadByPath loads the assembly at path, or returns the already-loaded
// handle if path was loaded before (spec.md §4.3; normalized paths
// compare equal so repeated loads of "the same" file, spelled
// differently, still share one context — matching the teacher's own
// idempotent-by-identity load pattern).
func (l *Loader) LoadByPath(path string) (Assembly, error) {
	norm, err := filepath.Abs(path)
	if err != nil {
		norm = filepath.Clean(path)
	}

	l.mu.Lock()
	if ctx, ok := l.byPath[norm]; ok {
		l.mu.Unlock()
		return Assembly{ctx: ctx}, nil
	}
	l.mu.Unlock()

	root, closer, err := l.opener.Open(path)
	if err != nil {
		l.logger.Errorf("load %s failed: %v", path, err)
		return Assembly{}, err
	}
	db, err := NewDatabase(root, l.opts)
	if err != nil {
		if closer != nil {
			closer()
		}
		return Assembly{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if ctx, ok := l.byPath[norm]; ok {
		// Lost a race with another loader of the same path; keep the
		// winner and drop our duplicate parse.
		if closer != nil {
			closer()
		}
		return Assembly{ctx: ctx}, nil
	}
	ctx := &AssemblyContext{loader: l, path: norm, db: db, closer: closer}
	l.byPath[norm] = ctx
	return Assembly{ctx: ctx}, nil
}

// LoadByName resolves name through the configured Resolver, then
// delegates to LoadByPath.
func (l *Loader) LoadByName(name AssemblyName) (Assembly, error) {
	if l.resolver == nil {
		return Assembly{}, errf(NotFound, "no resolver configured, cannot resolve %s", name.FullName())
	}
	path, err := l.resolver.Resolve(name)
	if err != nil {
		l.logger.Warnf("resolve %s failed: %v", name.FullName(), err)
		return Assembly{}, err
	}
	return l.LoadByPath(path)
}

// contextFor finds the AssemblyContext owning db, by identity. It is
// the Loader-side counterpart to CxxReflect's
// MetadataLoader::GetContextForDatabase (SPEC_FULL.md §5), used when a
// resolved type (type.go) or custom-attribute constructor
// (customattribute.go) lives in another assembly's Database.
func (l *Loader) contextFor(db *Database) (*AssemblyContext, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ctx := range l.byPath {
		if ctx.db == db {
			return ctx, nil
		}
	}
	return nil, errf(InvalidArgument, "database is not owned by this loader")
}

// Close releases every loaded assembly's backing resource (e.g. its
// memory mapping). The Loader must not be used afterward.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	for _, ctx := range l.byPath {
		if ctx.closer == nil {
			continue
		}
		if err := ctx.closer(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ResolveType implements spec.md §4.3's type-resolution algorithm: a
// TypeDef or TypeSpec resolves to itself; a TypeRef resolves through
// its ResolutionScope, loading further assemblies as needed.
func (l *Loader) ResolveType(ref FullRef) (FullRef, error) {
	if ref.IsNull() {
		return FullRef{}, errf(InvalidArgument, "cannot resolve a null type reference")
	}
	switch ref.Row.Table {
	case TypeDef, TypeSpec:
		return ref, nil
	case TypeRef:
		// fall through
	default:
		return FullRef{}, errf(InvalidArgument, "cannot resolve a type reference against table %s", ref.Row.Table)
	}

	row, err := ref.DB.Row(ref.Row)
	if err != nil {
		return FullRef{}, err
	}
	scope, err := row.Coded(colTypeRefResolutionScope)
	if err != nil {
		return FullRef{}, err
	}
	name, err := row.String(colTypeRefTypeName)
	if err != nil {
		return FullRef{}, err
	}
	namespace, err := row.String(colTypeRefTypeNamespace)
	if err != nil {
		return FullRef{}, err
	}

	if scope.IsNull() {
		return FullRef{}, errf(Unsupported, "TypeRef %s.%s has a null resolution scope; ExportedType search is not implemented", namespace, name)
	}

	switch scope.Table {
	case Module:
		found, ok, err := findTypeDef(ref.DB, namespace, name)
		if err != nil {
			return FullRef{}, err
		}
		if !ok {
			return FullRef{}, errf(NotFound, "type %s.%s not found in its own module", namespace, name)
		}
		return FullRef{DB: ref.DB, Row: found}, nil

	case ModuleRef:
		// Cross-module references within a multi-file assembly are not
		// specified (spec.md §9 Open Questions); every Database this
		// Loader builds covers exactly one module, so the only thing we
		// can do is look in that same module, same as a Module scope.
		found, ok, err := findTypeDef(ref.DB, namespace, name)
		if err != nil {
			return FullRef{}, err
		}
		if !ok {
			return FullRef{}, errf(Unsupported, "TypeRef %s.%s names a ModuleRef scope; cross-module resolution is not implemented", namespace, name)
		}
		return FullRef{DB: ref.DB, Row: found}, nil

	case AssemblyRef:
		refRow, err := ref.DB.Row(scope)
		if err != nil {
			return FullRef{}, err
		}
		depName, err := assemblyNameFromAssemblyRefRow(ref.DB, refRow)
		if err != nil {
			return FullRef{}, err
		}
		dep, err := l.LoadByName(depName)
		if err != nil {
			return FullRef{}, err
		}
		found, ok, err := findTypeDef(dep.ctx.db, namespace, name)
		if err != nil {
			return FullRef{}, err
		}
		if !ok {
			return FullRef{}, errf(NotFound, "type %s.%s not found in assembly %s", namespace, name, depName.FullName())
		}
		return FullRef{DB: dep.ctx.db, Row: found}, nil

	case TypeRef:
		enclosing, err := l.ResolveType(FullRef{DB: ref.DB, Row: scope})
		if err != nil {
			return FullRef{}, err
		}
		nested, ok, err := findNestedType(enclosing.DB, enclosing.Row.Index, name)
		if err != nil {
			return FullRef{}, err
		}
		if !ok {
			return FullRef{}, errf(NotFound, "nested type %s not found on its enclosing type", name)
		}
		return FullRef{DB: enclosing.DB, Row: nested}, nil

	default:
		return FullRef{}, errf(Unsupported, "TypeRef resolution scope table %s is not supported", scope.Table)
	}
}

// findTypeDef linearly scans db's TypeDef table for an exact
// (namespace, name) match. TypeDef carries no name index, so an exact
// scan is the only option the physical layer affords. Assembly.GetType
// and GetTypeIn run their own scan and do not call this.
func findTypeDef(db *Database, namespace, name string) (RowRef, bool, error) {
	n := db.RowCount(TypeDef)
	for i := uint32(1); i <= n; i++ {
		row, err := db.Row(RowRef{Table: TypeDef, Index: i})
		if err != nil {
			return RowRef{}, false, err
		}
		rowName, err := row.String(colTypeDefTypeName)
		if err != nil {
			return RowRef{}, false, err
		}
		if rowName != name {
			continue
		}
		rowNamespace, err := row.String(colTypeDefTypeNamespace)
		if err != nil {
			return RowRef{}, false, err
		}
		if rowNamespace == namespace {
			return RowRef{Table: TypeDef, Index: i}, true, nil
		}
	}
	return RowRef{}, false, nil
}

// findNestedType looks up the TypeDef nested directly inside
// enclosingIndex whose name matches name, via the NestedClass table
// (spec.md §4.3 step 4's TypeRef case).
func findNestedType(db *Database, enclosingIndex uint32, name string) (RowRef, bool, error) {
	n := db.RowCount(NestedClass)
	for i := uint32(1); i <= n; i++ {
		row, err := db.Row(RowRef{Table: NestedClass, Index: i})
		if err != nil {
			return RowRef{}, false, err
		}
		if row.Simple(colNestedClassEnclosingClass).Index != enclosingIndex {
			continue
		}
		nested := row.Simple(colNestedClassNestedClass)
		nestedRow, err := db.Row(nested)
		if err != nil {
			return RowRef{}, false, err
		}
		nestedName, err := nestedRow.String(colTypeDefTypeName)
		if err != nil {
			return RowRef{}, false, err
		}
		if nestedName == name {
			return nested, true, nil
		}
	}
	return RowRef{}, false, nil
}
