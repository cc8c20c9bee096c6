// Package inspect computes struct memory layouts from Go source.
//
// Layouts come from go/types rather than the runtime, so a package can be
// inspected without importing it into the running binary. Offsets and sizes
// follow the standard gc size model unless the build system reports its own.
package inspect

import (
	"fmt"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// FieldLayout describes one struct field at the source level.
type FieldLayout struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Offset    int64  `json:"offset" yaml:"offset"`
	Size      int64  `json:"size" yaml:"size"`
	Tag       string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Exported  bool   `json:"exported" yaml:"exported"`
	Anonymous bool   `json:"anonymous,omitempty" yaml:"anonymous,omitempty"`
}

// StructLayout describes the memory layout of one struct type.
type StructLayout struct {
	Name   string        `json:"name" yaml:"name"`
	Size   int64         `json:"size" yaml:"size"`
	Align  int64         `json:"align" yaml:"align"`
	Fields []FieldLayout `json:"fields" yaml:"fields"`
}

// PackageReport holds the layouts of every struct declared in one package.
type PackageReport struct {
	Path    string         `json:"path" yaml:"path"`
	Name    string         `json:"name" yaml:"name"`
	Dir     string         `json:"dir,omitempty" yaml:"dir,omitempty"`
	Structs []StructLayout `json:"structs" yaml:"structs"`
}

// DefaultSizes returns the size model of the gc toolchain on 64-bit targets.
func DefaultSizes() types.Sizes {
	return types.SizesFor("gc", "amd64")
}

// Load resolves the given package patterns and reports the layout of every
// struct they declare. Packages that fail to load abort the whole run.
func Load(patterns []string, includeUnexported bool) ([]PackageReport, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedTypes |
			packages.NeedTypesSizes,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	reports := make([]PackageReport, 0, len(pkgs))
	for _, pkg := range pkgs {
		sizes := pkg.TypesSizes
		if sizes == nil {
			sizes = DefaultSizes()
		}
		var dir string
		if len(pkg.GoFiles) > 0 {
			dir = filepath.Dir(pkg.GoFiles[0])
		}
		reports = append(reports, PackageReport{
			Path:    pkg.PkgPath,
			Name:    pkg.Types.Name(),
			Dir:     dir,
			Structs: Layouts(pkg.Types, sizes, includeUnexported),
		})
	}
	return reports, nil
}

// Layouts computes the layout of every struct type declared at package
// scope, sorted by name. Aliases, generic types, and non-struct types are
// skipped. Generic types have no layout until instantiated.
func Layouts(pkg *types.Package, sizes types.Sizes, includeUnexported bool) []StructLayout {
	scope := pkg.Scope()
	names := scope.Names()
	sort.Strings(names)

	var layouts []StructLayout
	for _, name := range names {
		obj := scope.Lookup(name)
		if !includeUnexported && !obj.Exported() {
			continue
		}
		tn, ok := obj.(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		if named, ok := tn.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
			continue
		}
		st, ok := tn.Type().Underlying().(*types.Struct)
		if !ok {
			continue
		}
		layouts = append(layouts, structLayout(pkg, name, st, sizes))
	}
	return layouts
}

func structLayout(pkg *types.Package, name string, st *types.Struct, sizes types.Sizes) StructLayout {
	layout := StructLayout{
		Name:  name,
		Size:  sizes.Sizeof(st),
		Align: sizes.Alignof(st),
	}

	fields := make([]*types.Var, st.NumFields())
	for i := range fields {
		fields[i] = st.Field(i)
	}
	offsets := sizes.Offsetsof(fields)

	qual := types.RelativeTo(pkg)
	for i, f := range fields {
		layout.Fields = append(layout.Fields, FieldLayout{
			Name:      f.Name(),
			Type:      types.TypeString(f.Type(), qual),
			Offset:    offsets[i],
			Size:      sizes.Sizeof(f.Type()),
			Tag:       st.Tag(i),
			Exported:  f.Exported(),
			Anonymous: f.Anonymous(),
		})
	}
	return layout
}
