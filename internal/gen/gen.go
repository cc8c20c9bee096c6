// Package gen generates mirror registration files from struct layouts.
//
// The output is one Go source file per package: a package-level var block
// that calls mirror.MustRegister for every eligible struct, so descriptors
// are published at image load without hand-written registration code.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/noaland/mirror/internal/inspect"
)

// Header marks generated files. Tools that honor the Go convention skip
// files whose first line matches it.
const Header = "// Code generated by mirror gen. DO NOT EDIT."

// StructSpec names one struct and the fields to register, in order.
type StructSpec struct {
	Name   string
	Fields []string
}

// Generator emits Go registration code.
type Generator struct {
	buf        *bytes.Buffer
	indent     int
	modulePath string
}

// NewGenerator creates a generator that imports mirror from modulePath.
func NewGenerator(modulePath string) *Generator {
	return &Generator{
		buf:        &bytes.Buffer{},
		modulePath: modulePath,
	}
}

// FromReport converts a package report into struct specs. Unexported and
// promoted-only content is filtered out: only exported direct fields can be
// registered, and structs with no eligible fields are skipped.
func FromReport(rep inspect.PackageReport, includeUnexported bool) []StructSpec {
	var specs []StructSpec
	for _, st := range rep.Structs {
		if !includeUnexported && !exportedName(st.Name) {
			continue
		}
		var fields []string
		for _, f := range st.Fields {
			if !f.Exported {
				continue
			}
			fields = append(fields, f.Name)
		}
		if len(fields) == 0 {
			continue
		}
		specs = append(specs, StructSpec{Name: st.Name, Fields: fields})
	}
	return specs
}

// Generate renders a gofmt-formatted registration file for the named
// package.
func (g *Generator) Generate(pkgName string, specs []StructSpec) ([]byte, error) {
	if pkgName == "" {
		return nil, fmt.Errorf("package name cannot be empty")
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no structs to register")
	}

	g.reset()

	g.writeLine(Header)
	g.writeLine("")
	g.writeLine("package %s", pkgName)
	g.writeLine("")
	g.writeLine("import (")
	g.indent++
	g.writeLine("%q", g.modulePath)
	g.indent--
	g.writeLine(")")
	g.writeLine("")

	g.writeLine("var (")
	g.indent++
	for _, spec := range specs {
		g.writeLine("_ = mirror.MustRegister[%s](%s)", spec.Name, quoteFields(spec.Fields))
	}
	g.indent--
	g.writeLine(")")

	formatted, err := format.Source(g.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return formatted, nil
}

func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
}

func (g *Generator) writeLine(format string, args ...any) {
	if format != "" {
		g.buf.WriteString(strings.Repeat("\t", g.indent))
		fmt.Fprintf(g.buf, format, args...)
	}
	g.buf.WriteByte('\n')
}

func quoteFields(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = fmt.Sprintf("%q", f)
	}
	return strings.Join(quoted, ", ")
}

func exportedName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
