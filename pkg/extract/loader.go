// Package extract discovers format.ContainerFormat shapes from Go source
// by static analysis, rather than by running the reflect-driven tracer
// against live values. It exists for the same reason a schema compiler
// exists alongside a runtime ORM: a registry written by this package can
// be reviewed, diffed, and checked into version control before any code
// that builds the types it describes ever runs.
package extract

import (
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// PackageLoader loads Go packages for analysis.
type PackageLoader struct {
	config *packages.Config
}

// NewPackageLoader creates a new package loader.
func NewPackageLoader() *PackageLoader {
	return &PackageLoader{
		config: &packages.Config{
			Mode: packages.NeedName |
				packages.NeedTypes |
				packages.NeedTypesInfo |
				packages.NeedSyntax |
				packages.NeedImports |
				packages.NeedDeps,
		},
	}
}

// Load loads packages matching the given patterns.
func (l *PackageLoader) Load(patterns []string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(l.config, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			errs = append(errs, err)
		}
	})

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs[0])
	}

	return pkgs, nil
}

// TypeInfo describes one exported struct type found in a loaded package.
type TypeInfo struct {
	Name       string
	Package    string
	PkgPath    string
	Doc        string
	Fields     []*FieldInfo
	GoType     types.Type
	Implements []string // qualified names of interfaces this type satisfies
	IsExported bool
}

// FieldInfo describes one field of a collected struct, in declaration
// order — the order that matters for the wire formats built on top of
// this package's output.
type FieldInfo struct {
	Name     string
	GoType   types.Type
	TypeName string
	Doc      string
	Optional bool // a pointer field; traced as Option
	Repeated bool // a slice or array field; traced as Seq/TupleArray
}

// InterfaceInfo describes an interface type, a candidate for becoming an
// Enum container once its implementations are discovered.
type InterfaceInfo struct {
	Name            string
	Package         string
	PkgPath         string
	Doc             string
	Methods         []string
	Implementations []*TypeInfo
}

// EnumInfo describes a named integer type together with the constants
// declared against it, a candidate for an enum whose variants carry no
// payload.
type EnumInfo struct {
	Name    string
	Package string
	PkgPath string
	Doc     string
	Values  []*EnumValueInfo
	GoType  types.Type
}

// EnumValueInfo is one constant value of an EnumInfo.
type EnumValueInfo struct {
	Name   string
	Number int64
	Doc    string
}

// extractDoc extracts documentation from an AST node.
func extractDoc(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return cg.Text()
}
