package extract

import (
	"go/ast"
	"go/types"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Config configures the type collector.
type Config struct {
	IncludePrivate         bool     // Include unexported types
	IncludePatterns        []string // Type name patterns to include (glob)
	ExcludePatterns        []string // Type name patterns to exclude (glob)
	DetectInterfaces       bool     // Auto-detect interface implementations
	IncludeEmptyInterfaces bool     // Include empty interfaces (marker interfaces for polymorphic grouping)
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		IncludePrivate:   false,
		DetectInterfaces: true,
	}
}

// TypeCollector collects type information from Go packages.
type TypeCollector struct {
	packages   []*packages.Package
	config     *Config
	types      map[string]*TypeInfo
	interfaces map[string]*InterfaceInfo
	enums      map[string]*EnumInfo
}

// NewTypeCollector creates a new type collector.
func NewTypeCollector(pkgs []*packages.Package, cfg *Config) *TypeCollector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &TypeCollector{
		packages:   pkgs,
		config:     cfg,
		types:      make(map[string]*TypeInfo),
		interfaces: make(map[string]*InterfaceInfo),
		enums:      make(map[string]*EnumInfo),
	}
}

// Collect analyzes all packages and collects type information.
func (c *TypeCollector) Collect() error {
	for _, pkg := range c.packages {
		if err := c.collectPackage(pkg); err != nil {
			return err
		}
	}

	if c.config.DetectInterfaces {
		c.detectImplementations()
	}

	return nil
}

// Types returns collected struct types, keyed by "pkgPath.Name".
func (c *TypeCollector) Types() map[string]*TypeInfo {
	return c.types
}

// Interfaces returns collected interfaces, keyed by "pkgPath.Name".
func (c *TypeCollector) Interfaces() map[string]*InterfaceInfo {
	return c.interfaces
}

// Enums returns collected named-integer enum types, keyed by "pkgPath.Name".
func (c *TypeCollector) Enums() map[string]*EnumInfo {
	return c.enums
}

func (c *TypeCollector) collectPackage(pkg *packages.Package) error {
	typeComments := make(map[string]string)
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			if genDecl, ok := decl.(*ast.GenDecl); ok {
				for _, spec := range genDecl.Specs {
					if typeSpec, ok := spec.(*ast.TypeSpec); ok {
						doc := extractDoc(genDecl.Doc)
						if doc == "" {
							doc = extractDoc(typeSpec.Doc)
						}
						typeComments[typeSpec.Name.Name] = strings.TrimSpace(doc)
					}
				}
			}
		}
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if obj == nil {
			continue
		}

		if !c.config.IncludePrivate && !obj.Exported() {
			continue
		}

		if !c.matchesPatterns(name) {
			continue
		}

		if typeName, ok := obj.(*types.TypeName); ok {
			c.collectType(typeName, pkg.PkgPath, typeComments[name])
		}
	}

	c.collectEnumValues(pkg)

	return nil
}

func (c *TypeCollector) collectType(typeName *types.TypeName, pkgPath string, doc string) {
	underlying := typeName.Type().Underlying()
	qualifiedName := pkgPath + "." + typeName.Name()

	switch t := underlying.(type) {
	case *types.Struct:
		info := &TypeInfo{
			Name:       typeName.Name(),
			Package:    typeName.Pkg().Name(),
			PkgPath:    pkgPath,
			Doc:        doc,
			GoType:     typeName.Type(),
			IsExported: typeName.Exported(),
		}

		for i := 0; i < t.NumFields(); i++ {
			field := t.Field(i)
			if !c.config.IncludePrivate && !field.Exported() {
				continue
			}

			info.Fields = append(info.Fields, &FieldInfo{
				Name:     field.Name(),
				GoType:   field.Type(),
				TypeName: c.typeToString(field.Type()),
				Optional: isPointer(field.Type()),
				Repeated: isSliceOrArray(field.Type()),
			})
		}

		c.types[qualifiedName] = info

	case *types.Interface:
		if t.NumMethods() > 0 || c.config.IncludeEmptyInterfaces {
			info := &InterfaceInfo{
				Name:    typeName.Name(),
				Package: typeName.Pkg().Name(),
				PkgPath: pkgPath,
				Doc:     doc,
			}

			for i := 0; i < t.NumMethods(); i++ {
				info.Methods = append(info.Methods, t.Method(i).Name())
			}

			c.interfaces[qualifiedName] = info
		}

	case *types.Basic:
		if t.Info()&types.IsInteger != 0 {
			c.enums[qualifiedName] = &EnumInfo{
				Name:    typeName.Name(),
				Package: typeName.Pkg().Name(),
				PkgPath: pkgPath,
				Doc:     doc,
				GoType:  typeName.Type(),
			}
		}
	}
}

func (c *TypeCollector) collectEnumValues(pkg *packages.Package) {
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if obj == nil {
			continue
		}

		if cnst, ok := obj.(*types.Const); ok {
			if named, ok := cnst.Type().(*types.Named); ok {
				if named.Obj().Pkg() == nil {
					continue
				}
				qualifiedName := named.Obj().Pkg().Path() + "." + named.Obj().Name()
				if enumInfo, exists := c.enums[qualifiedName]; exists {
					if val, ok := constantToInt64(cnst); ok {
						enumInfo.Values = append(enumInfo.Values, &EnumValueInfo{
							Name:   cnst.Name(),
							Number: val,
						})
					}
				}
			}
		}
	}
}

func constantToInt64(cnst *types.Const) (int64, bool) {
	if cnst.Val() == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(cnst.Val().String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// detectImplementations statically discovers, for every collected
// interface, which collected struct types implement it via go/types —
// the same go/types.Implements check the reflect-based tracer's
// classifyContainer/classifyVariant convention mirrors at runtime, applied
// here to source instead of to live values.
func (c *TypeCollector) detectImplementations() {
	for _, iface := range c.interfaces {
		ifaceType := c.findInterfaceType(iface.PkgPath, iface.Name)
		if ifaceType == nil {
			continue
		}

		for _, typ := range c.types {
			if c.implements(typ.GoType, ifaceType) {
				iface.Implementations = append(iface.Implementations, typ)
				typ.Implements = append(typ.Implements, iface.PkgPath+"."+iface.Name)
			}
		}
	}
}

func (c *TypeCollector) findInterfaceType(pkgPath, name string) *types.Interface {
	for _, pkg := range c.packages {
		if pkg.PkgPath == pkgPath {
			obj := pkg.Types.Scope().Lookup(name)
			if obj != nil {
				if named, ok := obj.Type().(*types.Named); ok {
					if iface, ok := named.Underlying().(*types.Interface); ok {
						return iface
					}
				}
			}
		}
	}
	return nil
}

// implements checks both T and *T against iface, since Go methods are
// commonly defined on pointer receivers.
func (c *TypeCollector) implements(typ types.Type, iface *types.Interface) bool {
	if types.Implements(typ, iface) {
		return true
	}
	if ptr, ok := typ.(*types.Pointer); ok {
		return types.Implements(ptr.Elem(), iface)
	}
	return types.Implements(types.NewPointer(typ), iface)
}

func (c *TypeCollector) matchesPatterns(name string) bool {
	if len(c.config.IncludePatterns) == 0 {
		for _, pattern := range c.config.ExcludePatterns {
			if matchGlob(pattern, name) {
				return false
			}
		}
		return true
	}

	matched := false
	for _, pattern := range c.config.IncludePatterns {
		if matchGlob(pattern, name) {
			matched = true
			break
		}
	}

	if !matched {
		return false
	}

	for _, pattern := range c.config.ExcludePatterns {
		if matchGlob(pattern, name) {
			return false
		}
	}

	return true
}

func matchGlob(pattern, name string) bool {
	regexPattern := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, `.*`) + "$"
	matched, _ := regexp.MatchString(regexPattern, name)
	return matched
}

func (c *TypeCollector) typeToString(t types.Type) string {
	return types.TypeString(t, func(pkg *types.Package) string {
		return pkg.Name()
	})
}

func isPointer(t types.Type) bool {
	_, ok := t.(*types.Pointer)
	return ok
}

func isSliceOrArray(t types.Type) bool {
	switch t.(type) {
	case *types.Slice, *types.Array:
		return true
	}
	return false
}
