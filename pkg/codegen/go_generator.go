package codegen

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/blockberries/witness/pkg/format"
)

// GoGenerator renders a registry as plain Go type declarations: one struct
// per struct-shaped container, and one marker interface plus one struct per
// variant for each enum. It emits no (de)serialization code of its own —
// pkg/bcs and pkg/bincode already walk the registry directly via reflection,
// so the generated types exist purely to give callers something concrete to
// declare fields of.
type GoGenerator struct{}

// NewGoGenerator creates a new Go code generator.
func NewGoGenerator() *GoGenerator {
	return &GoGenerator{}
}

func (g *GoGenerator) Language() Language { return LanguageGo }

func (g *GoGenerator) FileExtension() string { return ".go" }

func (g *GoGenerator) Generate(w io.Writer, reg *format.Registry, opts Options) error {
	ctx := &goContext{reg: reg, opts: opts}

	var containers []goContainer
	for _, name := range reg.SortedNames() {
		cf, _ := reg.Get(name)
		c, err := ctx.buildContainer(name, cf)
		if err != nil {
			return err
		}
		containers = append(containers, c)
	}

	tmpl, err := template.New("go").Parse(goTemplate)
	if err != nil {
		return fmt.Errorf("codegen: parse template: %w", err)
	}

	return tmpl.Execute(w, struct {
		Package    string
		Containers []goContainer
	}{
		Package:    opts.Package,
		Containers: containers,
	})
}

type goField struct {
	Name string
	Type string
}

type goVariant struct {
	StructName string
	Fields     []goField
}

type goContainer struct {
	Name      string
	Comment   string
	IsEnum    bool
	Fields    []goField // struct-shaped containers
	Variants  []goVariant
}

type goContext struct {
	reg  *format.Registry
	opts Options
}

func (c *goContext) typeName(name string) string {
	return c.opts.TypePrefix + ToPascalCase(name) + c.opts.TypeSuffix
}

func (c *goContext) buildContainer(name string, cf format.ContainerFormat) (goContainer, error) {
	goName := c.typeName(name)
	out := goContainer{Name: goName}
	if c.opts.GenerateComments {
		out.Comment = GoComment(fmt.Sprintf("%s is generated from the %s container.", goName, cf.String()))
	}

	switch shape := cf.(type) {
	case format.UnitStruct:
		// no fields

	case format.NewTypeStruct:
		out.Fields = []goField{{Name: "Inner", Type: c.goType(shape.Inner)}}

	case format.TupleStruct:
		out.Fields = c.tupleFields(shape.Fields)

	case format.Struct:
		for _, f := range shape.Fields {
			out.Fields = append(out.Fields, goField{Name: ToPascalCase(f.Name), Type: c.goType(f.Format)})
		}

	case *format.Enum:
		out.IsEnum = true
		for _, idx := range shape.SortedIndices() {
			ev := shape.Variants[idx]
			out.Variants = append(out.Variants, c.buildVariant(goName, ev))
		}

	default:
		return goContainer{}, &GeneratorError{Container: name, Message: fmt.Sprintf("unknown container shape %T", cf)}
	}

	return out, nil
}

func (c *goContext) buildVariant(enumGoName string, ev format.EnumVariant) goVariant {
	v := goVariant{StructName: enumGoName + ToPascalCase(ev.Name)}
	switch shape := ev.Format.(type) {
	case format.VariantUnit:
		// no fields
	case format.VariantNewType:
		v.Fields = []goField{{Name: "Inner", Type: c.goType(shape.Inner)}}
	case format.VariantTuple:
		v.Fields = c.tupleFields(shape.Fields)
	case format.VariantStruct:
		for _, f := range shape.Fields {
			v.Fields = append(v.Fields, goField{Name: ToPascalCase(f.Name), Type: c.goType(f.Format)})
		}
	}
	return v
}

func (c *goContext) tupleFields(items []format.Format) []goField {
	fields := make([]goField, len(items))
	for i, f := range items {
		fields[i] = goField{Name: fmt.Sprintf("F%d", i), Type: c.goType(f)}
	}
	return fields
}

func (c *goContext) goType(f format.Format) string {
	switch t := f.(type) {
	case format.Primitive:
		return c.goPrimitiveType(t.Kind)
	case format.Option:
		return "*" + c.goType(t.Inner)
	case format.Seq:
		return "[]" + c.goType(t.Element)
	case format.Map:
		return fmt.Sprintf("map[%s]%s", c.goType(t.Key), c.goType(t.Value))
	case format.Tuple:
		fields := c.tupleFields(t.Items)
		return "struct{ " + joinFields(fields) + " }"
	case format.TupleArray:
		return fmt.Sprintf("[%d]%s", t.Size, c.goType(t.Content))
	case format.TypeName:
		return c.typeName(t.Name)
	default:
		return "any"
	}
}

func joinFields(fields []goField) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + " " + f.Type
	}
	return strings.Join(parts, "; ")
}

func (c *goContext) goPrimitiveType(kind string) string {
	switch kind {
	case "unit":
		return "struct{}"
	case "bool":
		return "bool"
	case "i8":
		return "int8"
	case "i16":
		return "int16"
	case "i32":
		return "int32"
	case "i64":
		return "int64"
	case "i128":
		// Go has no native 128-bit integer; the generated field holds the
		// two's-complement representation as 16 raw bytes, little-endian,
		// matching what pkg/bcs and pkg/bincode read and write.
		return "[16]byte"
	case "u8":
		return "uint8"
	case "u16":
		return "uint16"
	case "u32":
		return "uint32"
	case "u64":
		return "uint64"
	case "u128":
		return "[16]byte"
	case "f32":
		return "float32"
	case "f64":
		return "float64"
	case "char":
		return "rune"
	case "str":
		return "string"
	case "bytes":
		return "[]byte"
	default:
		return "any"
	}
}

func init() {
	Register(NewGoGenerator())
}

const goTemplate = `// Code generated by witness. DO NOT EDIT.

package {{.Package}}
{{range $c := .Containers}}
{{if $c.Comment}}{{$c.Comment}}
{{end -}}
{{if $c.IsEnum}}type {{$c.Name}} interface {
	is{{$c.Name}}()
}
{{range $c.Variants}}
type {{.StructName}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}
{{- end}}
}

func (*{{.StructName}}) is{{$c.Name}}() {}
{{end}}{{else}}type {{$c.Name}} struct {
{{- range $c.Fields}}
	{{.Name}} {{.Type}}
{{- end}}
}
{{end}}
{{end}}`
