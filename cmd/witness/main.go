// Command witness is the registry compiler and code generator.
//
// Usage:
//
//	witness generate [options] <schema-file>...
//	witness validate <schema-file>...
//	witness format [options] <schema-file>...
//	witness registry [options] <go-package>...
//	witness version
//
// Generate Command:
//
//	Generate Go type declarations from schema files.
//
//	Options:
//	  -out string       Output directory (default ".")
//	  -package string   Override package name
//	  -prefix string    Add prefix to all type names
//	  -suffix string    Add suffix to all type names
//	  -I string         Add import search path (can be repeated)
//
// Validate Command:
//
//	Validate schema files without generating code.
//
// Format Command:
//
//	Format schema files, printing the result to stdout, or rewriting
//	each file in place with -w.
//
// Registry Command:
//
//	Extract a registry from Go source code by static analysis.
//
//	Options:
//	  -out string       Output file (default: stdout)
//	  -json             Write JSON instead of YAML
//	  -private          Include unexported types
//	  -include string   Type name pattern to include (glob, can be repeated)
//	  -exclude string   Type name pattern to exclude (glob, can be repeated)
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blockberries/witness/pkg/codegen"
	"github.com/blockberries/witness/pkg/extract"
	"github.com/blockberries/witness/pkg/schema"
)

// Version information, set by ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// VersionInfo returns a formatted version string.
func VersionInfo() string {
	return Version + " (" + GitCommit + ", " + BuildDate + ")"
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate", "gen", "g":
		cmdGenerate(os.Args[2:])
	case "validate", "val", "v":
		cmdValidate(os.Args[2:])
	case "format", "fmt", "f":
		cmdFormat(os.Args[2:])
	case "registry", "extract", "r":
		cmdRegistry(os.Args[2:])
	case "version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`witness registry compiler

Usage:
  witness <command> [options] <files>...

Commands:
  generate    Generate Go types from schema files
  validate    Validate schema files
  format      Format schema files
  registry    Extract a registry from Go source code
  version     Print version information
  help        Print this help message

Run 'witness <command> -h' for command-specific help.`)
}

// stringSliceFlag allows a flag to be repeated.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)

	outDir := fs.String("out", ".", "Output directory")
	pkg := fs.String("package", "", "Override package name")
	prefix := fs.String("prefix", "", "Add prefix to all type names")
	suffix := fs.String("suffix", "", "Add suffix to all type names")
	var searchPaths stringSliceFlag
	fs.Var(&searchPaths, "I", "Add import search path (can be repeated)")

	fs.Usage = func() {
		fmt.Println(`Usage: witness generate [options] <schema-file>...

Generate Go type declarations from schema files.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	gen, ok := codegen.Get(codegen.LanguageGo)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: no Go generator registered")
		os.Exit(1)
	}

	opts := codegen.DefaultOptions()
	if *pkg != "" {
		opts.Package = *pkg
	}
	opts.TypePrefix = *prefix
	opts.TypeSuffix = *suffix

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	loader := schema.NewLoader(searchPaths...)
	hasErrors := false

	for _, inputFile := range fs.Args() {
		s, errs := loader.LoadFile(inputFile)
		if len(errs) > 0 {
			hasErrors = true
			for _, err := range errs {
				fmt.Fprintln(os.Stderr, err)
			}
			continue
		}

		reg, err := s.ToRegistry()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building registry for %s: %v\n", inputFile, err)
			hasErrors = true
			continue
		}

		baseName := filepath.Base(inputFile)
		baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
		outputFile := filepath.Join(*outDir, baseName+gen.FileExtension())

		f, err := os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			hasErrors = true
			continue
		}

		if err := gen.Generate(f, reg, opts); err != nil {
			f.Close()
			os.Remove(outputFile)
			fmt.Fprintf(os.Stderr, "Error generating code: %v\n", err)
			hasErrors = true
			continue
		}

		f.Close()
		fmt.Printf("Generated: %s\n", outputFile)
	}

	if hasErrors {
		os.Exit(1)
	}
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var searchPaths stringSliceFlag
	fs.Var(&searchPaths, "I", "Add import search path (can be repeated)")

	fs.Usage = func() {
		fmt.Println(`Usage: witness validate [options] <schema-file>...

Validate schema files without generating code.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	loader := schema.NewLoader(searchPaths...)
	hasErrors := false
	hasWarnings := false

	for _, inputFile := range fs.Args() {
		_, errs := loader.LoadFile(inputFile)
		if len(errs) > 0 {
			for _, err := range errs {
				fmt.Fprintln(os.Stderr, err)
				if valErr, ok := err.(schema.ValidationError); ok && valErr.Severity == schema.SeverityWarning {
					hasWarnings = true
				} else {
					hasErrors = true
				}
			}
		} else {
			fmt.Printf("Valid: %s\n", inputFile)
		}
	}

	if hasErrors {
		os.Exit(1)
	}
	if hasWarnings {
		os.Exit(2)
	}
}

func cmdFormat(args []string) {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	write := fs.Bool("w", false, "Write result to (source) file instead of stdout")

	fs.Usage = func() {
		fmt.Println(`Usage: witness format [options] <schema-file>...

Format schema files.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	hasErrors := false
	for _, inputFile := range fs.Args() {
		content, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", inputFile, err)
			hasErrors = true
			continue
		}

		s, parseErrors := schema.ParseFile(inputFile, string(content))
		if len(parseErrors) > 0 {
			for _, e := range parseErrors {
				fmt.Fprintln(os.Stderr, e)
			}
			hasErrors = true
			continue
		}

		formatted := schema.FormatSchema(s)

		if *write {
			if err := os.WriteFile(inputFile, []byte(formatted), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", inputFile, err)
				hasErrors = true
				continue
			}
			fmt.Printf("Formatted: %s\n", inputFile)
		} else {
			fmt.Print(formatted)
		}
	}

	if hasErrors {
		os.Exit(1)
	}
}

func cmdRegistry(args []string) {
	fs := flag.NewFlagSet("registry", flag.ExitOnError)
	outFile := fs.String("out", "", "Output file (default: stdout)")
	asJSON := fs.Bool("json", false, "Write JSON instead of YAML")
	private := fs.Bool("private", false, "Include unexported types")
	var includePatterns stringSliceFlag
	fs.Var(&includePatterns, "include", "Type name pattern to include (glob, can be repeated)")
	var excludePatterns stringSliceFlag
	fs.Var(&excludePatterns, "exclude", "Type name pattern to exclude (glob, can be repeated)")

	fs.Usage = func() {
		fmt.Println(`Usage: witness registry [options] <go-package>...

Extract a registry from Go source code by static analysis.

Examples:
  witness registry ./...
  witness registry -out registry.yaml ./pkg/models
  witness registry -include "User*" -exclude "*Internal" ./...

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no Go packages specified")
		fs.Usage()
		os.Exit(1)
	}

	outputFormat := extract.FormatYAML
	if *asJSON {
		outputFormat = extract.FormatJSON
	}

	cfg := &extract.ExtractorConfig{
		Config: &extract.Config{
			IncludePrivate:   *private,
			IncludePatterns:  includePatterns,
			ExcludePatterns:  excludePatterns,
			DetectInterfaces: true,
		},
		Patterns:   fs.Args(),
		OutputPath: *outFile,
		Format:     outputFormat,
	}

	extractor := extract.NewExtractor()
	if err := extractor.ExtractAndWrite(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *outFile != "" {
		fmt.Printf("Extracted: %s\n", *outFile)
	}
}

func cmdVersion() {
	fmt.Printf("witness version %s\n", VersionInfo())
}
