package core_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// parseCoreImports returns the imports of every non-test file in pkg/core.
func parseCoreImports(t *testing.T) map[string][]*ast.ImportSpec {
	t.Helper()
	fset := token.NewFileSet()
	coreDir := "."

	entries, err := os.ReadDir(coreDir)
	if err != nil {
		t.Fatalf("Failed to read core directory: %v", err)
	}

	imports := make(map[string][]*ast.ImportSpec)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		if strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		path := filepath.Join(coreDir, entry.Name())
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			continue
		}
		imports[entry.Name()] = f.Imports
	}
	return imports
}

// TestCoreImportsOnlyStdlib verifies pkg/core only imports the standard library.
// The Golden Rule: every other package depends on core, not the reverse.
func TestCoreImportsOnlyStdlib(t *testing.T) {
	for file, imports := range parseCoreImports(t) {
		for _, imp := range imports {
			importPath := strings.Trim(imp.Path.Value, `"`)

			// stdlib paths have no dot in the first element
			if first, _, _ := strings.Cut(importPath, "/"); !strings.Contains(first, ".") {
				continue
			}
			t.Errorf("%s imports forbidden package: %s", file, importPath)
		}
	}
}

// TestCoreDoesNotImportInternal verifies pkg/core doesn't import any internal packages.
func TestCoreDoesNotImportInternal(t *testing.T) {
	for file, imports := range parseCoreImports(t) {
		for _, imp := range imports {
			importPath := strings.Trim(imp.Path.Value, `"`)

			if strings.Contains(importPath, "/internal/") {
				t.Errorf("%s imports internal package: %s (core must not import internal packages)", file, importPath)
			}
		}
	}
}

// TestCoreDoesNotImportNet verifies pkg/core stays free of transport code.
// Decoding works on io.Reader; fetching belongs to the provider and connector.
func TestCoreDoesNotImportNet(t *testing.T) {
	for file, imports := range parseCoreImports(t) {
		for _, imp := range imports {
			importPath := strings.Trim(imp.Path.Value, `"`)

			if importPath == "net/http" || strings.HasPrefix(importPath, "net/http/") {
				t.Errorf("%s imports %s (core decodes payloads, it does not fetch them)", file, importPath)
			}
		}
	}
}
