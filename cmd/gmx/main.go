// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

// Command gmx compiles .gmx markup templates. The default mode writes a
// generated Go file next to each template; --html renders static
// templates to markup; --check only reports diagnostics.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/tliron/commonlog"
	"golang.org/x/mod/modfile"

	"github.com/gomarkup/gmx"
	"github.com/gomarkup/gmx/codegen"
	"github.com/gomarkup/gmx/encoder"
	"github.com/gomarkup/gmx/parser"
	"github.com/gomarkup/gmx/report"
	"github.com/gomarkup/gmx/token"

	_ "github.com/tliron/commonlog/simple"
)

var (
	check       = kingpin.Flag("check", "Only report diagnostics, generate nothing").Bool()
	html        = kingpin.Flag("html", "Render static templates to .html instead of generating Go").Bool()
	outDir      = kingpin.Flag("out-dir", "Folder to put generated files in (defaults to next to each template)").Short('o').String()
	packageName = kingpin.Flag("pkg", "Package name for generated files (defaults to the module name)").String()
	options     = kingpin.Flag("opt", "Parser option, e.g. --opt trim-text=true").StringMap()
	verbose     = kingpin.Flag("verbose", "Increase logging verbosity").Short('v').Counter()
	files       = kingpin.Arg("files", "Templates to compile").Required().ExistingFiles()

	log = commonlog.GetLogger("gmx")
)

func main() {
	kingpin.Parse()
	commonlog.Configure(*verbose, nil)

	cfg, err := parser.ParseOptions(*options)
	if err != nil {
		kingpin.Fatalf("%s", err)
	}

	pkg := *packageName
	if pkg == "" {
		pkg = modulePackageName()
	}

	renderer := report.NewRenderer()
	failed := false

	for _, file := range *files {
		if !processFile(file, cfg, pkg, renderer) {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// processFile compiles one template and reports whether it passed
// without error-severity diagnostics.
func processFile(file string, cfg parser.Config, pkg string, renderer *report.Renderer) bool {
	text, err := os.ReadFile(file)
	if err != nil {
		log.Errorf("%s", err)

		return false
	}

	res, err := gmx.ParseString(file, string(text), cfg)
	if err != nil {
		// a fatal lex error carries its own source rendering
		var posErr *token.PosError
		if errors.As(err, &posErr) {
			fmt.Fprintln(os.Stderr, posErr.Explain())
		} else {
			log.Errorf("%s: %s", file, err)
		}

		return false
	}

	renderer.AddSource(file, string(text))

	if len(res.Diagnostics) > 0 {
		fmt.Fprint(os.Stderr, renderer.RenderAll(res.Diagnostics))
		fmt.Fprintf(os.Stderr, "%s: %s\n", file, report.Summary(res.Diagnostics))
	}

	if res.HasErrors() {
		return false
	}

	if *check {
		return true
	}

	if *html {
		return renderHTML(file, res)
	}

	return generateGo(file, res, pkg)
}

func renderHTML(file string, res *gmx.Result) bool {
	markup, err := encoder.RenderString(res.Nodes, encoder.Options{})
	if err != nil {
		log.Errorf("%s", err)

		return false
	}

	out := outputPath(file, replaceExt(file, ".html"))
	if err := os.WriteFile(out, []byte(markup), 0o644); err != nil {
		log.Errorf("%s", err)

		return false
	}

	log.Infof("rendered %s", out)

	return true
}

func generateGo(file string, res *gmx.Result, pkg string) bool {
	src, err := codegen.File(res.Nodes, codegen.Options{
		Package:  pkg,
		FuncName: codegen.FuncNameFor(file),
	})
	if err != nil {
		log.Errorf("%s", err)

		return false
	}

	out := outputPath(file, codegen.Filename(file))
	if err := os.WriteFile(out, src, 0o644); err != nil {
		log.Errorf("%s", err)

		return false
	}

	log.Infof("generated %s", out)

	return true
}

// outputPath places the generated sibling into --out-dir when set,
// keeping only the base name.
func outputPath(_ string, generated string) string {
	if *outDir == "" {
		return generated
	}

	return filepath.Join(*outDir, filepath.Base(generated))
}

func replaceExt(file, ext string) string {
	return file[:len(file)-len(filepath.Ext(file))] + ext
}

// modulePackageName derives a default package name from the enclosing
// go.mod, falling back to "main" outside a module.
func modulePackageName() string {
	root, err := findModuleRoot()
	if err != nil {
		return "main"
	}

	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "main"
	}

	mod, err := modfile.Parse("go.mod", data, nil)
	if err != nil || mod.Module == nil {
		return "main"
	}

	return filepath.Base(mod.Module.Mod.Path)
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find go.mod above %s", dir)
		}

		dir = parent
	}
}
