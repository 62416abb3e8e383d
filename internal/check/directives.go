package check

import (
	"fmt"
	"strconv"

	"prog8core/internal/ast"
	"prog8core/internal/diag"
)

var validDirectiveArgs = map[string][]string{
	"output":   {"raw", "prg"},
	"launcher": {"basic", "none"},
	"zeropage": {"basicsafe", "floatsafe", "kernalsafe", "full"},
}

// checkDirective enforces §4.G "Directives".
func (c *Checker) checkDirective(d *ast.Directive) {
	switch d.Name {
	case "output", "launcher", "zeropage":
		c.checkEnumDirective(d)
	case "zpreserved":
		c.checkZpReserved(d)
	case "import":
		c.checkImport(d)
	case "asminclude", "asmbinary":
		c.checkAsmFileArg(d)
	case "option":
		// %option args (e.g. enable_floats) are an open set; no enum check.
	}
}

func (c *Checker) checkEnumDirective(d *ast.Directive) {
	allowed := validDirectiveArgs[d.Name]
	if len(d.Args) != 1 {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrDirectiveArgument,
			fmt.Sprintf("%%%s takes exactly one argument", d.Name), d.Pos()).Build())
		return
	}
	for _, a := range allowed {
		if d.Args[0] == a {
			return
		}
	}
	c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrDirectiveArgument,
		fmt.Sprintf("%%%s argument %q must be one of %v", d.Name, d.Args[0], allowed), d.Pos()).Build())
}

func (c *Checker) checkZpReserved(d *ast.Directive) {
	if len(d.Args) != 2 {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrDirectiveArgument,
			"%zpreserved requires two integer addresses", d.Pos()).Build())
		return
	}
	for _, a := range d.Args {
		if _, err := strconv.Atoi(a); err != nil {
			c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrDirectiveArgument,
				fmt.Sprintf("%%zpreserved argument %q is not an integer address", a), d.Pos()).Build())
		}
	}
}

func (c *Checker) checkImport(d *ast.Directive) {
	if len(d.Args) != 1 {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrDirectiveArgument,
			"%import takes exactly one module name", d.Pos()).Build())
		return
	}
	if d.Args[0] == c.mod.Name {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrDirectiveArgument,
			"a module cannot import itself", d.Pos()).Build())
	}
}

// checkAsmFileArg enforces file-existence verification for %asminclude and
// %asmbinary. The checker's diagnostic domain does not own filesystem
// access; FileExists is the caller-supplied existence predicate so this
// package stays testable without touching disk (§4.G, §6 "relative to the
// importing module, or library: prefix").
func (c *Checker) checkAsmFileArg(d *ast.Directive) {
	if len(d.Args) == 0 {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrDirectiveArgument,
			fmt.Sprintf("%%%s requires a file argument", d.Name), d.Pos()).Build())
		return
	}
	if c.FileExists == nil {
		return
	}
	path := d.Args[0]
	if len(path) > 8 && path[:8] == "library:" {
		return
	}
	if !c.FileExists(path) {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrAsmFileMissing,
			fmt.Sprintf("%%%s file %q not found", d.Name, path), d.Pos()).Build())
	}
}
