// Command lemma is a small smoke-test binary for the fiber/VM library: it
// is not the process/mailbox host spec.md excludes from scope, just
// enough of a shell to run, compile, disassemble, and interactively
// drive lemma programs. Subcommand shape mirrors the teacher's
// cmd/smog/main.go (version/help/repl/run/compile/disassemble) rebuilt
// on urfave/cli/v3 instead of a hand-rolled os.Args switch, per the
// domain-stack wiring in DESIGN.md.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kristofer/lemma/compiler"
	"github.com/kristofer/lemma/config"
	"github.com/kristofer/lemma/fiber"
	"github.com/kristofer/lemma/parser"
	"github.com/kristofer/lemma/value"
)

const version = "0.1.0"

// limitsFlag is shared by the root command and every subcommand that
// constructs a Fiber, pointing config.Load at a YAML Limits file
// instead of the built-in config.Defaults().
var limitsFlag = &cli.StringFlag{
	Name:  "limits",
	Usage: "path to a YAML file overriding the default MaxCallDepth/MaxOperandStack limits",
}

// fiberOpts loads the --limits file, if given, into a fiber.WithLimits
// option; with no flag it returns nil, leaving Fiber's own
// config.Defaults() in effect.
func fiberOpts(cmd *cli.Command) ([]fiber.Option[extern, locals], error) {
	path := cmd.String("limits")
	if path == "" {
		return nil, nil
	}
	limits, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return []fiber.Option[extern, locals]{fiber.WithLimits[extern, locals](limits)}, nil
}

func main() {
	app := &cli.Command{
		Name:  "lemma",
		Usage: "a small embeddable Lisp-family fiber VM",
		Flags: []cli.Flag{limitsFlag},
		Commands: []*cli.Command{
			versionCommand,
			replCommand,
			runCommand,
			compileCommand,
			disassembleCommand,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := fiberOpts(cmd)
			if err != nil {
				return err
			}
			if cmd.Args().Len() > 0 {
				return runSourceFile(cmd.Args().Get(0), opts...)
			}
			return runREPL(opts...)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "lemma: %v\n", err)
		os.Exit(1)
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "print the lemma version",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		fmt.Printf("lemma version %s\n", version)
		return nil
	},
}

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "start an interactive REPL",
	Flags: []cli.Flag{limitsFlag},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		opts, err := fiberOpts(cmd)
		if err != nil {
			return err
		}
		return runREPL(opts...)
	},
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "run a .lemma source file or .lb bytecode file",
	ArgsUsage: "<file>",
	Flags:     []cli.Flag{limitsFlag},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() < 1 {
			return fmt.Errorf("run: no file specified")
		}
		opts, err := fiberOpts(cmd)
		if err != nil {
			return err
		}
		return runSourceFile(cmd.Args().Get(0), opts...)
	},
}

var compileCommand = &cli.Command{
	Name:      "compile",
	Usage:     "compile a .lemma source file to .lb bytecode",
	ArgsUsage: "<in> [out]",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() < 1 {
			return fmt.Errorf("compile: no file specified")
		}
		in := cmd.Args().Get(0)
		out := in + ".lb"
		if cmd.Args().Len() >= 2 {
			out = cmd.Args().Get(1)
		}
		return compileFile(in, out)
	},
}

var disassembleCommand = &cli.Command{
	Name:      "disassemble",
	Aliases:   []string{"disasm"},
	Usage:     "print a human-readable disassembly of a .lb bytecode file",
	ArgsUsage: "<file.lb>",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() < 1 {
			return fmt.Errorf("disassemble: no file specified")
		}
		return disassembleFile(cmd.Args().Get(0))
	},
}

// runSourceFile reads a .lemma source file (or a .lb bytecode file, by
// extension), binds the demo natives, and drives it to completion,
// printing any yielded values along the way rather than as an error —
// this binary has no host that would otherwise answer them.
func runSourceFile(filename string, opts ...fiber.Option[extern, locals]) error {
	var fib *fiber.Fiber[extern, locals]
	if isBytecodeFile(filename) {
		code, err := loadBytecodeFile(filename)
		if err != nil {
			return err
		}
		fib = fiber.FiberFromBytecode[extern, locals](code, locals{}, opts...)
	} else {
		src, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filename, err)
		}
		f, err := fiber.FiberFromExpr[extern, locals](string(src), locals{}, opts...)
		if err != nil {
			return fmt.Errorf("compiling %s: %w", filename, err)
		}
		fib = f
	}
	bindDemoNatives(fib)

	state, err := fib.Resume()
	for {
		if err != nil {
			return fmt.Errorf("runtime error: %w", err)
		}
		if state.IsDone() {
			fmt.Println(state.Value.String())
			return nil
		}
		fmt.Fprintln(os.Stderr, "yielded (no host to answer it):", state.Value.String())
		state, err = fib.ResumeFromYield(value.Nil[extern, locals]())
	}
}

func compileFile(inFile, outFile string) error {
	src, err := os.ReadFile(inFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inFile, err)
	}
	forms, err := parser.ParseAll(string(src))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", inFile, err)
	}
	var code []value.Inst[extern, locals]
	for i, form := range forms {
		c, err := compiler.Compile[extern, locals](form)
		if err != nil {
			return fmt.Errorf("compiling %s: %w", inFile, err)
		}
		if i > 0 {
			code = append(code, value.PopTop[extern, locals]())
		}
		code = append(code, c...)
	}

	out, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outFile, err)
	}
	defer out.Close()
	if err := value.EncodeBytecode(out, code); err != nil {
		return fmt.Errorf("writing %s: %w", outFile, err)
	}
	fmt.Printf("compiled %s -> %s\n", inFile, outFile)
	return nil
}

func disassembleFile(filename string) error {
	code, err := loadBytecodeFile(filename)
	if err != nil {
		return err
	}
	fmt.Printf("=== %s ===\n", filename)
	fmt.Print(value.Disassemble(code))
	return nil
}

func isBytecodeFile(filename string) bool {
	if len(filename) < 3 {
		return false
	}
	return filename[len(filename)-3:] == ".lb"
}

func loadBytecodeFile(filename string) ([]value.Inst[extern, locals], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	defer f.Close()
	code, err := value.DecodeBytecode[extern, locals](f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}
	return code, nil
}
