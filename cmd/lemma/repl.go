package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/chzyer/readline"

	"github.com/kristofer/lemma/fiber"
	"github.com/kristofer/lemma/value"
)

// runREPL starts an interactive Read-Eval-Print Loop, grounded on the
// teacher's cmd/smog/main.go runREPL but rebuilt on chzyer/readline for
// line editing/history instead of a bare bufio.Scanner, and driving each
// line's Fiber through Resume/ResumeFromYield instead of the teacher's
// run-to-completion vm.Run. Every line gets a fresh Fiber, so definitions
// made on one line are not visible on the next.
//
// This is illustrative only: a real host runs many fibers concurrently
// and answers yields with whatever its process/mailbox runtime decides;
// here, a yield gets printed and the user types the resume value (an
// integer, otherwise a string, or an empty line for nil).
func runREPL(opts ...fiber.Option[extern, locals]) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lemma> ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "^D",
	})
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("lemma %s\n", version)
	fmt.Println("Type an expression, or :quit to exit.")

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch line {
		case "":
			continue
		case ":quit", ":exit":
			return nil
		}

		fib, err := fiber.FiberFromExpr[extern, locals](line, locals{}, opts...)
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "parse error: %v\n", err)
			continue
		}
		bindDemoNatives(fib)
		runFiberInteractively(rl, fib)
	}
}

// runFiberInteractively drives fib to completion, printing every yielded
// value and re-prompting for the resume value so §4.4's suspension
// protocol is visible at the terminal.
func runFiberInteractively(rl *readline.Instance, fib *fiber.Fiber[extern, locals]) {
	state, err := fib.Resume()
	for {
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "runtime error: %v\n", err)
			return
		}
		if state.IsDone() {
			fmt.Println("=>", state.Value.String())
			return
		}
		fmt.Println("yielded:", state.Value.String())
		rl.SetPrompt("resume> ")
		resumeLine, rerr := rl.Readline()
		rl.SetPrompt("lemma> ")
		if rerr != nil {
			return
		}
		resumeVal := value.Val[extern, locals](value.Nil[extern, locals]())
		if resumeLine != "" {
			if i, ok := parseInt(resumeLine); ok {
				resumeVal = value.Int[extern, locals](i)
			} else {
				resumeVal = value.String[extern, locals](resumeLine)
			}
		}
		state, err = fib.ResumeFromYield(resumeVal)
	}
}

func parseInt(s string) (int32, bool) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}
