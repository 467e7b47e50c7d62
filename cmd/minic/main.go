package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fsnotify/fsnotify"
	"github.com/xyproto/env/v2"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/format"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/parse"
)

func main() {
	koopaCmd := &cli.Command{
		Name:        "koopa",
		Description: "compile source to IR text",
		Action:      compileAct(compiler.ModeKoopa),
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("o", "", "output file (stdout if empty)"),
		},
	}

	riscvCmd := &cli.Command{
		Name:        "riscv",
		Description: "compile source to RISC-V assembly",
		Action:      compileAct(compiler.ModeRISCV),
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("o", "", "output file (stdout if empty)"),
		},
	}

	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "parse and print source in canonical form",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	replCmd := &cli.Command{
		Name:        "repl",
		Description: "compile programs or bare expressions interactively",
		Action:      replAct,
		Flags: []*cli.Flag{
			cli.NewFlag("history", env.Str("MINIC_HISTORY"), "history file ($MINIC_HISTORY)"),
		},
	}

	watchCmd := &cli.Command{
		Name:        "watch",
		Description: "recompile the input every time it changes",
		Action:      watchAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("o", "", "output file (stdout if empty)"),
			cli.NewFlag("riscv", false, "emit assembly instead of IR"),
		},
	}

	app := &cli.Command{
		Name:        "minic",
		Description: "minic compiles a SysY subset to IR and RISC-V assembly",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("v", env.Str("MINIC_VERBOSITY"), "tlog verbosity topics ($MINIC_VERBOSITY)"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			koopaCmd,
			riscvCmd,
			parseCmd,
			replCmd,
			watchCmd,
		},
	}

	cli.RunAndExit(app, modeArgs(os.Args), os.Environ())
}

// modeArgs rewrites `minic -koopa <input> -o <output>` into the koopa or riscv command.
func modeArgs(args []string) []string {
	if len(args) < 2 {
		return args
	}

	mode, err := compiler.ParseMode(args[1])
	if err != nil {
		return args
	}

	r := make([]string, 0, len(args))
	r = append(r, args[0], mode.String())
	r = append(r, args[2:]...)

	return r
}

func before(c *cli.Command) error {
	if v := c.String("v"); v != "" {
		tlog.SetVerbosity(v)
	}

	return nil
}

func rootContext() context.Context {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	return ctx
}

func compileAct(mode compiler.Mode) func(c *cli.Command) error {
	return func(c *cli.Command) (err error) {
		ctx := rootContext()

		if len(c.Args) != 1 {
			return errors.New("expected exactly one input file")
		}

		obj, err := compiler.CompileFile(ctx, c.Args[0], mode)
		if err != nil {
			return errors.Wrap(err, "compile %v", c.Args[0])
		}

		return output(c.String("o"), obj)
	}
}

func parseAct(c *cli.Command) (err error) {
	ctx := rootContext()

	for _, a := range c.Args {
		x, err := parse.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		b, err := format.Format(ctx, nil, x)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		_, err = os.Stdout.Write(b)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}

func replAct(c *cli.Command) (err error) {
	ctx := rootContext()

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "minic> ",
		HistoryFile:     c.String("history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return errors.Wrap(err, "readline")
	}

	defer func() {
		e := l.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close readline")
		}
	}()

	for {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}

			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read line")
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for _, mode := range []compiler.Mode{compiler.ModeKoopa, compiler.ModeRISCV} {
			obj, err := compiler.Compile(ctx, "<repl>", replSource(line), mode)
			if err != nil {
				fmt.Fprintf(l.Stderr(), "error: %v\n", err)
				break
			}

			fmt.Fprintf(l.Stdout(), "%s", obj)
		}
	}
}

// replSource wraps a bare expression into a main function.
func replSource(line string) []byte {
	if strings.HasPrefix(line, "int ") {
		return []byte(line)
	}

	line = strings.TrimSuffix(line, ";")

	return []byte("int main() { return " + line + "; }")
}

func watchAct(c *cli.Command) (err error) {
	ctx := rootContext()

	if len(c.Args) != 1 {
		return errors.New("expected exactly one input file")
	}

	name := c.Args[0]

	mode := compiler.ModeKoopa
	if c.Bool("riscv") {
		mode = compiler.ModeRISCV
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "new watcher")
	}

	defer func() {
		e := w.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close watcher")
		}
	}()

	err = w.Add(name)
	if err != nil {
		return errors.Wrap(err, "watch %v", name)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	rebuild := func() {
		obj, err := compiler.CompileFile(ctx, name, mode)
		if err == nil {
			err = output(c.String("o"), obj)
		}

		tlog.SpanFromContext(ctx).Printw("rebuilt", "name", name, "mode", mode, "err", err)
	}

	rebuild()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors:
			return errors.Wrap(err, "watcher")
		case ev := <-w.Events:
			tlog.SpanFromContext(ctx).V("watch").Printw("event", "name", ev.Name, "op", ev.Op.String())

			// editors save by rename, so the file is watched again
			if ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				time.Sleep(10 * time.Millisecond)

				_ = rewatch(ctx, w, name)
			}

			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				rebuild()
			}
		}
	}
}

// rewatch adds name again after the editor replaced the file.
// A failure is logged since the watch is gone until the next start.
func rewatch(ctx context.Context, w *fsnotify.Watcher, name string) error {
	err := w.Add(name)
	if err != nil {
		tlog.SpanFromContext(ctx).Printw("rewatch", "name", name, "err", err)
	}

	return err
}

func output(name string, obj []byte) (err error) {
	if name == "" || name == "-" {
		_, err = os.Stdout.Write(obj)
		if err != nil {
			return errors.Wrap(err, "write stdout")
		}

		return nil
	}

	err = os.WriteFile(name, obj, 0o644)
	if err != nil {
		return errors.Wrap(err, "write %v", name)
	}

	return nil
}
