// Package shell implements the interactive blockfs command loop over an
// io.Reader and an io.Writer, so it runs the same on a terminal and in tests.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/marmos91/blockfs/internal/cli/output"
	"github.com/marmos91/blockfs/internal/logger"
	"github.com/marmos91/blockfs/pkg/store/image"
	"github.com/marmos91/blockfs/pkg/vfs"
)

// Config configures a Shell.
type Config struct {
	In  io.Reader
	Out io.Writer

	// Color enables ANSI colors in prompts and messages.
	Color bool

	// Store and ImageName are where save and exit write the disk image.
	// A nil Store disables saving.
	Store     image.Store
	ImageName string

	// SaveOnExit writes the image on exit and on end of input.
	SaveOnExit bool

	// Banner prints the welcome banner when Run starts.
	Banner bool
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

// errExit ends the loop after a successful exit command.
var errExit = errors.New("exit")

// Shell reads commands line by line and runs them against a session.
type Shell struct {
	session  *vfs.Session
	in       *bufio.Reader
	out      *output.Printer
	cfg      Config
	commands map[string]command
}

// New creates a shell driving session.
func New(session *vfs.Session, cfg Config) *Shell {
	sh := &Shell{
		session: session,
		in:      bufio.NewReader(cfg.In),
		out:     output.NewPrinter(cfg.Out, output.FormatTable, cfg.Color),
		cfg:     cfg,
	}
	sh.commands = sh.commandTable()
	return sh
}

// Session returns the session the shell drives.
func (sh *Shell) Session() *vfs.Session {
	return sh.session
}

// Prompt returns the prompt for the current directory, e.g.
// "blockfs:/root/docs> ".
func (sh *Shell) Prompt() string {
	return sh.out.Paint(output.Bold+output.Blue, "blockfs") + ":" +
		sh.out.Paint(output.Green, sh.session.Path()) + "> "
}

// Run loops until exit or end of input. End of input behaves like exit.
// The returned error is only set when the final save fails.
func (sh *Shell) Run(ctx context.Context) error {
	if sh.cfg.Banner {
		sh.banner()
	}

	for {
		if ctx.Err() != nil {
			return sh.exit(context.WithoutCancel(ctx))
		}

		sh.out.Printf("%s", sh.Prompt())
		line, err := sh.in.ReadString('\n')
		if err != nil && line == "" {
			sh.out.Println()
			return sh.exit(ctx)
		}

		if err := sh.Execute(ctx, line); errors.Is(err, errExit) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// Execute runs one command line. Command failures are printed, never
// returned; the only errors returned end the loop.
func (sh *Shell) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	name, args := fields[0], fields[1:]
	cmd, ok := sh.commands[name]
	if !ok {
		sh.out.Warning("Unknown command. Type 'help' for commands.")
		return nil
	}

	ctx = sh.session.Context(ctx, name)
	logger.DebugCtx(ctx, "command", "args", args)

	err := cmd.run(ctx, args)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errExit):
		return err
	case errors.Is(err, errUsage):
		sh.out.Warning("Usage: " + cmd.usage)
		return nil
	default:
		sh.out.Error("Error: " + err.Error())
		return nil
	}
}

func (sh *Shell) exit(ctx context.Context) error {
	if sh.cfg.SaveOnExit && sh.cfg.Store != nil {
		if err := sh.session.SaveImage(ctx, sh.cfg.Store, sh.cfg.ImageName); err != nil {
			return err
		}
		sh.out.Info(fmt.Sprintf("File system saved to '%s'. Exiting...", sh.cfg.ImageName))
		return nil
	}
	sh.out.Info("Exiting...")
	return nil
}

func (sh *Shell) banner() {
	sh.out.Println(sh.out.Paint(output.Bold+output.Magenta, `
 _     _            _     __
| |__ | | ___   ___| | __/ _|___
| '_ \| |/ _ \ / __| |/ / |_/ __|
| |_) | | (_) | (__|   <|  _\__ \
|_.__/|_|\___/ \___|_|\_\_| |___/
`))
	sh.out.Println(sh.out.Paint(output.Bold+output.Cyan, "Block filesystem simulator"))
	sh.out.Println(sh.out.Paint(output.Yellow, "Type 'help' for list of commands."))
	sh.out.Println()
}

func (sh *Shell) help(context.Context, []string) error {
	names := make([]string, 0, len(sh.commands))
	for name := range sh.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	sh.out.Println(sh.out.Paint(output.Bold+output.Cyan, "Available Commands:"))
	for _, name := range names {
		c := sh.commands[name]
		sh.out.Printf("  %-16s - %s\n", c.usage, c.help)
	}
	sh.out.Println()
	return nil
}
