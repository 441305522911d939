// Package cli implements the lrrctl command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/RezaEskandarii/lrrctl/app"
	"github.com/RezaEskandarii/lrrctl/types/config"
)

const envConfigPath = "LRRCTL_CONFIG"

// ErrUsage is returned when the command line cannot be understood.
var ErrUsage = errors.New("invalid usage")

// LoadFunc reads the configuration file at path, or the default locations when empty.
type LoadFunc func(path string) (*config.ConsoleConfig, error)

// Factory builds the container a command runs against.
type Factory func(ctx context.Context, cfg *config.ConsoleConfig) (*app.Container, error)

type CLI struct {
	out     io.Writer
	errOut  io.Writer
	load    LoadFunc
	factory Factory
}

func New(out, errOut io.Writer, load LoadFunc, factory Factory) *CLI {
	return &CLI{out: out, errOut: errOut, load: load, factory: factory}
}

// env is what a command sees: the wired container and the output stream.
type env struct {
	c   *app.Container
	out io.Writer
}

type command struct {
	args  string
	usage string
	run   func(ctx context.Context, e *env, args []string) error
}

// Run parses the global flags, picks the subcommand and runs it.
func (c *CLI) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lrrctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", os.Getenv(envConfigPath), "path to the configuration file")
	if err := fs.Parse(args); err != nil {
		c.usage(c.errOut)
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	rest := fs.Args()
	if len(rest) == 0 || rest[0] == "help" {
		c.usage(c.out)
		return nil
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		c.usage(c.errOut)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, rest[0])
	}

	cfg, err := c.load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	container, err := c.factory(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	return cmd.run(ctx, &env{c: container, out: c.out}, rest[1:])
}

func (c *CLI) usage(out io.Writer) {
	fmt.Fprintln(out, "usage: lrrctl [-config file] <command> [arguments]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(out, "  %-40s %s\n", strings.TrimSpace(name+" "+cmd.args), cmd.usage)
	}
}

// parseInterspersed parses flags that may appear before, between or after the
// positional arguments, which the flag package alone stops at.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func exactArgs(args []string, n int, names string) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %s", ErrUsage, names)
	}
	return nil
}
