// Package cmd implements the sdui CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (render, validate, watch, handlers).
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-drift/sdui/cmd/sdui/internal/cache"
	"github.com/go-drift/sdui/pkg/core"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "sdui",
	Short: "sdui - render server-driven layouts",
	Long: `sdui builds server-driven UI layouts (YAML, JSON or .sdui) into HTML.

Use "sdui <command> --help" for more information about a command.`,
	Usage: "sdui <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return run(os.Args[1:])
}

func run(args []string) error {
	cache.SetGlobal(Version)

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Handle global flags and extract --cache-dir
	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Fprintf(stdout, "sdui version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--debug":
			core.SetLoggingEnabled(true)
		case "--cache-dir":
			if i+1 < len(args) {
				cache.SetCacheDir(args[i+1])
				i++
			} else {
				return fmt.Errorf("--cache-dir requires a directory path")
			}
		default:
			if strings.HasPrefix(arg, "--cache-dir=") {
				cache.SetCacheDir(strings.TrimPrefix(arg, "--cache-dir="))
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

func printHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(stdout, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Flags:")
	fmt.Fprintln(stdout, "  -h, --help           Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version        Show version information")
	fmt.Fprintln(stdout, "  --debug              Log every build step to stderr")
	fmt.Fprintln(stdout, "  --cache-dir DIR      Override cache directory (default: ~/.sdui)")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Environment:")
	fmt.Fprintln(stdout, "  SDUI_CACHE_DIR       Cache directory override (lower priority than --cache-dir)")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintln(stdout, "  sdui render card.yaml -o card.html   Render a layout to a page")
	fmt.Fprintln(stdout, "  sdui validate layouts/*.sdui         Check layouts for problems")
	fmt.Fprintln(stdout, "  sdui watch card.yaml -o card.html    Re-render on every change")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
