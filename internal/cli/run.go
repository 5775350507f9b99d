// Package cli implements the caseboard command-line surface: global flag
// parsing, JWCC config resolution, and one file per subcommand. Commands
// talk to the engine only through [session.Session].
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"caseboard/internal/fs"
	"caseboard/internal/session"
	"caseboard/internal/store"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Flag parsing errors.
var (
	ErrUnknownFlag     = errors.New("unknown flag")
	ErrFlagRequiresArg = errors.New("flag requires an argument")
	ErrCaseRequired    = errors.New("case id or case number required")
	ErrCaseNotFound    = errors.New("case not found")
)

// Run is the main entry point. Returns exit code.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	if len(args) < minArgs {
		printUsage(out)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	cfg, err := LoadConfig(LoadConfigInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		DataDirOverride: flags.dataDir,
		ActorOverride:   flags.actor,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	cmd := flags.remaining[0]
	cmdArgs := flags.remaining[1:]

	if cmd == "-h" || cmd == helpFlag {
		printUsage(out)

		return 0
	}

	ioCtx := NewIO(out, errOut)

	var cmdErr error

	switch cmd {
	case "create":
		cmdErr = cmdCreate(ioCtx, cfg, cmdArgs)
	case "ls":
		cmdErr = cmdLs(ioCtx, cfg, cmdArgs)
	case "show":
		cmdErr = cmdShow(ioCtx, cfg, cmdArgs)
	case "edit":
		cmdErr = cmdEdit(ioCtx, cfg, cmdArgs)
	case "focus":
		cmdErr = cmdFocus(ioCtx, cfg, cmdArgs)
	case "deadline":
		cmdErr = cmdDeadline(ioCtx, cfg, cmdArgs)
	case "rm":
		cmdErr = cmdRm(ioCtx, cfg, cmdArgs)
	case "audit":
		cmdErr = cmdAudit(ioCtx, cfg, cmdArgs)
	case "repair":
		cmdErr = cmdRepair(ioCtx, in, cfg, cmdArgs)
	case "print-config":
		cmdErr = cmdPrintConfig(ioCtx, cfg)
	default:
		fprintln(errOut, "error: unknown command:", cmd)
		printUsage(errOut)

		return 1
	}

	if cmdErr != nil {
		fprintln(errOut, "error:", cmdErr)

		return 1
	}

	return ioCtx.Finish()
}

// openSession builds the session every command works through.
func openSession(cfg Config) (*session.Session, error) {
	st, err := store.Open(fs.NewReal(), cfg.DataDirAbs, store.WithLockTimeout(cfg.LockTimeout()))
	if err != nil {
		return nil, err
	}

	return session.New(st, cfg.Actor, session.WithHistoryDepth(cfg.HistoryDepth)), nil
}

type globalFlags struct {
	workDir    string
	configPath string
	dataDir    string
	actor      string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args
// consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if arg == "-C" || arg == "--cwd" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// --data-dir flag
	if arg == "--data-dir" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.dataDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--data-dir="); ok {
		flags.dataDir = after

		return consumedOne, nil
	}

	// --actor flag
	if arg == "--actor" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.actor = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--actor="); ok {
		flags.actor = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func cmdPrintConfig(o *IO, cfg Config) error {
	formatted, err := FormatConfig(cfg)
	if err != nil {
		return err
	}

	o.Println(formatted)

	o.Println("")
	o.Println("# Sources:")

	if cfg.Sources.Global != "" {
		o.Println("#   global:", cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		o.Println("#   project:", cfg.Sources.Project)
	}

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("#   (using defaults only)")
	}

	return nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func fprintf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == helpFlag {
			return true
		}
	}

	return false
}

func printUsage(writer io.Writer) {
	fprintln(writer, `caseboard - file-backed legal case tracker

Usage: caseboard [options] <command> [args]

Options:
  -C, --cwd <dir>    Run as if started in <dir>
  -c, --config       Use specified config file
  --data-dir <dir>   Override the data directory
  --actor <name>     Attribute changes to <name>

Commands:`)
	fprintln(writer, createHelp)
	fprintln(writer, lsHelp)
	fprintln(writer, showHelp)
	fprintln(writer, editHelp)
	fprintln(writer, focusHelp)
	fprintln(writer, deadlineHelp)
	fprintln(writer, rmHelp)
	fprintln(writer, auditHelp)
	fprintln(writer, repairHelp)
	fprintln(writer, `  print-config           Show resolved configuration`)
}
