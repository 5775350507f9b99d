package cli

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"caseboard/internal/migrate"
	"caseboard/internal/store"
)

var errRepairAborted = errors.New("repair aborted")

const repairHelp = `  repair                 Recover a corrupt dataset from a backup
    --latest               Restore the newest backup without prompting
    --list                 List available backups and exit`

func cmdRepair(o *IO, in io.Reader, cfg Config, args []string) error {
	flagSet := flag.NewFlagSet("repair", flag.ContinueOnError)
	flagSet.Usage = func() {
		fprintf(flagSet.Output(), "Usage: caseboard repair [options]\n\nOptions:\n")
		flagSet.PrintDefaults()
	}

	latest := flagSet.Bool("latest", false, "Restore the newest backup without prompting")
	list := flagSet.Bool("list", false, "List available backups and exit")

	if hasHelpFlag(args) {
		flagSet.SetOutput(o.out)
		flagSet.Usage()

		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	sess, err := openSession(cfg)
	if err != nil {
		return err
	}

	st := sess.Store()

	if *list {
		return listBackups(o, st)
	}

	dataset, err := sess.Load()
	if err == nil {
		o.Printf("dataset OK: version %d, %d cases\n", dataset.Version, len(dataset.Cases))

		return nil
	}

	if errors.Is(err, migrate.ErrSchemaTooNew) {
		return err
	}

	var corrupt *store.CorruptDataError
	if !errors.As(err, &corrupt) {
		return err
	}

	o.Printf("dataset unreadable: %v\n", corrupt.Err)

	if len(corrupt.Backups) == 0 {
		return store.ErrNoBackups
	}

	name := corrupt.Backups[0]

	if !*latest {
		name, err = pickBackup(o, in, corrupt.Backups)
		if err != nil {
			return err
		}
	}

	if err := st.RestoreBackup(name); err != nil {
		return err
	}

	restored, err := sess.Load()
	if err != nil {
		return err
	}

	o.Printf("restored %s: version %d, %d cases\n", name, restored.Version, len(restored.Cases))

	return nil
}

func listBackups(o *IO, st *store.Store) error {
	backups, err := st.Backups()
	if err != nil {
		return err
	}

	if len(backups) == 0 {
		o.Println("no backups")

		return nil
	}

	for i, name := range backups {
		o.Printf("%d. %s\n", i+1, name)
	}

	return nil
}

// pickBackup asks which backup to restore. Real stdin gets a liner prompt
// with Ctrl-C abort; injected readers (tests) are read line-wise.
func pickBackup(o *IO, in io.Reader, backups []string) (string, error) {
	for i, name := range backups {
		o.Printf("%d. %s\n", i+1, name)
	}

	var (
		answer string
		err    error
	)

	if f, ok := in.(*os.File); ok && f == os.Stdin {
		prompt := liner.NewLiner()
		defer prompt.Close()

		prompt.SetCtrlCAborts(true)

		answer, err = prompt.Prompt("restore which backup [1]: ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return "", errRepairAborted
			}

			return "", err
		}
	} else {
		answer, err = readLine(in)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return backups[0], nil
	}

	choice, err := strconv.Atoi(answer)
	if err != nil || choice < 1 || choice > len(backups) {
		return "", errRepairAborted
	}

	return backups[choice-1], nil
}

func readLine(in io.Reader) (string, error) {
	var line []byte

	buf := make([]byte, 1)

	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return string(line), nil
			}

			line = append(line, buf[0])
		}

		if err != nil {
			return string(line), err
		}
	}
}
