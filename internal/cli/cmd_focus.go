package cli

import (
	"strings"

	flag "github.com/spf13/pflag"
)

const focusHelp = `  focus <case> <text>    Set the case's current focus and log it
    --history              Show the case's focus history instead`

func cmdFocus(o *IO, cfg Config, args []string) error {
	flagSet := flag.NewFlagSet("focus", flag.ContinueOnError)
	flagSet.Usage = func() {
		fprintf(flagSet.Output(), "Usage: caseboard focus <case> <text>\n       caseboard focus --history <case>\n")
	}

	showHistory := flagSet.Bool("history", false, "Show focus history")

	if hasHelpFlag(args) {
		flagSet.SetOutput(o.out)
		flagSet.Usage()

		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		return ErrCaseRequired
	}

	sess, err := openSession(cfg)
	if err != nil {
		return err
	}

	dataset, err := sess.Dataset()
	if err != nil {
		return err
	}

	c, err := resolveCase(dataset, flagSet.Arg(0))
	if err != nil {
		return err
	}

	if *showHistory {
		entries, err := sess.FocusHistory(c.ID)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			o.Println("no focus history")

			return nil
		}

		for _, entry := range entries {
			o.Printf("%s  %-12s %s\n",
				entry.Timestamp.UTC().Format("2006-01-02 15:04:05"), entry.Actor, entry.FocusText)
		}

		return nil
	}

	text := strings.Join(flagSet.Args()[1:], " ")

	logged, err := sess.SetFocus(c.ID, text)
	if err != nil {
		return err
	}

	if !logged {
		o.Warn("focus unchanged for %s, nothing logged", c.CaseNumber)
	}

	if _, err := sess.Save(); err != nil {
		return err
	}

	o.Printf("focus set on %s\n", c.CaseNumber)

	return nil
}
