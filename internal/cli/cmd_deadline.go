package cli

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"caseboard/internal/record"
)

var (
	errDueRequired       = errors.New("--due is required when adding a deadline")
	errNoSuchDeadline    = errors.New("no deadline at that position")
	errAlreadyResolved   = errors.New("deadline already resolved")
	errNothingToDeadline = errors.New("nothing to do: give --due or --resolve")
)

const deadlineHelp = `  deadline <case>        Add or resolve a deadline
    --due                  Due date (YYYY-MM-DD), adds a deadline
    --desc                 Description for the new deadline
    --resolve              Resolve deadline N (1-based, see show)`

func cmdDeadline(o *IO, cfg Config, args []string) error {
	flagSet := flag.NewFlagSet("deadline", flag.ContinueOnError)
	flagSet.Usage = func() {
		fprintf(flagSet.Output(), "Usage: caseboard deadline <case> [options]\n\nOptions:\n")
		flagSet.PrintDefaults()
	}

	due := flagSet.String("due", "", "Due date (YYYY-MM-DD)")
	desc := flagSet.String("desc", "", "Description")
	resolve := flagSet.Int("resolve", 0, "Resolve deadline N (1-based)")

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

	switch {
	case flagSet.Changed("resolve"):
		if *resolve < 1 || *resolve > len(c.Deadlines) {
			return fmt.Errorf("%w: %d", errNoSuchDeadline, *resolve)
		}

		d := &c.Deadlines[*resolve-1]
		if d.Resolved {
			return fmt.Errorf("%w: %d", errAlreadyResolved, *resolve)
		}

		d.Resolved = true

	case *due != "":
		date, err := record.ParseDate(*due)
		if err != nil {
			return err
		}

		c.Deadlines = append(c.Deadlines, record.Deadline{
			DueDate:     date,
			Description: record.CleanText(*desc, 0),
		})

	case *desc != "":
		return errDueRequired

	default:
		return errNothingToDeadline
	}

	if _, err := sess.Save(); err != nil {
		return err
	}

	o.Printf("%s next due %s\n", c.CaseNumber, formatNextDue(c))

	return nil
}
