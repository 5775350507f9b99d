package cli

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"caseboard/internal/record"
)

const lsHelp = `  ls                     List cases
    --status               Filter by status
    --attention            Filter by attention
    -t, --type             Filter by case type`

func cmdLs(o *IO, cfg Config, args []string) error {
	flagSet := flag.NewFlagSet("ls", flag.ContinueOnError)
	flagSet.Usage = func() {
		fprintf(flagSet.Output(), "Usage: caseboard ls [options]\n\nOptions:\n")
		flagSet.PrintDefaults()
	}

	status := flagSet.String("status", "", "Filter by status")
	attention := flagSet.String("attention", "", "Filter by attention")
	caseType := flagSet.StringP("type", "t", "", "Filter by case type")

	if hasHelpFlag(args) {
		flagSet.SetOutput(o.out)
		flagSet.Usage()

		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if *status != "" && !record.IsValidStatus(*status) {
		return fmt.Errorf("%w: %s", errInvalidStatus, *status)
	}

	if *attention != "" && !record.IsValidAttention(*attention) {
		return fmt.Errorf("%w: %s", errInvalidAttention, *attention)
	}

	sess, err := openSession(cfg)
	if err != nil {
		return err
	}

	dataset, err := sess.Dataset()
	if err != nil {
		return err
	}

	shown := 0

	for i := range dataset.Cases {
		c := &dataset.Cases[i]

		if *status != "" && c.Status != *status {
			continue
		}

		if *attention != "" && c.Attention != *attention {
			continue
		}

		if *caseType != "" && c.CaseType != record.NormalizeCaseType(*caseType) {
			continue
		}

		o.Printf("%-14s %-10s %-16s %-11s %s\n",
			c.CaseNumber, c.Status, c.Attention, formatNextDue(c), c.CaseName)

		shown++
	}

	if shown == 0 {
		o.Println("no cases")
	}

	return nil
}
