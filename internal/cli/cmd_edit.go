package cli

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"caseboard/internal/record"
)

const editHelp = `  edit <case>            Edit case fields (only given flags change)
    -n, --name             Case name
    -t, --type             Case type
    --number               Case number
    --status               Status
    --attention            Attention
    --stage                Litigation stage
    --paralegal            Assigned paralegal
    --county               County
    --division             Court division
    --judge                Judge
    --opposing-counsel     Opposing counsel
    --opposing-firm        Opposing firm
    --sol                  SOL date (YYYY-MM-DD, empty string clears)`

func cmdEdit(o *IO, cfg Config, args []string) error {
	flagSet := flag.NewFlagSet("edit", flag.ContinueOnError)
	flagSet.Usage = func() {
		fprintf(flagSet.Output(), "Usage: caseboard edit <case> [options]\n\nOptions:\n")
		flagSet.PrintDefaults()
	}

	name := flagSet.StringP("name", "n", "", "Case name")
	caseType := flagSet.StringP("type", "t", "", "Case type")
	number := flagSet.String("number", "", "Case number")
	status := flagSet.String("status", "", "Status")
	attention := flagSet.String("attention", "", "Attention")
	stage := flagSet.String("stage", "", "Litigation stage")
	paralegal := flagSet.String("paralegal", "", "Assigned paralegal")
	county := flagSet.String("county", "", "County")
	division := flagSet.String("division", "", "Court division")
	judge := flagSet.String("judge", "", "Judge")
	opposingCounsel := flagSet.String("opposing-counsel", "", "Opposing counsel")
	opposingFirm := flagSet.String("opposing-firm", "", "Opposing firm")
	sol := flagSet.String("sol", "", "SOL date")

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

	if flagSet.Changed("type") {
		normalized := record.NormalizeCaseType(*caseType)
		if !record.IsValidCaseType(normalized) {
			return fmt.Errorf("%w: %s", errInvalidCaseType, *caseType)
		}

		c.CaseType = normalized
	}

	if flagSet.Changed("status") {
		if !record.IsValidStatus(*status) {
			return fmt.Errorf("%w: %s", errInvalidStatus, *status)
		}

		c.Status = *status
	}

	if flagSet.Changed("attention") {
		if !record.IsValidAttention(*attention) {
			return fmt.Errorf("%w: %s", errInvalidAttention, *attention)
		}

		c.Attention = *attention
	}

	if flagSet.Changed("sol") {
		if *sol == "" {
			c.SOLDate = nil
		} else {
			date, err := record.ParseDate(*sol)
			if err != nil {
				return err
			}

			c.SOLDate = &date
		}
	}

	for _, field := range []struct {
		name   string
		value  string
		target *string
	}{
		{"name", *name, &c.CaseName},
		{"number", *number, &c.CaseNumber},
		{"stage", *stage, &c.Stage},
		{"paralegal", *paralegal, &c.Paralegal},
		{"county", *county, &c.County},
		{"division", *division, &c.Division},
		{"judge", *judge, &c.Judge},
		{"opposing-counsel", *opposingCounsel, &c.OpposingCounsel},
		{"opposing-firm", *opposingFirm, &c.OpposingFirm},
	} {
		if flagSet.Changed(field.name) {
			*field.target = record.CleanText(field.value, 0)
		}
	}

	result, err := sess.Save()
	if err != nil {
		return err
	}

	o.Printf("saved %s at version %d\n", c.CaseNumber, result.Version)

	return nil
}
