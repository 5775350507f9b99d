package cli

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"caseboard/internal/record"
)

var (
	errCaseNumberRequired = errors.New("case number is required")
	errInvalidStatus      = errors.New("invalid status")
	errInvalidAttention   = errors.New("invalid attention")
	errInvalidCaseType    = errors.New("invalid case type")
)

const createHelp = `  create <case_number>   Create a case, prints its id
    -n, --name             Case name
    -t, --type             Case type [default: Personal Injury]
    --status               Status (open|filed|pre-filing|closed|archived)
    --attention            Attention (waiting|needs_attention)
    --stage                Litigation stage
    --paralegal            Assigned paralegal
    --county               County
    --division             Court division
    --judge                Judge
    --opposing-counsel     Opposing counsel
    --opposing-firm        Opposing firm
    --sol                  Statute of limitations date (YYYY-MM-DD)
    -f, --focus            Current focus text`

func cmdCreate(o *IO, cfg Config, args []string) error {
	flagSet := flag.NewFlagSet("create", flag.ContinueOnError)
	flagSet.Usage = func() {
		fprintf(flagSet.Output(), "Usage: caseboard create <case_number> [options]\n\nOptions:\n")
		flagSet.PrintDefaults()
	}

	name := flagSet.StringP("name", "n", "", "Case name")
	caseType := flagSet.StringP("type", "t", record.DefaultCaseType, "Case type")
	status := flagSet.String("status", record.StatusOpen, "Status")
	attention := flagSet.String("attention", record.AttentionWaiting, "Attention")
	stage := flagSet.String("stage", "", "Litigation stage")
	paralegal := flagSet.String("paralegal", "", "Assigned paralegal")
	county := flagSet.String("county", "", "County")
	division := flagSet.String("division", "", "Court division")
	judge := flagSet.String("judge", "", "Judge")
	opposingCounsel := flagSet.String("opposing-counsel", "", "Opposing counsel")
	opposingFirm := flagSet.String("opposing-firm", "", "Opposing firm")
	sol := flagSet.String("sol", "", "Statute of limitations date (YYYY-MM-DD)")
	focus := flagSet.StringP("focus", "f", "", "Current focus text")

	if hasHelpFlag(args) {
		flagSet.SetOutput(o.out)
		flagSet.Usage()

		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() == 0 || flagSet.Arg(0) == "" {
		return errCaseNumberRequired
	}

	normalizedType := record.NormalizeCaseType(*caseType)
	if !record.IsValidCaseType(normalizedType) {
		return fmt.Errorf("%w: %s", errInvalidCaseType, *caseType)
	}

	if !record.IsValidStatus(*status) {
		return fmt.Errorf("%w: %s", errInvalidStatus, *status)
	}

	if !record.IsValidAttention(*attention) {
		return fmt.Errorf("%w: %s", errInvalidAttention, *attention)
	}

	c := record.NewCase(flagSet.Arg(0), *name)
	c.CaseType = normalizedType
	c.Status = *status
	c.Attention = *attention
	c.Stage = record.CleanText(*stage, 0)
	c.Paralegal = record.CleanText(*paralegal, 0)
	c.County = record.CleanText(*county, 0)
	c.Division = record.CleanText(*division, 0)
	c.Judge = record.CleanText(*judge, 0)
	c.OpposingCounsel = record.CleanText(*opposingCounsel, 0)
	c.OpposingFirm = record.CleanText(*opposingFirm, 0)
	c.CurrentTask = record.CleanText(*focus, record.MaxFocusLength)

	if *sol != "" {
		date, err := record.ParseDate(*sol)
		if err != nil {
			return err
		}

		c.SOLDate = &date
	}

	sess, err := openSession(cfg)
	if err != nil {
		return err
	}

	dataset, err := sess.Dataset()
	if err != nil {
		return err
	}

	if existing := dataset.FindCaseByNumber(c.CaseNumber); existing != nil {
		o.Warn("case number %s already tracked as %s", c.CaseNumber, existing.ID)
	}

	dataset.Cases = append(dataset.Cases, c)

	if _, err := sess.Save(); err != nil {
		return err
	}

	o.Println(c.ID)

	return nil
}
