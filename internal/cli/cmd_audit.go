package cli

import (
	flag "github.com/spf13/pflag"
)

const auditHelp = `  audit                  Show the mutation log, oldest first
    --case                 Filter by case id
    --limit                Show at most N entries (0 = all)`

func cmdAudit(o *IO, cfg Config, args []string) error {
	flagSet := flag.NewFlagSet("audit", flag.ContinueOnError)
	flagSet.Usage = func() {
		fprintf(flagSet.Output(), "Usage: caseboard audit [options]\n\nOptions:\n")
		flagSet.PrintDefaults()
	}

	caseID := flagSet.String("case", "", "Filter by case id")
	limit := flagSet.Int("limit", 0, "Show at most N entries (0 = all)")

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

	entries, err := sess.AuditLog()
	if err != nil {
		return err
	}

	if *caseID != "" {
		filtered := entries[:0]

		for _, entry := range entries {
			if entry.CaseID == *caseID {
				filtered = append(filtered, entry)
			}
		}

		entries = filtered
	}

	if *limit > 0 && len(entries) > *limit {
		entries = entries[len(entries)-*limit:]
	}

	if len(entries) == 0 {
		o.Println("no audit entries")

		return nil
	}

	for _, entry := range entries {
		o.Printf("%s  %-10s %-9s %s\n",
			entry.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			entry.Actor, entry.Action, entry.Summary)
	}

	return nil
}
