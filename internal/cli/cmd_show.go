package cli

import (
	"caseboard/internal/record"
)

const showHelp = `  show <case>            Show full case details (by id or case number)`

func cmdShow(o *IO, cfg Config, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: caseboard show <case>")

		return nil
	}

	if len(args) == 0 {
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

	c, err := resolveCase(dataset, args[0])
	if err != nil {
		return err
	}

	o.Printf("id:               %s\n", c.ID)
	o.Printf("case number:      %s\n", c.CaseNumber)
	o.Printf("case name:        %s\n", orDash(c.CaseName))
	o.Printf("type:             %s\n", c.CaseType)
	o.Printf("status:           %s\n", c.Status)
	o.Printf("attention:        %s\n", c.Attention)
	o.Printf("stage:            %s\n", orDash(c.Stage))
	o.Printf("paralegal:        %s\n", orDash(c.Paralegal))
	o.Printf("county:           %s\n", orDash(c.County))
	o.Printf("division:         %s\n", orDash(c.Division))
	o.Printf("judge:            %s\n", orDash(c.Judge))
	o.Printf("opposing counsel: %s\n", orDash(c.OpposingCounsel))
	o.Printf("opposing firm:    %s\n", orDash(c.OpposingFirm))

	sol := "-"
	if c.SOLDate != nil {
		sol = record.FormatDate(*c.SOLDate)
	}

	o.Printf("sol date:         %s\n", sol)
	o.Printf("focus:            %s\n", orDash(c.CurrentTask))
	o.Printf("next due:         %s\n", formatNextDue(c))

	if len(c.Deadlines) > 0 {
		o.Println("deadlines:")

		for i, d := range c.Deadlines {
			mark := " "
			if d.Resolved {
				mark = "x"
			}

			o.Printf("  %d. [%s] %s %s\n", i+1, mark, record.FormatDate(d.DueDate), d.Description)
		}
	}

	return nil
}
