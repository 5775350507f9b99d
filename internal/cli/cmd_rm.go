package cli

const rmHelp = `  rm <case>              Remove a case from the board`

func cmdRm(o *IO, cfg Config, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: caseboard rm <case>")

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

	removedNumber := c.CaseNumber

	for i := range dataset.Cases {
		if dataset.Cases[i].ID == c.ID {
			dataset.Cases = append(dataset.Cases[:i], dataset.Cases[i+1:]...)

			break
		}
	}

	if _, err := sess.Save(); err != nil {
		return err
	}

	o.Printf("removed %s\n", removedNumber)

	return nil
}
