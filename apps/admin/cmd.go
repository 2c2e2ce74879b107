package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/darasa/core/selection"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db      *sql.DB
	selRepo selection.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run DB migrations (up, down, status, ...)")
	fmt.Println("  clearselection -user USER_ID - drop a user's persisted dashboard selection")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	clearSelectionCmd := flag.NewFlagSet("clearselection", flag.ExitOnError)
	clearSelectionUser := clearSelectionCmd.String("user", "", "The user whose selection to drop.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "clearselection":
		if err := clearSelectionCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *clearSelectionUser == "" {
			clearSelectionCmd.Usage()
			return errHelp
		}
		return cli.clearSelection(*clearSelectionUser)
	default:
		cli.printUsage()
		return errHelp
	}
}
