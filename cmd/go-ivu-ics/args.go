package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/tartampluch/go-ivu-ics/internal/config"
	"github.com/tartampluch/go-ivu-ics/internal/engine"
)

// errOutputExt is reported with its own message before the usage line.
var errOutputExt = fmt.Errorf("%w: %s", engine.ErrUsage, config.ErrOutputExt)

// cliArgs holds the parsed command line.
type cliArgs struct {
	month  string
	inputs []string
	output string

	showVersion  bool
	debug        bool
	configPath   string
	lang         string
	user         string
	serve        string
	savePassword bool
}

// newFlagSet binds the flags to a. Parse errors are returned, never printed.
func newFlagSet(a *cliArgs) *flag.FlagSet {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&a.month, config.FlagMonth, "", config.FlagDescMonth)
	fs.BoolVar(&a.showVersion, config.FlagVersion, false, config.FlagDescVersion)
	fs.BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)
	fs.StringVar(&a.configPath, config.FlagConfig, "", config.FlagDescConfig)
	fs.StringVar(&a.lang, config.FlagLang, "", config.FlagDescLang)
	fs.StringVar(&a.user, config.FlagUser, "", config.FlagDescUser)
	fs.StringVar(&a.serve, config.FlagServe, "", config.FlagDescServe)
	fs.BoolVar(&a.savePassword, config.FlagSavePw, false, config.FlagDescSavePw)
	return fs
}

// parseArgs parses argv (without the program name).
// Flags must precede the positional arguments: inputs first, output last.
func parseArgs(argv []string) (cliArgs, error) {
	var a cliArgs
	fs := newFlagSet(&a)

	if err := fs.Parse(argv); err != nil {
		if strings.HasSuffix(err.Error(), "needs an argument: -"+config.FlagMonth) {
			return a, fmt.Errorf("%w: %s", engine.ErrUsage, config.ErrMonthMissing)
		}
		if errors.Is(err, flag.ErrHelp) {
			return a, fmt.Errorf("%w: %w", engine.ErrUsage, flag.ErrHelp)
		}
		return a, fmt.Errorf("%w: %v", engine.ErrUsage, err)
	}

	if a.showVersion {
		return a, nil
	}
	if a.savePassword {
		if a.user == "" {
			return a, fmt.Errorf("%w: %s", engine.ErrUsage, config.ErrUserRequired)
		}
		return a, nil
	}

	pos := fs.Args()
	if len(pos) < 2 {
		return a, fmt.Errorf("%w: %s", engine.ErrUsage, config.ErrTooFewArgs)
	}

	a.output = pos[len(pos)-1]
	if !strings.HasSuffix(a.output, config.ExtICS) {
		return a, errOutputExt
	}
	a.inputs = pos[:len(pos)-1]

	return a, nil
}
