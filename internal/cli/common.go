package cli

import (
	"flag"
	"fmt"
	"gelfmover/internal/global"
	"strconv"
)

// Verbosity flag bounded to the defined levels
type verbosityFlag struct {
	level *int
}

func (v verbosityFlag) String() string {
	if v.level == nil {
		return "0"
	}
	return strconv.Itoa(*v.level)
}

func (v verbosityFlag) Set(raw string) (err error) {
	level, err := strconv.Atoi(raw)
	if err != nil {
		err = fmt.Errorf("verbosity must be a number")
		return
	}
	if level < global.VerbosityNone || level > global.VerbosityDebug {
		err = fmt.Errorf("verbosity must be between %d and %d", global.VerbosityNone, global.VerbosityDebug)
		return
	}
	*v.level = level
	return
}

// Registers -v/--verbosity on fs, writing to global.Verbosity
func SetGlobalArguments(fs *flag.FlagSet) (level *int) {
	global.Verbosity = global.VerbosityStandard
	level = &global.Verbosity

	value := verbosityFlag{level: level}
	usage := fmt.Sprintf("Increase detailed progress messages (Higher is more verbose) <%d...%d>", global.VerbosityNone, global.VerbosityDebug)
	fs.Var(value, "v", usage)
	fs.Var(value, "verbosity", usage)
	return
}

func SetCommon(fs *flag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "c", global.DefaultConfigPath, "Path to the configuration file")
	fs.StringVar(configPath, "config", global.DefaultConfigPath, "Path to the configuration file")
}
