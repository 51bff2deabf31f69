package cli

import (
	"errors"
	"flag"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/install"
	"os"
)

// Setup/configuration options
func SetupMode(cliOpts *global.CommandSet, commandname string, args []string) {
	var newRecvConf bool
	var templateConfPath string

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	commandFlags.StringVar(&templateConfPath, "c", global.DefaultConfigPath, "Path to template config file")
	commandFlags.StringVar(&templateConfPath, "config", global.DefaultConfigPath, "Path to template config file")
	commandFlags.BoolVar(&newRecvConf, "config-template", false, "Create new template config (using config-path argument)")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[0:])

	if !newRecvConf {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}

	err := install.CreateTemplateConfig(templateConfPath, install.TerminalConfirm)
	if errors.Is(err, install.ErrNotOverwritten) {
		fmt.Printf("Not overwriting configuration file\n")
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote template configuration file to '%s'\n", templateConfPath)
}
