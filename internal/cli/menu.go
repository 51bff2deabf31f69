package cli

import (
	"flag"
	"fmt"
	"gelfmover/internal/global"
	"io"
	"os"
	"sort"
	"strings"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Environment overrides for receive: SENTRY_DSN, SENTRY_DSN_FILE, UDP_ADDR,
SYSTEM, READER_THREADS, UNPACKER_THREADS, MAX_PARALLEL_CHUNKS
`
	helpIndent int = 2
)

// Full standardized help menu on stdout
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	writeHelpMenu(os.Stdout, os.Args[0], fs, command, rootCmd)
}

// Chain of commands from the root down to the named command, nil when unknown
func findCommand(cmd *global.CommandSet, name string) (chain []*global.CommandSet) {
	if cmd == nil {
		return
	}
	if cmd.CommandName == name {
		chain = []*global.CommandSet{cmd}
		return
	}

	childNames := sortedChildNames(cmd)
	for _, childName := range childNames {
		sub := findCommand(cmd.ChildCommands[childName], name)
		if sub != nil {
			chain = append([]*global.CommandSet{cmd}, sub...)
			return
		}
	}
	return
}

func sortedChildNames(cmd *global.CommandSet) (names []string) {
	names = make([]string, 0, len(cmd.ChildCommands))
	for name := range cmd.ChildCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func writeHelpMenu(out io.Writer, program string, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	if command == "" {
		command = RootCLICommand
	}
	chain := findCommand(rootCmd, command)
	if chain == nil {
		fmt.Fprintf(out, "Unknown command: %s\n", command)
		return
	}
	current := chain[len(chain)-1]

	// Usage line leaves out the root name
	usageParts := []string{program}
	for _, cmd := range chain[1:] {
		usageParts = append(usageParts, cmd.CommandName)
	}
	switch len(current.ChildCommands) {
	case 0:
	case 1:
		usageParts = append(usageParts, sortedChildNames(current)[0])
	default:
		usageParts = append(usageParts, "[subcommand]")
	}
	if current.UsageOption != "" {
		usageParts = append(usageParts, current.UsageOption)
	}
	fmt.Fprintf(out, "Usage: %s\n\n", strings.Join(usageParts, " "))

	indent := strings.Repeat(" ", helpIndent)
	if current == rootCmd {
		fmt.Fprintf(out, "%s\n%s\n\n", current.Description, current.FullDescription)
	} else if current.FullDescription != "" {
		fmt.Fprintf(out, "%sDescription:\n%s%s%s\n\n", indent, indent, indent, current.FullDescription)
	}

	if len(current.ChildCommands) > 0 {
		names := sortedChildNames(current)
		width := 0
		for _, name := range names {
			width = max(width, len(name))
		}

		fmt.Fprintf(out, "%sSubcommands:\n", indent)
		for _, name := range names {
			fmt.Fprintf(out, "%s%s%-*s  - %s\n", indent, indent, width, name, current.ChildCommands[name].Description)
		}
		fmt.Fprintln(out)
	}

	if fs != nil {
		writeFlagOptions(out, fs)
	}

	if current == rootCmd {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

// One option line; short and long spellings sharing a usage text are merged
type option struct {
	short, long string
	usage       string
	defaultVal  string
}

func (opt option) names() (joined string) {
	switch {
	case opt.short != "" && opt.long != "":
		joined = "-" + opt.short + ", --" + opt.long
	case opt.short != "":
		joined = "-" + opt.short
	default:
		// Long-only flags line up with the long spelling of paired flags
		joined = "    --" + opt.long
	}
	return
}

func collectOptions(fs *flag.FlagSet) (opts []*option) {
	byUsage := make(map[string]*option)
	fs.VisitAll(func(arg *flag.Flag) {
		opt, seen := byUsage[arg.Usage]
		if !seen {
			opt = &option{usage: arg.Usage, defaultVal: arg.DefValue}
			byUsage[arg.Usage] = opt
			opts = append(opts, opt)
		}
		if len(arg.Name) == 1 {
			opt.short = arg.Name
		} else {
			opt.long = arg.Name
		}
	})

	sort.Slice(opts, func(i, j int) bool {
		return strings.ToLower(strings.TrimLeft(opts[i].names(), " -")) <
			strings.ToLower(strings.TrimLeft(opts[j].names(), " -"))
	})
	return
}

func writeFlagOptions(out io.Writer, fs *flag.FlagSet) {
	opts := collectOptions(fs)

	width := 0
	for _, opt := range opts {
		width = max(width, len(opt.names()))
	}

	indent := strings.Repeat(" ", helpIndent)
	fmt.Fprintf(out, "%sOptions:\n", indent)
	for _, opt := range opts {
		desc := opt.usage
		// Empty defaults are not worth printing
		if opt.defaultVal != "" && opt.defaultVal != "false" && opt.defaultVal != "0" {
			desc += fmt.Sprintf(" [default: %s]", opt.defaultVal)
		}
		fmt.Fprintf(out, "%s%-*s  %s\n", indent, width, opt.names(), desc)
	}
}
