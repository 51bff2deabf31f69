package global

var (
	CmdOpts  *CommandSet // CLI command tree for help output
	Hostname string      // this forwarder's host, reported by sinks that carry agent metadata
	PID      int         // this forwarder's process id

	// Output detail, 0 (errors only) through 5 (raw datagram bytes)
	Verbosity int
)
