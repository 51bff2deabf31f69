package cli

import "gelfmover/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "GELF Mover",
		FullDescription: "  Receives GELF over UDP and forwards it to Sentry (or Beats, Kafka, journald, stdout)",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Receiving
	root.ChildCommands["receive"] = &global.CommandSet{
		CommandName:     "receive",
		Description:     "Receive Messages",
		FullDescription: "Receives GELF datagrams, reassembles chunks, decodes, translates and delivers events to the configured sink",
		ChildCommands:   nil,
	}

	// Sending
	root.ChildCommands["send"] = &global.CommandSet{
		CommandName:     "send",
		Description:     "Send Test Message",
		FullDescription: "Encodes one GELF message, chunking it when needed, and sends it to a receiver",
		ChildCommands:   nil,
	}

	// Setup
	root.ChildCommands["configure"] = &global.CommandSet{
		CommandName:     "configure",
		Description:     "Setup Actions",
		FullDescription: "Write a template configuration file",
		ChildCommands:   nil,
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
