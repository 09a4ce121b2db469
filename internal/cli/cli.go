// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Argument parsing and command dispatch for casechat.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdAsk
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool
	NoColor    bool
	ServiceURL string // --service overrides service.url
	ConfigPath string // --config loads a specific file

	// Command-specific
	Query      string
	File       string
	Export     string // ask: write the transcript here after answering
	Format     string // ask: export format (md or json)
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `casechat - ask questions about a legal document

casechat uploads one document to a document-analysis service, shows the
summary it returns and lets you ask questions about that document.

Usage:
  casechat                          Interactive chat (default)
  casechat chat [--file PATH]       Interactive chat, optionally uploading PATH first
  casechat ask --file PATH [QUESTION]
                                    Upload PATH, print the summary, answer QUESTION
  casechat status                   Check the analysis service and show settings
  casechat config [show|get|set|path|init]
                                    View and modify configuration
  casechat version                  Show version information
  casechat help                     Show this help

Chat Commands:
  /upload PATH                      Select and upload a document
  /status                           Show document and conversation state
  /history                          Show the conversation so far
  /export [md|json] [PATH]          Save the conversation
  /clear                            Dismiss the last error
  /help                             Show chat commands
  /quit                             Leave the chat

Ask Options:
  -f, --file PATH                   Document to upload (required)
  --export PATH                     Save the transcript after answering
  --format md|json                  Transcript format (default: md)

Config Commands:
  casechat config show              Display current configuration
  casechat config get KEY           Print one value (e.g. service.url)
  casechat config set KEY VALUE     Set and save one value
  casechat config path              Show configuration file path
  casechat config init              Write a default config file

Global Flags:
  --service URL                     Analysis service base URL
  --config PATH                     Use a specific config file
  --json                            Machine-readable output
  --no-color                        Disable colored output
  -q, --quiet                       Minimal output
  -v, --verbose                     Debug-level diagnostic logging

Environment:
  CASECHAT_SERVICE_URL, CASECHAT_ORIGIN, CASECHAT_UPLOAD_TIMEOUT,
  CASECHAT_PROBE_TIMEOUT, CASECHAT_REQUEST_TIMEOUT, CASECHAT_LOG_LEVEL,
  CASECHAT_LOG_FILE, CASECHAT_METRICS_ADDR, NO_COLOR
  Variables may also be placed in a .env file in the working directory.

Exit Codes:
  0  success          2  usage or input error    3  configuration error
  5  service down     6  service error           8  timeout
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "casechat %s\n", Version)
	fmt.Fprintf(w, "  Commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Built:  %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:     %s\n", runtime.Version())
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdChat, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Subcommand = cmd
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--no-color":
			parsedArgs.NoColor = true
		case "--service":
			if i+1 < len(args) {
				i++
				parsedArgs.ServiceURL = args[i]
			}
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--service="):
				parsedArgs.ServiceURL = strings.TrimPrefix(arg, "--service=")
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.File = p.FlagOrDefault("file", p.Flag("f"))
	args.Export = p.Flag("export")
	args.Format = p.FlagOrDefault("format", "md")
	args.Query = JoinPositionalArgs(p, 0)
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.File = p.FlagOrDefault("file", p.Flag("f"))
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = strings.Join(remaining[2:], " ")
		}
	}
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run parses argv, executes the command and returns the process exit code.
func Run(argv []string, stdout, stderr io.Writer) int {
	cmd, args := Parse(argv)

	var err error
	switch cmd {
	case CmdChat:
		err = HandleChat(args, stdout, stderr)
	case CmdAsk:
		err = HandleAsk(args, stdout, stderr)
	case CmdStatus:
		err = HandleStatus(args, stdout)
	case CmdConfig:
		err = HandleConfig(args, stdout)
	case CmdVersion:
		err = HandleVersion(args, stdout)
	case CmdHelp:
		PrintUsage(stdout)
	case CmdUnknown:
		err = NewValidationErrorWithExample("command", args.Subcommand, "unknown command", "casechat help")
	}

	if err != nil {
		DisplayError(err, args.JSON, stdout, stderr)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// HandleVersion handles the "version" command with JSON output support.
func HandleVersion(args Args, w io.Writer) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(w)
	}
	PrintVersion(w)
	return nil
}
