// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for casechat.
//
// Every command builds the same stack from configuration: diagnostic
// logging, metrics, the retrying transport, the error classifier, the
// analysis client and one session. The commands only present session
// state; they hold no upload or conversation logic.
//
// # Key Types
//
//   - Command: the available commands
//   - Args: parsed global and command-specific flags
//   - ArgParser: flag and positional parsing for subcommands
//   - JSONResponse: the envelope written by --json
//
// # Usage
//
//	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
//
// # Commands
//
//   - chat: interactive questions about an uploaded document (default)
//   - ask: upload a document, print its summary, answer one question
//   - status: service reachability and effective settings
//   - config: show, get, set, path, init
//   - version, help
//
// Exit codes distinguish usage errors, configuration errors, an
// unreachable service, service-reported failures and timeouts.
package cli
