// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the zuschat command line.

Running zuschat with no command opens the full-screen chat UI. The other
commands work without it:

	zuschat ask "Which outlets open before 8am?"
	zuschat repl
	zuschat history list | export | clear
	zuschat viz list | show | option | export
	zuschat config show | get | set | keys | path
	zuschat apikey set | status | clear
	zuschat version

# Global flags

	--config      config file (default ~/.zuschat/config.toml)
	--log-level   debug, info, warn or error
	--theme       light or dark
	--storage     json or sqlite
	--viz-source  visualization config URL, file:// URL or path

Flags override the environment, which overrides the config file. Every
command shares one zap logger writing to ~/.zuschat/logs/zuschat.log.
*/
package cli
