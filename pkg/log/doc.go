/*
Package log provides structured logging via zerolog: component-specific
child loggers, configurable level and JSON/console output, and a small
set of package-level helpers for the common case.

# Usage

Initializing the logger:

	import "github.com/crnlicp/chronolock/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Component loggers:

	ledgerLog := log.WithComponent("ledger")
	ledgerLog.Info().Str("account", acct.Key()).Msg("transfer accepted")

	mediaLog := log.WithMediaID(id)
	mediaLog.Warn().Msg("unfinished upload reaped")

# Log Levels

Debug for development detail, Info for the default production level,
Warn for situations worth surfacing but not failing, Error for failed
operations, Fatal for unrecoverable startup failures (exits the process).

# Design

Global Logger instance, initialized once via Init and read from every
package without being passed around. Context loggers (WithComponent,
WithAccount, WithChronolockID, WithMediaID) derive a child logger with
one extra field rather than repeating `.Str(...)` at every call site.

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
*/
package log
