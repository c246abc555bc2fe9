// Package cli implements the keeper command tree. The root command resolves
// configuration, opens the store and wires the services every subcommand
// works through.
package cli
