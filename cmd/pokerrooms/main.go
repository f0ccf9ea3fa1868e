// Command pokerrooms runs the hold'em room server and inspects the hand
// histories it writes.
package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Serve       ServeCmd         `cmd:"" help:"Run the room server"`
	CheckConfig CheckConfigCmd   `cmd:"check-config" help:"Validate a configuration file and print the table rules"`
	History     HistoryCmd       `cmd:"" help:"Work with PHH hand history files"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerrooms"),
		kong.Description("Authoritative Texas Hold'em room server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
