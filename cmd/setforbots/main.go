package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"withargs" help:"Play in the terminal against bots"`
	Simulate SimulateCmd      `cmd:"" help:"Run bot-only games without a UI"`
	Hints    HintsCmd         `cmd:"" help:"Deal a board from a seed and list every set on it"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("setforbots"),
		kong.Description("Real-time Set for humans and bots"),
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
