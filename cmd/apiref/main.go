package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/apiref/cmd/apiref/commands"
	ferrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("apiref"),
		kong.Description("Render MDX/Markdown API reference documents into a single navigable page."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()}, cli)
	os.Exit(ferrors.NewCLIErrorAdapter(cli.Verbose, nil).Report(os.Stderr, err))
}
