package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docmigrate/cmd/docmigrate/commands"
	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("docmigrate"),
		kong.Description("Migrate an MkDocs documentation tree into Hugo content."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(&commands.Global{Stdout: os.Stdout}); err != nil {
		derrors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
	}
}
