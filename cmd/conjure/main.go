package main

import (
	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/broady/conjure/cmd/conjure/internal/check"
	"github.com/broady/conjure/cmd/conjure/internal/gen"
)

type CLI struct {
	Verbose bool `help:"Log every generated file in a human readable format." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate Go code from a Conjure IR document."`
	Check   check.Cmd  `cmd:"" help:"Load, validate and resolve a Conjure IR document without writing files."`
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("conjure"),
		kong.Description("Conjure code generator for Go."),
		kong.UsageOnError(),
	)
	log, err := newLogger(cli.Verbose)
	ctx.FatalIfErrorf(err)
	defer func() { _ = log.Sync() }()

	err = ctx.Run(log)
	ctx.FatalIfErrorf(err)
}
