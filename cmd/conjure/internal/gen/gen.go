package gen

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/conjure/cmd/conjure/internal/options"
	"github.com/broady/conjure/conjuregen"
)

type Cmd struct {
	IDL   string `arg:"" optional:"" help:"Conjure IR JSON document." type:"path"`
	Out   string `arg:"" optional:"" help:"Output directory for generated files." type:"path"`
	Watch bool   `help:"Watch the IR document and regenerate on change." short:"w"`

	Options options.Options `embed:""`
}

func (c *Cmd) Run(log *zap.Logger) error {
	cfg, err := c.Options.Load(c.IDL, c.Out)
	if err != nil {
		return err
	}
	if cfg.IDLPath == "" {
		return errors.WithHint(errors.New("no conjure definition"), "pass <idl> or set idl in the config file")
	}
	if cfg.OutDir == "" {
		return errors.WithHint(errors.New("no output directory"), "pass <out> or set out_dir in the config file")
	}
	cfg.Logger = log

	if err := generate(cfg); err != nil {
		if !c.Watch {
			return err
		}
		log.Error("generation failed", zap.Error(err))
	}
	if !c.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info("watching for changes", zap.String("idl", cfg.IDLPath))
	return Watch(ctx, cfg.IDLPath, DefaultDebounce, log, func() {
		if err := generate(cfg); err != nil {
			log.Error("generation failed", zap.Error(err))
		}
	})
}

func generate(cfg conjuregen.Config) error {
	res, err := conjuregen.FromConfig(cfg).ToDir(cfg.OutDir)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Generated %d files (%d types, %d services) in %s\n",
		len(res.Files), res.TypesGenerated, res.Services, cfg.OutDir)
	for _, w := range res.Warnings {
		fmt.Printf("! %s\n", w.Message)
	}
	return nil
}
