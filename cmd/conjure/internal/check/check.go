package check

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/conjure/cmd/conjure/internal/options"
	"github.com/broady/conjure/conjuregen"
)

type Cmd struct {
	IDL string `arg:"" optional:"" help:"Conjure IR JSON document." type:"path"`

	Options options.Options `embed:""`
}

func (c *Cmd) Run(log *zap.Logger) error {
	cfg, err := c.Options.Load(c.IDL, "")
	if err != nil {
		return err
	}
	if cfg.IDLPath == "" {
		return errors.WithHint(errors.New("no conjure definition"), "pass <idl> or set idl in the config file")
	}
	cfg.Logger = log

	res, err := conjuregen.FromConfig(cfg).Check(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("✓ %d services, %d endpoints, %d errors\n", res.Services, res.Endpoints, res.Errors)
	fmt.Printf("✓ %d definitions in %d files\n", res.TypesGenerated, len(res.Files))
	for _, w := range res.Warnings {
		fmt.Printf("! %s\n", w.Message)
	}
	fmt.Println("✓ All types resolvable")
	return nil
}
