package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	backoffice "github.com/merchkit/backoffice/internal/app"
)

func main() {
	app.Run(run)
}

func run(ctx context.Context, lg *zap.Logger, m *app.Metrics) error {
	cfg, err := backoffice.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	return backoffice.Run(ctx, lg, m, cfg)
}
