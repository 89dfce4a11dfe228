package main

import (
	"context"
	"fmt"

	"github.com/gekko3d/rtaccel"
	"github.com/gekko3d/rtaccel/config"
	"github.com/gekko3d/rtaccel/rt/core"

	"github.com/urfave/cli"
)

// env is what every command needs: the merged config and a logger.
type env struct {
	cfg    *config.Config
	logger *rtaccel.DefaultLogger
}

func setup(ctx *cli.Context) (*env, error) {
	cfg, err := config.LoadFile(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	cfg.Apply(config.Overrides{
		Debug:         ctx.GlobalBool("v"),
		LogFile:       ctx.GlobalString("log-file"),
		OutputDir:     ctx.String("out"),
		LeafThreshold: ctx.Int("leaf"),
		Bins:          ctx.Int("bins"),
		Validate:      ctx.Bool("validate"),
	})

	logCfg := rtaccel.LogConfig{
		Prefix:  "rtaccel",
		Debug:   rtaccel.ParseLevel(cfg.Logging.Level),
		Console: true,
	}
	if cfg.Logging.LogFile != "" {
		logCfg.File = rtaccel.DefaultFileConfig(cfg.Logging.LogFile)
	}
	return &env{cfg: cfg, logger: rtaccel.NewLogger(logCfg)}, nil
}

func (e *env) session() *rtaccel.Session {
	return rtaccel.NewSession(rtaccel.Options{
		BVH:      e.cfg.Build.BVHOptions(),
		Validate: e.cfg.Build.Validate,
	}, e.logger)
}

// build loads and builds the scene at path.
func (e *env) build(ctx context.Context, path string) (*core.Scene, *rtaccel.Result, error) {
	scene, err := core.LoadScene(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := e.session().Build(ctx, scene)
	if err != nil {
		return scene, nil, err
	}
	return scene, res, nil
}

func sceneArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one scene file", ctx.Command.Name)
	}
	return ctx.Args().First(), nil
}
