package main

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/gekko3d/rtaccel/rt/bvh"
	"github.com/gekko3d/rtaccel/rt/debug"

	"github.com/urfave/cli"
)

// Render node boxes to a PNG and optionally dump the tree.
func DebugScene(ctx *cli.Context) error {
	path, err := sceneArg(ctx)
	if err != nil {
		return err
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	_, res, err := e.build(context.Background(), path)
	if err != nil {
		return err
	}

	var boxes []debug.Box
	mesh := ctx.Int("mesh")
	switch {
	case mesh < 0:
		boxes = debug.TLASBoxes(res.TLAS)
		if ctx.Bool("dump") {
			if err := bvh.DumpTLAS(os.Stdout, res.TLAS); err != nil {
				return err
			}
		}
	case mesh < len(res.Roots):
		boxes = debug.BVHBoxes(res.Nodes, res.Roots[mesh])
		if ctx.Bool("dump") {
			if err := bvh.DumpBVH(os.Stdout, res.Nodes, res.Roots[mesh]); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("mesh %d out of range; the scene has %d meshes", mesh, len(res.Roots))
	}

	opts := debug.DefaultOptions()
	opts.Width, opts.Height = ctx.Int("size"), ctx.Int("size")
	opts.Axis = ctx.Int("axis")
	opts.MaxDepth = ctx.Int("depth")
	img := debug.Rasterize(opts, boxes)

	out := ctx.String("image")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	e.logger.Infof("drew %d boxes to %s", len(boxes), out)
	return nil
}
