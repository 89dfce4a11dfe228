package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "rtaccel"
	app.Usage = "build two-level ray tracing acceleration structures"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "config file (.yaml or .toml)",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable debug logging",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to this file",
		},
	}
	buildFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "out, o",
			Usage: "output directory",
		},
		cli.IntFlag{
			Name:  "leaf",
			Usage: "BLAS leaf threshold",
		},
		cli.IntFlag{
			Name:  "bins",
			Usage: "SAH bins per axis",
		},
		cli.BoolFlag{
			Name:  "validate",
			Usage: "check every hierarchy after building",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build a scene and write the GPU buffers",
			Description: `
Load a YAML scene, build one BLAS per mesh and a TLAS over all instances, and
write triangles.bin, attributes.bin, bvh.bin, instances.bin, tlas.bin and
roots.yaml into the output directory.`,
			ArgsUsage: "scene.yaml",
			Flags: append(buildFlags, cli.BoolFlag{
				Name:  "upload",
				Usage: "also upload the buffers to a headless WebGPU device",
			}),
			Action: BuildScene,
		},
		{
			Name:      "info",
			Usage:     "print build statistics for a scene",
			ArgsUsage: "scene.yaml",
			Flags:     buildFlags[1:],
			Action:    SceneInfo,
		},
		{
			Name:      "watch",
			Usage:     "rebuild a scene whenever it or its meshes change",
			ArgsUsage: "scene.yaml",
			Flags:     buildFlags,
			Action:    WatchScene,
		},
		{
			Name:      "debug",
			Usage:     "render node boxes to a PNG and dump the tree",
			ArgsUsage: "scene.yaml",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "image, i",
					Value: "bvh.png",
					Usage: "image filename",
				},
				cli.IntFlag{
					Name:  "mesh",
					Value: -1,
					Usage: "draw the BLAS of this mesh ordinal instead of the TLAS",
				},
				cli.IntFlag{
					Name:  "axis",
					Value: 2,
					Usage: "projection axis (0=x, 1=y, 2=z)",
				},
				cli.IntFlag{
					Name:  "size",
					Value: 1024,
					Usage: "image width and height",
				},
				cli.IntFlag{
					Name:  "depth",
					Usage: "maximum tree depth to draw (0 for all)",
				},
				cli.BoolFlag{
					Name:  "dump",
					Usage: "print the tree to stdout",
				},
			},
			Action: DebugScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
