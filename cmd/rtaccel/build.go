package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gekko3d/rtaccel"
	"github.com/gekko3d/rtaccel/rt/core"
	"github.com/gekko3d/rtaccel/rt/gpu"

	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

type meshRoot struct {
	Name      string `yaml:"name"`
	Root      int32  `yaml:"root"`
	Triangles int    `yaml:"triangles"`
}

// rootsFile is written next to the binary buffers; BLAS roots are per mesh
// and a consumer cannot assume 0.
type rootsFile struct {
	Session   string     `yaml:"session"`
	Meshes    []meshRoot `yaml:"meshes"`
	Instances int        `yaml:"instances"`
	TLASNodes int        `yaml:"tlas_nodes"`
}

// Build a scene and write its buffers.
func BuildScene(ctx *cli.Context) error {
	path, err := sceneArg(ctx)
	if err != nil {
		return err
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	scene, res, err := e.build(context.Background(), path)
	if err != nil {
		return err
	}
	buffers, err := writeArtefacts(e.cfg.Output.Dir, scene, res)
	if err != nil {
		return err
	}
	e.logger.Infof("wrote build %s to %s", res.ID, e.cfg.Output.Dir)

	if ctx.Bool("upload") {
		return upload(e, buffers)
	}
	return nil
}

func writeArtefacts(dir string, scene *core.Scene, res *rtaccel.Result) (rtaccel.Buffers, error) {
	buffers, err := res.Buffers()
	if err != nil {
		return buffers, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return buffers, err
	}

	files := []struct {
		name string
		data []byte
	}{
		{"triangles.bin", buffers.Triangles},
		{"attributes.bin", buffers.Attributes},
		{"bvh.bin", buffers.BVHNodes},
		{"instances.bin", buffers.Instances},
		{"tlas.bin", buffers.TLASNodes},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0644); err != nil {
			return buffers, err
		}
	}

	roots := rootsFile{
		Session:   res.ID.String(),
		Instances: len(res.Instances),
		TLASNodes: len(res.TLAS),
	}
	meshes := scene.Meshes()
	for i, root := range res.Roots {
		roots.Meshes = append(roots.Meshes, meshRoot{
			Name:      meshes[i].Name,
			Root:      int32(root),
			Triangles: meshes[i].TriangleCount(),
		})
	}
	data, err := yaml.Marshal(&roots)
	if err != nil {
		return buffers, err
	}
	return buffers, os.WriteFile(filepath.Join(dir, "roots.yaml"), data, 0644)
}

func upload(e *env, buffers rtaccel.Buffers) error {
	device, err := gpu.NewHeadless()
	if err != nil {
		return err
	}
	defer device.Release()

	manager := gpu.NewBufferManager(device.Device)
	defer manager.Release()
	if _, err := manager.Upload(buffers); err != nil {
		return err
	}
	e.logger.Infof("uploaded %d bytes to the GPU", len(buffers.Triangles)+len(buffers.Attributes)+
		len(buffers.BVHNodes)+len(buffers.Instances)+len(buffers.TLASNodes))
	return nil
}
