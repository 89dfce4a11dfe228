package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gekko3d/rtaccel"
	"github.com/gekko3d/rtaccel/rt/bvh"
	"github.com/gekko3d/rtaccel/rt/core"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Print per-mesh and per-level build statistics.
func SceneInfo(ctx *cli.Context) error {
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
	printInfo(os.Stdout, scene, res)
	return nil
}

type treeStats struct {
	nodes, leaves, depth, maxLeaf int
}

func blasStats(nodes []bvh.BVHNode, root bvh.NodeIndex) treeStats {
	var s treeStats
	if !root.Valid() {
		return s
	}
	type item struct {
		idx   bvh.NodeIndex
		depth int
	}
	stack := []item{{root, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &nodes[it.idx]
		s.nodes++
		s.depth = max(s.depth, it.depth)
		if n.IsLeaf() {
			s.leaves++
			s.maxLeaf = max(s.maxLeaf, int(n.TriCount))
			continue
		}
		stack = append(stack, item{n.Left, it.depth + 1}, item{n.Right, it.depth + 1})
	}
	return s
}

func printInfo(w io.Writer, scene *core.Scene, res *rtaccel.Result) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Mesh", "Root", "Triangles", "Nodes", "Leaves", "Max leaf", "Depth", "Root SAH area"})

	meshes := scene.Meshes()
	for i, root := range res.Roots {
		s := blasStats(res.Nodes, root)
		area := "-"
		if root.Valid() {
			area = fmt.Sprintf("%.3f", res.Nodes[root].Bounds().Area())
		}
		table.Append([]string{
			meshes[i].Name,
			fmt.Sprintf("%d", root),
			fmt.Sprintf("%d", meshes[i].TriangleCount()),
			fmt.Sprintf("%d", s.nodes),
			fmt.Sprintf("%d", s.leaves),
			fmt.Sprintf("%d", s.maxLeaf),
			fmt.Sprintf("%d", s.depth),
			area,
		})
	}
	blas := res.Stats.BLAS
	table.SetFooter([]string{"", "TOTAL", fmt.Sprintf("%d", blas.Triangles), fmt.Sprintf("%d", blas.Nodes),
		fmt.Sprintf("%d", blas.Leaves), "", fmt.Sprintf("%d", blas.MaxDepth), blas.Duration.String()})
	table.Render()

	summary := tablewriter.NewWriter(w)
	summary.SetAutoFormatHeaders(false)
	summary.SetAutoWrapText(false)
	summary.SetHeader([]string{"Build", "Value"})
	summary.AppendBulk([][]string{
		{"session", res.ID.String()},
		{"instances", fmt.Sprintf("%d", len(res.Instances))},
		{"skipped placements", fmt.Sprintf("%d", res.Stats.SkippedPlacements)},
		{"overlapping instance pairs", fmt.Sprintf("%d", res.InstanceOverlaps())},
		{"TLAS nodes", fmt.Sprintf("%d", len(res.TLAS))},
		{"skipped triangles", fmt.Sprintf("%d", blas.SkippedTriangles)},
		{"median fallbacks", fmt.Sprintf("%d", blas.MedianFallbacks)},
		{"oversized leaves", fmt.Sprintf("%d", blas.OversizedLeaves)},
		{"TLAS time", res.Stats.TLASDuration.String()},
		{"total time", res.Stats.Total.String()},
	})
	summary.Render()
}
