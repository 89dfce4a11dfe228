package rtaccel

import (
	"context"
	"fmt"
	"time"

	"github.com/gekko3d/rtaccel/rt/bvh"
	"github.com/gekko3d/rtaccel/rt/core"

	"github.com/google/uuid"
)

type Options struct {
	BVH bvh.Options
	// Validate checks every hierarchy after the build and fails the build
	// with bvh.ErrInvalidHierarchy on violations.
	Validate bool
}

func DefaultOptions() Options {
	return Options{BVH: bvh.DefaultOptions()}
}

// Session runs full builds. A Session holds no build state; every call to
// Build produces fresh arrays.
type Session struct {
	opts   Options
	logger Logger
}

func NewSession(opts Options, logger Logger) *Session {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Session{opts: opts, logger: logger}
}

type Stats struct {
	BLAS              bvh.BuildStats
	Instances         int
	SkippedPlacements int
	TLASNodes         int
	TLASDuration      time.Duration
	Total             time.Duration
}

// Result owns the arrays of one build. It is not modified after Build
// returns.
type Result struct {
	ID        uuid.UUID
	Triangles []bvh.Triangle
	Nodes     []bvh.BVHNode
	// Roots maps a mesh ordinal to its BLAS root, NoNode for empty meshes.
	Roots     []bvh.NodeIndex
	Instances []core.Instance
	// Placement maps an instance to the placement it was created from.
	Placement []int
	TLAS      []bvh.TLASNode
	Stats     Stats
}

// Build builds the BLAS of every mesh, one instance per placement and the
// TLAS over the instances. ctx is checked between meshes; on cancellation
// the partial output is discarded.
func (s *Session) Build(ctx context.Context, src SceneSource) (*Result, error) {
	start := time.Now()
	res := &Result{ID: uuid.New()}

	meshes := src.Meshes()
	builder := bvh.NewBVHBuilder(s.opts.BVH, s.logger)
	res.Roots = make([]bvh.NodeIndex, len(meshes))
	for i := range meshes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Roots[i] = builder.BuildBVH(&meshes[i])
	}
	res.Triangles = builder.Triangles
	res.Nodes = builder.Nodes
	res.Stats.BLAS = builder.Stats

	placements := src.Placements()
	res.Instances = make([]core.Instance, 0, len(placements))
	for i, p := range placements {
		if p.Mesh < 0 || p.Mesh >= len(res.Roots) {
			s.logger.Warnf("build %s: placement %d (%s) references unknown mesh %d, skipping", res.ID, i, p.Name, p.Mesh)
			res.Stats.SkippedPlacements++
			continue
		}
		root := res.Roots[p.Mesh]
		if !root.Valid() {
			s.logger.Warnf("build %s: placement %d (%s) references empty mesh %q, skipping", res.ID, i, p.Name, meshes[p.Mesh].Name)
			res.Stats.SkippedPlacements++
			continue
		}
		local := res.Nodes[root].Bounds()
		res.Instances = append(res.Instances, core.NewInstance(p.Transform, root, local, p.Materials))
		res.Placement = append(res.Placement, i)
	}
	res.Stats.Instances = len(res.Instances)

	tlasStart := time.Now()
	boxes := make([]bvh.AABB, len(res.Instances))
	for i := range res.Instances {
		boxes[i] = res.Instances[i].WorldBounds()
	}
	res.TLAS = bvh.NewTLASBuilder(s.logger).Build(boxes)
	res.Stats.TLASDuration = time.Since(tlasStart)
	res.Stats.TLASNodes = len(res.TLAS)

	if s.opts.Validate {
		if err := res.Validate(); err != nil {
			return nil, fmt.Errorf("build %s: %w", res.ID, err)
		}
	}

	res.Stats.Total = time.Since(start)
	s.logger.Infof("build %s: %d meshes, %d triangles, %d BLAS nodes, %d instances (%d skipped), %d TLAS nodes in %s",
		res.ID, len(meshes), len(res.Triangles), len(res.Nodes), len(res.Instances),
		res.Stats.SkippedPlacements, len(res.TLAS), res.Stats.Total)
	return res, nil
}

// Validate checks containment and structure of every BLAS and of the TLAS.
func (r *Result) Validate() error {
	for mesh, root := range r.Roots {
		if err := bvh.ValidateBVH(r.Nodes, r.Triangles, root); err != nil {
			return fmt.Errorf("mesh %d: %w", mesh, err)
		}
	}
	if err := bvh.ValidateTLAS(r.TLAS, len(r.Instances)); err != nil {
		return fmt.Errorf("TLAS: %w", err)
	}
	for i := range r.Instances {
		inst := &r.Instances[i]
		if !inst.Root.Valid() || int(inst.Root) >= len(r.Nodes) {
			return fmt.Errorf("%w: instance %d has root %d", bvh.ErrInvalidHierarchy, i, inst.Root)
		}
	}
	return nil
}

// Permutation returns, for each slot of Triangles, the triangle's position
// in flattening order.
func (r *Result) Permutation() []uint32 {
	perm := make([]uint32, len(r.Triangles))
	for i := range r.Triangles {
		perm[i] = r.Triangles[i].Ordinal
	}
	return perm
}

// InstanceOverlaps counts the pairs of instances whose world boxes overlap.
func (r *Result) InstanceOverlaps() int {
	n := 0
	for i := range r.Instances {
		a := r.Instances[i].WorldBounds()
		for j := i + 1; j < len(r.Instances); j++ {
			if a.Intersects(r.Instances[j].WorldBounds()) {
				n++
			}
		}
	}
	return n
}

// Buffers holds the GPU records of a build, in post-build array order.
type Buffers struct {
	Triangles  []byte
	Attributes []byte
	BVHNodes   []byte
	Instances  []byte
	TLASNodes  []byte
}

func (r *Result) Buffers() (Buffers, error) {
	tlas, err := bvh.EncodeTLASNodes(r.TLAS)
	if err != nil {
		return Buffers{}, err
	}
	geometry, attributes := bvh.EncodeTriangles(r.Triangles)
	return Buffers{
		Triangles:  geometry,
		Attributes: attributes,
		BVHNodes:   bvh.EncodeBVHNodes(r.Nodes),
		Instances:  core.EncodeInstances(r.Instances),
		TLASNodes:  tlas,
	}, nil
}
