package rtaccel

import (
	"github.com/gekko3d/rtaccel/rt/bvh"
	"github.com/gekko3d/rtaccel/rt/core"
)

// SceneSource is what a build reads from the host: the meshes, and the
// placements that reference them by ordinal. *core.Scene implements it.
type SceneSource interface {
	Meshes() []bvh.Mesh
	Placements() []core.Placement
}

var _ SceneSource = (*core.Scene)(nil)
