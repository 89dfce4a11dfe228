package config

import "github.com/gekko3d/rtaccel/rt/bvh"

// Overrides carries command line values. Zero values leave the config
// untouched.
type Overrides struct {
	Debug         bool
	LogFile       string
	OutputDir     string
	LeafThreshold int
	Bins          int
	Validate      bool
}

// Apply applies CLI flag overrides to the config.
func (c *Config) Apply(o Overrides) {
	if o.Debug {
		c.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		c.Logging.LogFile = o.LogFile
	}
	if o.OutputDir != "" {
		c.Output.Dir = o.OutputDir
	}
	if o.LeafThreshold > 0 {
		c.Build.LeafThreshold = o.LeafThreshold
	}
	if o.Bins > 0 {
		c.Build.Bins = o.Bins
	}
	if o.Validate {
		c.Build.Validate = true
	}
}

// BVHOptions returns the BLAS policy. Out of range values fall back to the
// builder defaults.
func (b BuildConfig) BVHOptions() bvh.Options {
	return bvh.Options{
		LeafThreshold:   b.LeafThreshold,
		Bins:            b.Bins,
		SplitAcceptance: b.SplitAcceptance,
	}
}
