// Package shaders embeds the WGSL stencil kernels the compute device runs,
// following the teacher's one-exported-string-per-file embedding
// convention.
package shaders

import (
	_ "embed"
)

//go:embed velocity_step.wgsl
var VelocityStepWGSL string

//go:embed pressure_step.wgsl
var PressureStepWGSL string

//go:embed compact_step.wgsl
var CompactStepWGSL string

//go:embed analysis_step.wgsl
var AnalysisStepWGSL string

//go:embed blit.wgsl
var BlitWGSL string
