package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/osforge/acpica-go/bindgen"
	"github.com/osforge/acpica-go/compile"
	"github.com/osforge/acpica-go/patch"
	"github.com/osforge/acpica-go/workspace"
)

// Options narrows a run. The zero value runs every stage.
type Options struct {
	// SkipCompile leaves the toolchain untouched; staging, patching and
	// binding generation still happen.
	SkipCompile bool
	// SkipPublish generates the binding set but never writes the output
	// module or the archive.
	SkipPublish bool
}

// Result reports what a run produced. Archive and Output are empty for
// the stages a dry run skipped.
type Result struct {
	Set     *bindgen.Set
	Archive string
	Output  string
}

// Run drives the whole pipeline: stage the vendor tree into an ephemeral
// workspace, patch the environment header, compile the non-excluded
// components into the static archive, parse the umbrella header, and
// atomically rewrite the generated module. Stages run strictly in order
// and the first failure aborts the run. The workspace is removed on every
// return path; cleanup after abnormal process termination is not
// guaranteed.
func Run(ctx context.Context, cfg Config, opts Options) (*Result, error) {
	log := Logger()

	// Fail on bad inputs before any filesystem work.
	rule, err := patch.NewRule(cfg.SentinelPattern, cfg.SentinelReplacement)
	if err != nil {
		return nil, err
	}
	var tc *compile.Toolchain
	if !opts.SkipCompile {
		tc, err = compile.ResolveToolchain(cfg.CC, cfg.AR)
		if err != nil {
			return nil, err
		}
		log.Debug("toolchain resolved", zap.String("cc", tc.CC), zap.String("ar", tc.AR))
	}

	ws, err := workspace.New()
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	if err := ws.Stage(cfg.VendorRoot, cfg.ShimHeader); err != nil {
		return nil, err
	}
	log.Info("vendor tree staged",
		zap.String("vendor", cfg.VendorRoot),
		zap.String("workspace", ws.Root()))

	envHeader := filepath.Join(ws.SourceRoot(), filepath.FromSlash(cfg.EnvHeader))
	if err := rule.Apply(envHeader); err != nil {
		return nil, err
	}
	log.Info("environment header patched", zap.String("header", cfg.EnvHeader))

	res := &Result{}

	if !opts.SkipCompile {
		archive := filepath.Join(cfg.LibDir, "lib"+cfg.ArchiveName+".a")
		builder := compile.NewBuilder(tc, compile.NewExclusions(cfg.Exclude), nil, compile.Options{
			IncludeRoot: ws.IncludeRoot(),
			DebugOutput: cfg.DebugOutput,
		})
		if err := builder.Build(ctx, ws.ComponentsRoot(), archive); err != nil {
			return nil, err
		}
		res.Archive = archive
		log.Info("components archived", zap.String("archive", archive))
	}

	predefines := map[string]string{}
	if cfg.DebugOutput {
		predefines["ACPI_DEBUG_OUTPUT"] = ""
	}
	set, err := bindgen.Generate(cfg.UmbrellaHeader, bindgen.Config{
		IncludeDirs: []string{ws.IncludeRoot(), ws.PlatformInclude()},
		Predefines:  predefines,
	})
	if err != nil {
		return nil, err
	}
	res.Set = set
	log.Info("umbrella header parsed", zap.Int("declarations", set.Len()))

	if !opts.SkipPublish {
		emitOpts := bindgen.EmitOptions{
			Package:    cfg.OutputPackage,
			Include:    filepath.Base(cfg.UmbrellaHeader),
			CgoCFLAGS:  cfg.CgoCFLAGS,
			CgoLDFLAGS: cfg.CgoLDFLAGS,
		}
		if err := Publish(set, emitOpts, cfg.OutputModule); err != nil {
			return nil, err
		}
		res.Output = cfg.OutputModule
		log.Info("output module rewritten", zap.String("path", cfg.OutputModule))
	}

	return res, nil
}
