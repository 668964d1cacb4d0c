package pipeline

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/osforge/acpica-go/errors"
)

// Config is the full pipeline configuration. The checked-in acpigen.toml
// carries the same values as Default; overrides replace, never merge.
// Everything the pipeline treats as policy lives here as data, including
// the sentinel pattern and the component denylist.
type Config struct {
	// VendorRoot is the pristine ACPICA source tree, normally the
	// acpica/source directory of the vendor submodule.
	VendorRoot string `toml:"vendor_root" validate:"required"`
	// ShimHeader is the freestanding platform header copied into the
	// staged tree's include/platform directory.
	ShimHeader string `toml:"shim_header" validate:"required"`
	// UmbrellaHeader is the header the binding generator parses.
	UmbrellaHeader string `toml:"umbrella_header" validate:"required"`
	// EnvHeader is the environment header to patch, relative to the
	// staged source root.
	EnvHeader string `toml:"env_header" validate:"required"`

	// OutputModule is the generated cgo source file, rewritten in full on
	// every run.
	OutputModule  string `toml:"output_module" validate:"required"`
	OutputPackage string `toml:"output_package" validate:"required"`

	// LibDir receives lib<ArchiveName>.a.
	LibDir      string `toml:"lib_dir" validate:"required"`
	ArchiveName string `toml:"archive_name" validate:"required"`

	// Exclude lists component directory names that are never compiled.
	Exclude []string `toml:"exclude"`

	// SentinelPattern must match exactly the vendor's OS-detection block;
	// SentinelReplacement is substituted literally.
	SentinelPattern     string `toml:"sentinel_pattern" validate:"required"`
	SentinelReplacement string `toml:"sentinel_replacement" validate:"required"`

	// CgoCFLAGS and CgoLDFLAGS are emitted verbatim into the generated
	// module's cgo block.
	CgoCFLAGS  string `toml:"cgo_cflags"`
	CgoLDFLAGS string `toml:"cgo_ldflags"`

	// DebugOutput compiles the vendor tree with its diagnostic output
	// enabled.
	DebugOutput bool `toml:"debug_output"`

	// CC and AR override toolchain discovery.
	CC string `toml:"cc"`
	AR string `toml:"ar"`
}

// Default returns the configuration the repository ships with.
func Default() Config {
	return Config{
		VendorRoot:          "acpica/source",
		ShimHeader:          "c_headers/acgo.h",
		UmbrellaHeader:      "c_headers/wrapper.h",
		EnvHeader:           "include/platform/acenv.h",
		OutputModule:        "bindings/bindings.go",
		OutputPackage:       "bindings",
		LibDir:              "lib",
		ArchiveName:         "acpica",
		Exclude:             []string{"debugger", "disassembler"},
		SentinelPattern:     `(?s)#if defined\(_LINUX\).+?#endif`,
		SentinelReplacement: `#include "acgo.h"`,
		CgoCFLAGS:           "-fno-stack-protector -I${SRCDIR}/../acpica/source/include -I${SRCDIR}/../c_headers",
		CgoLDFLAGS:          "-L${SRCDIR}/../lib -lacpica",
	}
}

var validate = validator.New()

// Load reads a TOML configuration file over the defaults and validates
// the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Filesystem(errors.StageConfig, path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.InvalidConfig("malformed TOML in "+path, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, errors.InvalidConfig("invalid configuration in "+path, err)
	}
	return cfg, nil
}
