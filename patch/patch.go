package patch

import (
	"os"
	"regexp"

	"github.com/osforge/acpica-go/errors"
)

// Rule is one pattern-and-replacement pair applied to a staged header.
// The pattern and replacement are configuration data, not code: a vendor
// update that moves or reshapes the sentinel block only requires new
// config values.
type Rule struct {
	re          *regexp.Regexp
	pattern     string
	replacement string
}

// NewRule compiles a rule from its configuration form. The pattern must be
// a valid Go regular expression; multi-line sentinels need an (?s) flag in
// the pattern text itself.
func NewRule(pattern, replacement string) (*Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.New(errors.StagePatch, errors.KindPattern).
			Pattern(pattern).
			Detail("invalid sentinel pattern").
			Cause(err).
			Build()
	}
	return &Rule{re: re, pattern: pattern, replacement: replacement}, nil
}

// Pattern returns the configured pattern text.
func (r *Rule) Pattern() string { return r.pattern }

// Replacement returns the configured replacement text.
func (r *Rule) Replacement() string { return r.replacement }

// Apply rewrites path in place, replacing the sentinel block with the
// replacement text. The rule is designed to apply exactly once per fresh
// workspace: output identical to the input (sentinel absent, or the file
// was already patched) is a fatal configuration error, never a silent
// no-op.
func (r *Rule) Apply(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Filesystem(errors.StagePatch, path, err)
	}

	patched := r.re.ReplaceAllLiteralString(string(data), r.replacement)
	if patched == string(data) {
		return errors.PatternNotApplied(path, r.pattern)
	}

	if err := os.WriteFile(path, []byte(patched), 0o644); err != nil {
		return errors.Filesystem(errors.StagePatch, path, err)
	}
	return nil
}
