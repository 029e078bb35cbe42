package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// validation collects the outcome of a catalog validation pass.
type validation struct {
	fatal    []error
	warnings []error
}

func (v *validation) fail(err error) { v.fatal = append(v.fatal, err) }
func (v *validation) warn(err error) { v.warnings = append(v.warnings, err) }
func (v *validation) failed() bool   { return len(v.fatal) > 0 }
func (v *validation) joined() error  { return errors.Join(v.fatal...) }
func (v *validation) count() int     { return len(v.fatal) }

// validateFeatures checks every invariant that can be decided from the
// feature list alone. Cycles need the graph and are checked by New.
func validateFeatures(features []Feature, o options) *validation {
	v := &validation{}
	byID := make(map[string]*Feature, len(features))

	for i := range features {
		f := &features[i]
		validateFields(v, i, f)
		if f.ID == "" {
			continue
		}
		if _, dup := byID[f.ID]; dup {
			v.fail(herrors.New(herrors.ErrCodeDuplicateFeature, "duplicate feature id %q", f.ID))
			continue
		}
		byID[f.ID] = f
	}

	for i := range features {
		f := &features[i]
		if byID[f.ID] != f {
			continue
		}
		validateRefs(v, f, "depends_on", f.DependsOn, byID)
		validateRefs(v, f, "feeds_into", f.FeedsInto, byID)
	}

	for i := range features {
		f := &features[i]
		if byID[f.ID] != f {
			continue
		}
		validateSymmetry(v, f, byID, o.lenientSymmetry)
	}
	return v
}

func validateFields(v *validation, idx int, f *Feature) {
	if err := herrors.ValidateFeatureID(f.ID); err != nil {
		v.fail(herrors.Wrap(herrors.ErrCodeInvalidFeatureID, err, "feature #%d", idx))
	}
	label := f.ID
	if label == "" {
		label = fmt.Sprintf("#%d", idx)
	}
	if strings.TrimSpace(f.Name) == "" {
		v.fail(herrors.New(herrors.ErrCodeInvalidFeature, "feature %s: name cannot be empty", label))
	}
	if !f.Layer.Valid() {
		v.fail(herrors.New(herrors.ErrCodeInvalidLayer, "feature %s: unknown layer %q", label, f.Layer))
	}
	if !f.Icon.Valid() {
		v.fail(herrors.New(herrors.ErrCodeInvalidFeature, "feature %s: unknown icon %q", label, f.Icon))
	}
	for j, l := range f.Links {
		if strings.TrimSpace(l.Label) == "" {
			v.fail(herrors.New(herrors.ErrCodeInvalidLink, "feature %s: link #%d has no label", label, j))
		}
		if err := herrors.ValidateHref(l.Href); err != nil {
			v.fail(herrors.Wrap(herrors.ErrCodeInvalidLink, err, "feature %s: link #%d", label, j))
		}
	}
}

func validateRefs(v *validation, f *Feature, field string, refs []string, byID map[string]*Feature) {
	for _, ref := range refs {
		switch {
		case ref == f.ID:
			v.fail(herrors.New(herrors.ErrCodeUnknownReference, "feature %s: %s references itself", f.ID, field))
		case byID[ref] == nil:
			v.fail(herrors.New(herrors.ErrCodeUnknownReference, "feature %s: %s references unknown feature %q", f.ID, field, ref))
		}
	}
}

// validateSymmetry checks that feeds_into and depends_on mirror each other.
// Only the A→B direction is reported from A's side, so each broken pair is
// reported once per list that mentions it.
func validateSymmetry(v *validation, f *Feature, byID map[string]*Feature, lenient bool) {
	report := v.fail
	if lenient {
		report = v.warn
	}
	for _, to := range f.FeedsInto {
		other := byID[to]
		if other == nil || other == f {
			continue
		}
		if !slices.Contains(other.DependsOn, f.ID) {
			report(herrors.New(herrors.ErrCodeAsymmetricEdge,
				"feature %s feeds into %s, but %s does not depend on %s", f.ID, to, to, f.ID))
		}
	}
	for _, from := range f.DependsOn {
		other := byID[from]
		if other == nil || other == f {
			continue
		}
		if !slices.Contains(other.FeedsInto, f.ID) {
			report(herrors.New(herrors.ErrCodeAsymmetricEdge,
				"feature %s depends on %s, but %s does not feed into %s", f.ID, from, from, f.ID))
		}
	}
}
