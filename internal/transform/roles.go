package transform

import "github.com/propdoc/propdoc/internal/property"

// metaKeys are the designators a metadata blob may carry. A designated
// initializer is only bound as metadata when it uses at least one of
// them, which keeps bounds blobs ({.min, .max}) from binding as
// metadata on properties that carry no metadata at all.
var metaKeys = map[string]bool{
	"needs_restart": true,
	"visibility":    true,
	"secret":        true,
	"aliases":       true,
	"example":       true,
	"gets_restored": true,
}

var boundsKeys = map[string]bool{
	"min": true,
	"max": true,
}

// roles is the canonical constructor layout bound by name anchoring:
// name, description, metadata, default, trailing extras. Any role may be
// absent.
type roles struct {
	Name        *property.RawParameter
	Description *property.RawParameter
	Meta        *property.RawParameter
	Default     *property.RawParameter
	Extras      []property.RawParameter
}

// bindRoles classifies a normalized parameter list into named roles. The
// anchor is the first string parameter equal to the declared field name;
// everything binds relative to it by syntactic kind rather than by raw
// position.
func bindRoles(rec *property.MergedRecord) roles {
	var r roles
	params := rec.Parameters
	if len(params) == 0 {
		return r
	}

	anchor := -1
	for i := range params {
		if params[i].Kind == property.KindString && params[i].Value == rec.Name {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		// No exact name match; fall back to the first string parameter.
		for i := range params {
			if params[i].Kind == property.KindString {
				anchor = i
				break
			}
		}
	}
	if anchor < 0 {
		r.Extras = params
		return r
	}

	r.Name = &params[anchor]
	pos := anchor + 1

	if pos < len(params) && params[pos].Kind == property.KindString {
		r.Description = &params[pos]
		pos++
	}
	if pos < len(params) && isMetaBlob(params[pos]) {
		r.Meta = &params[pos]
		pos++
	}
	if pos < len(params) && !isBoundsBlob(params[pos]) {
		r.Default = &params[pos]
		pos++
	}
	r.Extras = params[pos:]
	return r
}

func isMetaBlob(p property.RawParameter) bool {
	if !p.IsDesignated() {
		return false
	}
	for key := range p.Fields {
		if metaKeys[key] {
			return true
		}
	}
	return false
}

func isBoundsBlob(p property.RawParameter) bool {
	if !p.IsDesignated() {
		return false
	}
	for key := range p.Fields {
		if !boundsKeys[key] {
			return false
		}
	}
	return true
}
