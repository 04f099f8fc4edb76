package property

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Enterprise classification names attached by the enterprise transformer.
const (
	EnterpriseSimple                   = "simple"
	EnterpriseRestrictedOnly           = "restricted_only"
	EnterpriseRestrictedWithSanctioned = "restricted_with_sanctioned"
)

// Items describes array element types. Present only on array-typed records.
type Items struct {
	Type string `json:"type"`
}

// Record is the finished output for one property. Field order here is the
// serialization order; optional fields are omitted until a transformer
// contributes them. Default is tri-state: nil pointer means never set, a
// pointer to a nil value serializes as JSON null.
type Record struct {
	Name                      string   `json:"name"`
	Description               string   `json:"description,omitempty"`
	DefinedIn                 string   `json:"definedIn"`
	Type                      string   `json:"type,omitempty"`
	Items                     *Items   `json:"items,omitempty"`
	Default                   *any     `json:"default,omitempty"`
	Minimum                   any      `json:"minimum,omitempty"`
	Maximum                   any      `json:"maximum,omitempty"`
	NeedsRestart              bool     `json:"needsRestart"`
	GetsRestored              *bool    `json:"getsRestored,omitempty"`
	IsSecret                  bool     `json:"isSecret"`
	Visibility                string   `json:"visibility"`
	Nullable                  bool     `json:"nullable"`
	IsDeprecated              bool     `json:"isDeprecated"`
	IsExperimental            bool     `json:"isExperimental"`
	Aliases                   []string `json:"aliases,omitempty"`
	Example                   string   `json:"example,omitempty"`
	IsEnterprise              bool     `json:"isEnterprise,omitempty"`
	EnterpriseConstructor     string   `json:"enterpriseConstructor,omitempty"`
	EnterpriseRestrictedValue []string `json:"enterpriseRestrictedValue,omitempty"`
	EnterpriseSanctionedValue []string `json:"enterpriseSanctionedValue,omitempty"`
}

// NewRecord returns a record with the non-optional defaults applied:
// restart required, user visibility, all flags false.
func NewRecord() *Record {
	return &Record{
		NeedsRestart: true,
		Visibility:   "user",
	}
}

// SetDefault records a derived default value. Passing nil sets an explicit
// JSON null (the nullopt case).
func (r *Record) SetDefault(v any) {
	r.Default = &v
}

// HasDefault reports whether any default (including explicit null) was set.
func (r *Record) HasDefault() bool {
	return r.Default != nil
}

// DefaultValue returns the default and whether one was set. An explicit
// null default returns (nil, true).
func (r *Record) DefaultValue() (any, bool) {
	if r.Default == nil {
		return nil, false
	}
	return *r.Default, true
}

// Document is the single output artifact: all extracted properties keyed by
// name, plus any externally supplied schema definitions.
type Document struct {
	Properties  map[string]*Record         `json:"properties"`
	Definitions map[string]json.RawMessage `json:"definitions"`
}

// NewDocument returns an empty document. Both maps are non-nil so the
// output always carries "properties" and "definitions" objects.
func NewDocument() *Document {
	return &Document{
		Properties:  make(map[string]*Record),
		Definitions: make(map[string]json.RawMessage),
	}
}

// Add inserts a finished record, keyed by property name.
func (d *Document) Add(rec *Record) {
	d.Properties[rec.Name] = rec
}

// Names returns all property names in lexicographic order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Properties))
	for name := range d.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDefinitions reads an external definitions file into the document.
// The file must contain a JSON object mapping type names to schema
// fragments.
func (d *Document) LoadDefinitions(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definitions file: %w", err)
	}
	defs := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("failed to parse definitions file %s: %w", path, err)
	}
	d.Definitions = defs
	return nil
}

// RewriteReferences replaces any property type (or array item type) that
// matches a definitions key with a "#/definitions/<name>" reference.
func (d *Document) RewriteReferences() {
	for _, rec := range d.Properties {
		if _, ok := d.Definitions[rec.Type]; ok {
			rec.Type = "#/definitions/" + rec.Type
		}
		if rec.Items != nil {
			if _, ok := d.Definitions[rec.Items.Type]; ok {
				rec.Items.Type = "#/definitions/" + rec.Items.Type
			}
		}
	}
}

// Marshal renders the document as indented JSON with a trailing newline.
// Map keys serialize in sorted order, so output is byte-stable across runs.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return append(data, '\n'), nil
}
