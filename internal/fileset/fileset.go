package fileset

import "regexp"

// TarFile is the well-known name of the packaged binary archive inside a
// run's input directory.
const TarFile = "inputs.tar.gz"

// Category classifies a named input file.
type Category string

const (
	// CategoryCore files are required for every run (ground-up loss).
	CategoryCore Category = "gul"
	// CategoryIL files are required only when insured-loss output is enabled.
	CategoryIL Category = "il"
	// CategoryOptional files are converted when present but never required.
	CategoryOptional Category = "optional"
)

// Input is one entry of the file-set registry: a canonical input name, its
// category and the external tool that converts <Name>.csv into <Name>.bin.
type Input struct {
	Name     string
	Category Category
	Tool     string
}

// CSVName returns the delimited-text file name for this input.
func (in Input) CSVName() string { return in.Name + ".csv" }

// BinName returns the binary file name for this input.
func (in Input) BinName() string { return in.Name + ".bin" }

// Registry is an ordered, read-only collection of input-file records.
// Enumeration order is the construction order.
type Registry struct {
	inputs []Input
}

// NewRegistry creates a registry from a slice of inputs. The slice is copied.
func NewRegistry(inputs []Input) *Registry {
	cp := make([]Input, len(inputs))
	copy(cp, inputs)
	return &Registry{inputs: cp}
}

// Default returns the standard ktools input-file registry.
func Default() *Registry {
	return NewRegistry([]Input{
		{Name: "coverages", Category: CategoryCore, Tool: "coveragetobin"},
		{Name: "events", Category: CategoryOptional, Tool: "evetobin"},
		{Name: "gulsummaryxref", Category: CategoryCore, Tool: "gulsummaryxreftobin"},
		{Name: "items", Category: CategoryCore, Tool: "itemtobin"},
		{Name: "fm_policytc", Category: CategoryIL, Tool: "fmpolicytctobin"},
		{Name: "fm_profile", Category: CategoryIL, Tool: "fmprofiletobin"},
		{Name: "fm_programme", Category: CategoryIL, Tool: "fmprogrammetobin"},
		{Name: "fm_xref", Category: CategoryIL, Tool: "fmxreftobin"},
		{Name: "fmsummaryxref", Category: CategoryIL, Tool: "fmsummaryxreftobin"},
	})
}

// All returns every registry entry in order.
func (r *Registry) All() []Input {
	cp := make([]Input, len(r.inputs))
	copy(cp, r.inputs)
	return cp
}

// Required returns the inputs that must exist as CSVs before conversion:
// core files, plus insured-loss files when includeIL is set. Optional files
// are never required.
func (r *Registry) Required(includeIL bool) []Input {
	var out []Input
	for _, in := range r.inputs {
		switch in.Category {
		case CategoryCore:
			out = append(out, in)
		case CategoryIL:
			if includeIL {
				out = append(out, in)
			}
		}
	}
	return out
}

// Convertible returns the inputs whose CSVs are converted when present:
// everything except insured-loss files when includeIL is false.
func (r *Registry) Convertible(includeIL bool) []Input {
	var out []Input
	for _, in := range r.inputs {
		if in.Category == CategoryIL && !includeIL {
			continue
		}
		out = append(out, in)
	}
	return out
}

// Tools returns the distinct conversion tools referenced by the active file
// set, in first-seen order.
func (r *Registry) Tools(includeIL bool) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, in := range r.Convertible(includeIL) {
		if _, ok := seen[in.Tool]; ok {
			continue
		}
		seen[in.Tool] = struct{}{}
		out = append(out, in.Tool)
	}
	return out
}

var riLayerPattern = regexp.MustCompile(`^RI_[0-9]+$`)

// IsRILayer reports whether name is a reinsurance-layer directory name
// (RI_<n> with a positive integer suffix).
func IsRILayer(name string) bool {
	return riLayerPattern.MatchString(name)
}
