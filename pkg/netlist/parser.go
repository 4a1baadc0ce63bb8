// Package netlist parses the circuit description language (§6.1): a
// line-oriented, whitespace-separated grammar for component declarations
// and named-value voltage source shorthand. Grounded on
// _examples/edp1096-toy-spice/pkg/netlist/parser.go's field-splitting and
// regexp-based value parsing, narrowed to the five component kinds this
// engine supports (no SIN/PULSE/PWL sources, no .tran/.ac/.dc control
// cards — those belong to the analysis facade, not the netlist).
package netlist

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/arclamp/circsim/pkg/cktserr"
)

// ElementSpec is one parsed component declaration or its named-value
// shorthand expansion.
type ElementSpec struct {
	Kind  string // "R", "C", "L", "D", "VG"
	Name  string // "" means auto-name on insertion into the Set
	Nodes []string
	Value float64 // magnitude for R/C/L/VG

	HasV0, HasI0 bool
	V0, I0       float64

	DiodeI0, DiodeM, DiodeV0 float64

	Line int
}

var prefixes = map[string]float64{
	"T": 1e12, "G": 1e9, "M": 1e6, "k": 1e3, "K": 1e3,
	"m": 1e-3, "u": 1e-6, "n": 1e-9, "p": 1e-12,
}

var valueRe = regexp.MustCompile(`^([+-]?[0-9]*\.?[0-9]+(?:[eE][+-]?[0-9]+)?)([TGMkKmunp]?)[A-Za-z]*$`)

// ParseValue parses a magnitude with an optional SI prefix and an optional,
// purely decorative unit word (ohm/Ohm, F, H, V).
func ParseValue(tok string) (float64, error) {
	m := valueRe.FindStringSubmatch(strings.TrimSpace(tok))
	if m == nil {
		return 0, cktserr.Wrap(cktserr.ErrInvalidParameter, "malformed value %q", tok)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, cktserr.Wrap(cktserr.ErrInvalidParameter, "malformed value %q", tok)
	}
	if mult, ok := prefixes[m[2]]; ok {
		num *= mult
	}
	return num, nil
}

// Parse reads a full netlist and returns its component declarations in
// source order, expanding named-value shorthand into implicit VG elements.
func Parse(src string) ([]ElementSpec, error) {
	var specs []ElementSpec
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		if spec, ok, err := parseShorthand(fields, lineNo); err != nil {
			return nil, err
		} else if ok {
			specs = append(specs, spec)
			continue
		}

		spec, err := parseElement(fields, lineNo)
		if err != nil {
			return nil, err
		}
		if spec.Name != "" {
			if seen[spec.Name] {
				return nil, cktserr.Wrap(cktserr.ErrStructural, "duplicate component name %q (line %d)", spec.Name, lineNo)
			}
			seen[spec.Name] = true
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// parseShorthand matches "<node> = <value>v", the named-value voltage
// source shorthand.
func parseShorthand(fields []string, line int) (ElementSpec, bool, error) {
	if len(fields) != 3 || fields[1] != "=" {
		return ElementSpec{}, false, nil
	}
	value, err := ParseValue(fields[2])
	if err != nil {
		return ElementSpec{}, false, cktserr.NewParseError(line, 0, "malformed shorthand value")
	}
	return ElementSpec{Kind: "VG", Nodes: []string{fields[0], "gnd"}, Value: value, Line: line}, true, nil
}

// parseElement splits a declaration line into "bare" positional tokens
// (name/nodes/magnitude) and "key=value" tokens (ICs, diode parameters),
// in any order, then dispatches on KIND.
func parseElement(fields []string, line int) (ElementSpec, error) {
	if len(fields) < 1 {
		return ElementSpec{}, cktserr.NewParseError(line, 0, "empty element line")
	}
	kind := strings.ToUpper(fields[0])

	var bare []string
	kv := make(map[string]string)
	for _, f := range fields[1:] {
		if i := strings.IndexByte(f, '='); i >= 0 {
			kv[strings.ToLower(f[:i])] = f[i+1:]
		} else {
			bare = append(bare, f)
		}
	}

	switch kind {
	case "R", "C", "L", "VG":
		var name string
		switch len(bare) {
		case 3:
			// no name
		case 4:
			name = bare[0]
			bare = bare[1:]
			if name != "" && name[0] >= '0' && name[0] <= '9' {
				return ElementSpec{}, cktserr.NewParseError(line, 0, "component name must not start with a digit")
			}
		default:
			return ElementSpec{}, cktserr.NewParseError(line, 0, "wrong number of fields for "+kind)
		}
		value, err := ParseValue(bare[2])
		if err != nil {
			return ElementSpec{}, cktserr.NewParseError(line, 0, "malformed value")
		}
		spec := ElementSpec{Kind: kind, Name: name, Nodes: bare[0:2], Value: value, Line: line}
		if v0, ok := kv["v0"]; ok {
			spec.V0, err = strconv.ParseFloat(v0, 64)
			if err != nil {
				return ElementSpec{}, cktserr.NewParseError(line, 0, "malformed v0")
			}
			spec.HasV0 = true
		}
		if i0, ok := kv["i0"]; ok {
			spec.I0, err = strconv.ParseFloat(i0, 64)
			if err != nil {
				return ElementSpec{}, cktserr.NewParseError(line, 0, "malformed i0")
			}
			spec.HasI0 = true
		}
		return spec, nil

	case "D":
		var name string
		switch len(bare) {
		case 2:
		case 3:
			name = bare[0]
			bare = bare[1:]
			if name != "" && name[0] >= '0' && name[0] <= '9' {
				return ElementSpec{}, cktserr.NewParseError(line, 0, "component name must not start with a digit")
			}
		default:
			return ElementSpec{}, cktserr.NewParseError(line, 0, "wrong number of fields for D")
		}
		spec := ElementSpec{Kind: "D", Name: name, Nodes: bare[0:2], Line: line}

		i0Str, ok := kv["i0"]
		if !ok {
			return ElementSpec{}, cktserr.NewParseError(line, 0, "diode requires i0=")
		}
		i0, err := strconv.ParseFloat(i0Str, 64)
		if err != nil {
			return ElementSpec{}, cktserr.NewParseError(line, 0, "malformed i0")
		}
		mStr, ok := kv["m"]
		if !ok {
			return ElementSpec{}, cktserr.NewParseError(line, 0, "diode requires m=")
		}
		m, err := strconv.ParseFloat(mStr, 64)
		if err != nil {
			return ElementSpec{}, cktserr.NewParseError(line, 0, "malformed m")
		}
		if m <= 0 {
			return ElementSpec{}, cktserr.Wrap(cktserr.ErrInvalidParameter, "diode m must be > 0 (line %d)", line)
		}
		v0Str, ok := kv["v0"]
		if !ok {
			return ElementSpec{}, cktserr.NewParseError(line, 0, "diode requires v0=")
		}
		v0, err := strconv.ParseFloat(v0Str, 64)
		if err != nil {
			return ElementSpec{}, cktserr.NewParseError(line, 0, "malformed v0")
		}
		spec.DiodeI0, spec.DiodeM, spec.DiodeV0 = i0, m, v0
		return spec, nil

	default:
		return ElementSpec{}, cktserr.NewParseError(line, 0, "unknown element kind "+kind)
	}
}
