package device

import "fmt"

// Set is the Component Set: an insertion-ordered collection of devices with
// auto-generated names per kind and the mutation protocol's entry point.
type Set struct {
	order   []Device
	byName  map[string]int // name -> index into order
	ordinal map[string]int // kind -> next auto-name ordinal
}

func NewSet() *Set {
	return &Set{byName: make(map[string]int), ordinal: make(map[string]int)}
}

// Add appends a device, auto-naming it "<KIND><ordinal>" (R1, R2, C1, ...)
// when it was constructed with an empty name.
func (s *Set) Add(d Device) {
	name := d.Name()
	if name == "" {
		kind := d.Kind()
		s.ordinal[kind]++
		name = fmt.Sprintf("%s%d", kind, s.ordinal[kind])
		if setter, ok := d.(interface{ SetName(string) }); ok {
			setter.SetName(name)
		}
	}
	s.byName[name] = len(s.order)
	s.order = append(s.order, d)
}

// Lookup resolves a device by name.
func (s *Set) Lookup(name string) (Device, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.order[idx], true
}

// All returns every device in insertion order; the Equation Builder and the
// transient/Newton drivers walk devices in this fixed order so stamping is
// deterministic run to run.
func (s *Set) All() []Device {
	return s.order
}

// Len reports how many devices are in the set.
func (s *Set) Len() int { return len(s.order) }

// Handle is the mutable view returned by GetForModification: obtaining one
// marks its device dirty. Every Stamp reads the device's current parameters
// and clears the flag, whether or not it was set.
type Handle struct {
	Device
}

// GetForModification returns a Handle for the named device and marks it
// dirty, per the mutation protocol (§4.2): the Equation Builder clears the
// flag itself once it re-stamps the device.
func (s *Set) GetForModification(name string) (Handle, error) {
	idx, ok := s.byName[name]
	if !ok {
		return Handle{}, fmt.Errorf("component %q not found", name)
	}
	d := s.order[idx]
	if marker, ok := d.(interface{ MarkDirty() }); ok {
		marker.MarkDirty()
	}
	return Handle{Device: d}, nil
}
