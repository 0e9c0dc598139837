package kernel

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-render/dsp/core"
)

// ParamSpec describes one parameter.
type ParamSpec struct {
	Address Address
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
}

type param struct {
	spec  ParamSpec
	value atomic.Uint64

	// Ramp state is owned by the render goroutine.
	target    float64
	step      float64
	remaining int
}

func (p *param) load() float64 {
	return math.Float64frombits(p.value.Load())
}

func (p *param) store(v float64) {
	p.value.Store(math.Float64bits(v))
}

// ParamTable maps addresses to values for one kernel instance.
//
// Values are single words stored atomically, so Set and Get are safe from
// any goroutine. Ramps advance only on the render goroutine through
// StartRamp, Tick and Advance; a concurrent Set during a ramp is
// overwritten by the next ramp step.
type ParamTable struct {
	params []param
	index  []int
	active int
}

// NewParamTable builds a table from specs. Addresses must be unique and
// every default must lie within [Min, Max].
func NewParamTable(specs ...ParamSpec) (*ParamTable, error) {
	t := &ParamTable{params: make([]param, len(specs))}

	maxAddr := -1
	for _, s := range specs {
		if int(s.Address) > maxAddr {
			maxAddr = int(s.Address)
		}
	}
	t.index = make([]int, maxAddr+1)
	for i := range t.index {
		t.index[i] = -1
	}

	for i, s := range specs {
		if !core.IsFinite(s.Min) || !core.IsFinite(s.Max) || s.Min > s.Max {
			return nil, fmt.Errorf("kernel: param %q has invalid range [%f, %f]", s.Name, s.Min, s.Max)
		}
		if s.Default < s.Min || s.Default > s.Max {
			return nil, fmt.Errorf("kernel: param %q default %f outside [%f, %f]", s.Name, s.Default, s.Min, s.Max)
		}
		if t.index[s.Address] >= 0 {
			return nil, fmt.Errorf("kernel: duplicate param address %d (%q)", s.Address, s.Name)
		}
		t.index[s.Address] = i
		t.params[i].spec = s
		t.params[i].store(s.Default)
	}

	return t, nil
}

// MustParamTable is like NewParamTable but panics on error.
func MustParamTable(specs ...ParamSpec) *ParamTable {
	t, err := NewParamTable(specs...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *ParamTable) lookup(addr Address) *param {
	if int(addr) >= len(t.index) {
		return nil
	}
	i := t.index[addr]
	if i < 0 {
		return nil
	}
	return &t.params[i]
}

// Has reports whether addr is known.
func (t *ParamTable) Has(addr Address) bool {
	return t.lookup(addr) != nil
}

// Specs returns the parameter descriptions in declaration order.
func (t *ParamTable) Specs() []ParamSpec {
	out := make([]ParamSpec, len(t.params))
	for i := range t.params {
		out[i] = t.params[i].spec
	}
	return out
}

// Lookup finds a parameter address by name.
func (t *ParamTable) Lookup(name string) (Address, bool) {
	for i := range t.params {
		if t.params[i].spec.Name == name {
			return t.params[i].spec.Address, true
		}
	}
	return 0, false
}

// Get returns the current value, or 0 for unknown addresses.
func (t *ParamTable) Get(addr Address) float64 {
	p := t.lookup(addr)
	if p == nil {
		return 0
	}
	return p.load()
}

// Set clamps value to the parameter range and stores it. Unknown
// addresses and NaN are ignored. It reports whether a value was stored.
func (t *ParamTable) Set(addr Address, value float64) bool {
	p := t.lookup(addr)
	if p == nil || math.IsNaN(value) {
		return false
	}
	p.store(core.Clamp(value, p.spec.Min, p.spec.Max))
	return true
}

// StartRamp glides addr linearly from its current value to target over
// frames frames. frames <= 0 sets the value immediately and cancels any
// running ramp. Render goroutine only.
func (t *ParamTable) StartRamp(addr Address, target float64, frames int) {
	p := t.lookup(addr)
	if p == nil || math.IsNaN(target) {
		return
	}
	target = core.Clamp(target, p.spec.Min, p.spec.Max)

	if p.remaining > 0 {
		t.active--
	}
	if frames <= 0 {
		p.remaining = 0
		p.store(target)
		return
	}

	p.target = target
	p.step = (target - p.load()) / float64(frames)
	p.remaining = frames
	t.active++
}

// Ramping reports whether any ramp is in progress.
func (t *ParamTable) Ramping() bool {
	return t.active > 0
}

// Tick advances every running ramp by one frame.
func (t *ParamTable) Tick() {
	if t.active == 0 {
		return
	}
	t.Advance(1)
}

// Advance moves every running ramp forward by frames frames.
func (t *ParamTable) Advance(frames int) {
	if t.active == 0 || frames <= 0 {
		return
	}
	for i := range t.params {
		p := &t.params[i]
		if p.remaining == 0 {
			continue
		}
		if frames >= p.remaining {
			p.store(p.target)
			p.remaining = 0
			t.active--
			continue
		}
		p.store(p.load() + p.step*float64(frames))
		p.remaining -= frames
	}
}

// CancelRamps stops every running ramp where it is. Stored values are
// kept. Render goroutine only.
func (t *ParamTable) CancelRamps() {
	for i := range t.params {
		p := &t.params[i]
		p.target = 0
		p.step = 0
		p.remaining = 0
	}
	t.active = 0
}

// Reset restores defaults and cancels ramps.
func (t *ParamTable) Reset() {
	for i := range t.params {
		p := &t.params[i]
		p.remaining = 0
		p.store(p.spec.Default)
	}
	t.active = 0
}
