// Package emit renders the validated AddressSpace into per-peripheral
// source artifacts.
//
// Each Target is one output language; all targets walk the model in
// declaration order, so regenerating from unchanged inputs produces
// byte-identical artifacts. Emission across peripherals is
// embarrassingly parallel and EmitAll fans it out over a worker pool
// while keeping the result order deterministic.
package emit

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/joshuapare/regkit/regmap"
	"github.com/joshuapare/regkit/regmap/config"
)

// Artifact is one generated source file, addressed by its logical path
// relative to the output root.
type Artifact struct {
	Path    string
	Content []byte
}

// Target renders one peripheral into one artifact.
type Target interface {
	// Name is the config spelling of the target.
	Name() string
	Emit(p *regmap.Peripheral) (Artifact, error)
}

// Targets resolves the configured target names to emitters.
func Targets(cfg config.Config) ([]Target, error) {
	var out []Target
	for _, name := range cfg.Targets {
		switch name {
		case "go":
			out = append(out, &GoTarget{PackageName: cfg.Go.Package})
		case "c":
			out = append(out, &CTarget{GuardPrefix: cfg.C.GuardPrefix})
		default:
			return nil, fmt.Errorf("unknown emit target %q", name)
		}
	}
	return out, nil
}

// EmitAll renders every peripheral through every target. Work is
// distributed across workers (peripherals are independent); results
// come back ordered by peripheral declaration order, then target
// order.
func EmitAll(space *regmap.AddressSpace, targets []Target, workers int) ([]Artifact, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(space.Peripherals) {
		workers = len(space.Peripherals)
	}

	type slot struct {
		arts []Artifact
		err  error
	}
	slots := make([]slot, len(space.Peripherals))

	emitOne := func(i int) {
		p := space.Peripherals[i]
		for _, t := range targets {
			a, err := t.Emit(p)
			if err != nil {
				slots[i].err = fmt.Errorf("emit %s for %s: %w", t.Name(), p.Name, err)
				return
			}
			slots[i].arts = append(slots[i].arts, a)
		}
	}

	if workers <= 1 {
		for i := range space.Peripherals {
			emitOne(i)
		}
	} else {
		var wg sync.WaitGroup
		jobs := make(chan int)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					emitOne(i)
				}
			}()
		}
		for i := range space.Peripherals {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	var arts []Artifact
	for _, s := range slots {
		if s.err != nil {
			return nil, s.err
		}
		arts = append(arts, s.arts...)
	}
	return arts, nil
}

// flatReg pairs a register with its path inside the peripheral
// (block names then register name), used by both targets to name
// symbols for registers nested in blocks.
type flatReg struct {
	segs []string
	reg  *regmap.Register
}

// flatten lists every register of a peripheral in declaration order:
// direct registers first, then each block's registers depth-first.
func flatten(p *regmap.Peripheral) []flatReg {
	var out []flatReg
	for _, r := range p.Registers {
		out = append(out, flatReg{segs: []string{r.Name}, reg: r})
	}
	for _, b := range p.Blocks {
		out = append(out, flattenBlock(b, []string{b.Name})...)
	}
	return out
}

func flattenBlock(b *regmap.RegisterBlock, prefix []string) []flatReg {
	var out []flatReg
	for _, r := range b.Registers {
		segs := append(append([]string(nil), prefix...), r.Name)
		out = append(out, flatReg{segs: segs, reg: r})
	}
	for _, nb := range b.Blocks {
		out = append(out, flattenBlock(nb, append(append([]string(nil), prefix...), nb.Name))...)
	}
	return out
}

// goWidthType returns the narrowest Go unsigned type holding width
// bits.
func goWidthType(width int) string {
	switch {
	case width <= 8:
		return "uint8"
	case width <= 16:
		return "uint16"
	case width <= 32:
		return "uint32"
	default:
		return "uint64"
	}
}

// cWidthType returns the stdint type holding width bits.
func cWidthType(width int) string {
	switch {
	case width <= 8:
		return "uint8_t"
	case width <= 16:
		return "uint16_t"
	case width <= 32:
		return "uint32_t"
	default:
		return "uint64_t"
	}
}
