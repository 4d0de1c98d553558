package parser

import (
	"runtime"
	"sync"

	"github.com/joshuapare/regkit/regmap/loader"

	"github.com/joshuapare/regkit/regmap/ast"
)

// ParseUnits parses every unit, fanning the work out across workers.
// Units are independent (no shared mutable state), so parallel parsing
// is safe; the result slice preserves the input order regardless of
// which worker finished first, keeping downstream stages deterministic.
//
// All failures are collected: the returned files hold every unit that
// parsed, and errs holds a *SyntaxError (or decode-stage error) per
// unit that did not, in input order.
func ParseUnits(units []loader.Unit, workers int) (files []*ast.File, errs []error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(units) {
		workers = len(units)
	}

	results := make([]*ast.File, len(units))
	errors := make([]error, len(units))

	if workers <= 1 {
		for i, u := range units {
			results[i], errors[i] = Parse(u.ID, u.Origin, u.Text)
		}
	} else {
		var wg sync.WaitGroup
		jobs := make(chan int)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					u := units[i]
					results[i], errors[i] = Parse(u.ID, u.Origin, u.Text)
				}
			}()
		}
		for i := range units {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	for i := range units {
		if errors[i] != nil {
			errs = append(errs, errors[i])
			continue
		}
		files = append(files, results[i])
	}
	return files, errs
}
