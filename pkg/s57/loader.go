package s57

import (
	"fmt"
	"io"
	"runtime"
	"sync"
)

// LoadOptions controls CellSet's parallel loading behavior and error
// handling, independent of ParseOptions/TraversalOptions which control how
// each individual cell is parsed.
type LoadOptions struct {
	// Parallel enables concurrent cell loading. When true, cells load on
	// multiple worker goroutines.
	Parallel bool

	// Workers caps the number of loader goroutines. 0 defaults to
	// runtime.NumCPU(). Only used when Parallel is true.
	Workers int

	// SkipErrors continues loading past a failed cell, collecting its error,
	// instead of aborting the whole batch on the first failure.
	SkipErrors bool

	// Progress, if set, is called after each cell finishes loading
	// (successfully or not) with the running count and the total.
	Progress func(loaded, total int)

	// ErrorLog, if set, receives one line per failed cell as it happens.
	ErrorLog io.Writer
}

// DefaultLoadOptions returns parallel loading with sensible defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
	}
}

// LoadCellsParallel loads multiple ENC cells concurrently using a bounded
// worker pool, each worker calling LoadCell with the same parser, opts, and
// traversal settings.
//
// Example:
//
//	parser := s57.NewParser()
//	cellSet, errs := s57.LoadCellsParallel(paths, parser,
//	    s57.DefaultParseOptions(), s57.DefaultTraversalOptions(),
//	    s57.LoadOptions{Parallel: true, Workers: 8, SkipErrors: true})
func LoadCellsParallel(paths []string, parser Parser, parseOpts ParseOptions, traversal TraversalOptions, opts LoadOptions) (*CellSet, []error) {
	if len(paths) == 0 {
		return &CellSet{Cells: []*Cell{}}, nil
	}

	if !opts.Parallel {
		return loadCellsSerial(paths, parser, parseOpts, traversal, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type loadResult struct {
		index int
		cell  *Cell
		err   error
	}

	jobs := make(chan int, len(paths))
	results := make(chan loadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				cell, err := LoadCell(paths[index], parser, parseOpts, traversal)
				results <- loadResult{index: index, cell: cell, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	cellMap := make(map[int]*Cell)
	var errs []error
	loaded := 0

	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(paths))
		}

		if result.err != nil {
			err := fmt.Errorf("%s: %w", paths[result.index], result.err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "error loading cell: %v\n", err)
			}
			if opts.SkipErrors {
				errs = append(errs, err)
				continue
			}
			return nil, []error{err}
		}

		cellMap[result.index] = result.cell
	}

	cells := make([]*Cell, 0, len(cellMap))
	for i := 0; i < len(paths); i++ {
		if cell, ok := cellMap[i]; ok {
			cells = append(cells, cell)
		}
	}

	return &CellSet{Cells: cells}, errs
}

func loadCellsSerial(paths []string, parser Parser, parseOpts ParseOptions, traversal TraversalOptions, opts LoadOptions) (*CellSet, []error) {
	cells := make([]*Cell, 0, len(paths))
	var errs []error

	for i, path := range paths {
		cell, err := LoadCell(path, parser, parseOpts, traversal)
		if opts.Progress != nil {
			opts.Progress(i+1, len(paths))
		}
		if err != nil {
			err := fmt.Errorf("%s: %w", path, err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "error loading cell: %v\n", err)
			}
			if opts.SkipErrors {
				errs = append(errs, err)
				continue
			}
			return nil, []error{err}
		}

		cells = append(cells, cell)
	}

	return &CellSet{Cells: cells}, errs
}
