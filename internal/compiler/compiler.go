// Package compiler orchestrates the model pipeline over a directory of
// COLLADA scene files: extract, merge, encode, write.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/Faultbox/mdlc/internal/logger"
	"github.com/Faultbox/mdlc/pkg/collada"
	"github.com/Faultbox/mdlc/pkg/mdl"
	"github.com/Faultbox/mdlc/pkg/mesh"
)

// SourceExtension is the scene file extension recognised in the source
// directory. A sibling file with ConfigExtension supplies merge specs.
const (
	SourceExtension = ".dae"
	ConfigExtension = ".toml"
)

// Options configures a compilation run.
type Options struct {
	SourceDir string
	OutputDir string
	Workers   int // 0 = one worker per CPU
}

// Artifact records one written output file.
type Artifact struct {
	Source   string // source scene file
	Geometry string // geometry name
	Path     string // written .mdl path
	Vertices int
	Indices  int
}

// FileError is a failure scoped to one source file (or one geometry within
// it); the rest of the batch continues.
type FileError struct {
	Source string
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Report aggregates the outcome of a compilation run.
type Report struct {
	Artifacts []Artifact
	Errors    []*FileError
}

// Failed reports whether any file or geometry failed.
func (r *Report) Failed() bool { return len(r.Errors) > 0 }

// Compile processes every scene file in the source directory and writes one
// MDL artifact per resulting geometry into the output directory. Files are
// compiled concurrently; failures are collected into the report instead of
// aborting the batch.
func Compile(opts Options) (*Report, error) {
	entries, err := os.ReadDir(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), SourceExtension) {
			continue
		}
		sources = append(sources, filepath.Join(opts.SourceDir, entry.Name()))
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(sources) && len(sources) > 0 {
		workers = len(sources)
	}

	report := &Report{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				artifacts, errs := compileFile(src, opts.OutputDir)
				mu.Lock()
				report.Artifacts = append(report.Artifacts, artifacts...)
				report.Errors = append(report.Errors, errs...)
				mu.Unlock()
			}
		}()
	}
	for _, src := range sources {
		jobs <- src
	}
	close(jobs)
	wg.Wait()

	// Workers finish in arbitrary order; sort for stable reporting.
	sort.Slice(report.Artifacts, func(i, j int) bool {
		return report.Artifacts[i].Path < report.Artifacts[j].Path
	})
	sort.Slice(report.Errors, func(i, j int) bool {
		return report.Errors[i].Source < report.Errors[j].Source
	})

	logger.Sugar.Infow("compilation finished",
		"sources", len(sources),
		"artifacts", len(report.Artifacts),
		"errors", len(report.Errors))

	return report, nil
}

// compileFile runs the full pipeline for one scene file: parse, extract,
// resolve merges from the optional sibling config, encode and write.
func compileFile(src, outputDir string) ([]Artifact, []*FileError) {
	name := filepath.Base(src)

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, []*FileError{{Source: name, Err: err}}
	}

	doc, err := collada.Parse(data)
	if err != nil {
		return nil, []*FileError{{Source: name, Err: err}}
	}

	var errs []*FileError
	meshes, extractErrs := collada.ExtractMeshes(doc)
	for _, e := range extractErrs {
		errs = append(errs, &FileError{Source: name, Err: e})
	}

	specs, err := loadMergeSpecs(src)
	if err != nil {
		return nil, append(errs, &FileError{Source: name, Err: err})
	}

	meshes, err = mesh.Resolve(meshes, specs)
	if err != nil {
		// A merge spec naming a missing geometry aborts this file only.
		return nil, append(errs, &FileError{Source: name, Err: err})
	}

	var artifacts []Artifact
	for _, m := range meshes {
		outPath := filepath.Join(outputDir, m.Name+mdl.Extension)
		if err := mdl.EncodeFile(m, outPath); err != nil {
			errs = append(errs, &FileError{Source: name, Err: err})
			continue
		}
		logger.Sugar.Debugw("wrote artifact",
			"source", name,
			"geometry", m.Name,
			"vertices", len(m.Vertices),
			"triangles", m.TriangleCount())
		artifacts = append(artifacts, Artifact{
			Source:   name,
			Geometry: m.Name,
			Path:     outPath,
			Vertices: len(m.Vertices),
			Indices:  len(m.Indices),
		})
	}
	return artifacts, errs
}

// loadMergeSpecs reads the optional merge config sitting next to a scene
// file. A missing config means no merging.
func loadMergeSpecs(src string) ([]mesh.MergeSpec, error) {
	cfgPath := strings.TrimSuffix(src, filepath.Ext(src)) + ConfigExtension
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return nil, nil
	}
	cfg, err := mesh.LoadMergeConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return cfg.Merges, nil
}
