// mdlc compiles COLLADA scene files into binary MDL model artifacts.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/mdlc/internal/compiler"
	"github.com/Faultbox/mdlc/internal/config"
	"github.com/Faultbox/mdlc/internal/logger"
	"github.com/Faultbox/mdlc/pkg/mdl"
	"github.com/Faultbox/mdlc/pkg/mesh"
)

func main() {
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "compile", "c":
		cmdCompile(cfg, args)
	case "inspect", "i":
		cmdInspect(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mdlc - COLLADA to MDL model compiler

Usage:
  mdlc [options] <command> [args]

Commands:
  compile [source_dir] [output_dir]  Compile .dae files into .mdl artifacts
  inspect <file.mdl> [...]           Show artifact header and geometry info

Options:
  -config path    Explicit config file
  -workers N      Concurrent file workers (0 = NumCPU)
  -debug          Enable debug logging
  -logfile path   Write logs to file

Examples:
  mdlc compile assets/models build/models
  mdlc -workers 4 compile
  mdlc inspect build/models/terrain.mdl`)
}

func cmdCompile(cfg *config.Config, args []string) {
	opts := compiler.Options{
		SourceDir: cfg.Compile.SourceDir,
		OutputDir: cfg.Compile.OutputDir,
		Workers:   cfg.Compile.Workers,
	}
	if len(args) > 0 {
		opts.SourceDir = args[0]
	}
	if len(args) > 1 {
		opts.OutputDir = args[1]
	}

	report, err := compiler.Compile(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, a := range report.Artifacts {
		fmt.Printf("%s: %s (%d vertices, %d triangles)\n",
			a.Source, a.Path, a.Vertices, a.Indices/3)
	}
	if report.Failed() {
		fmt.Fprintf(os.Stderr, "\n%d error(s):\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}
		os.Exit(1)
	}
}

func cmdInspect(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdlc inspect <file.mdl> [...]")
		os.Exit(1)
	}

	failed := false
	for _, path := range args {
		view, err := mdl.DecodeFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}

		m := mesh.Mesh{Vertices: view.Vertices(), Indices: view.Indices()}
		min, max := m.Bounds()

		fmt.Printf("Artifact:  %s\n", path)
		fmt.Printf("Version:   %d\n", mdl.Version)
		fmt.Printf("Vertices:  %d\n", view.VertexCount())
		fmt.Printf("Triangles: %d\n", view.IndexCount()/3)
		fmt.Printf("Bounds:    min (%g, %g, %g) max (%g, %g, %g)\n",
			min[0], min[1], min[2], max[0], max[1], max[2])
	}
	if failed {
		os.Exit(1)
	}
}
