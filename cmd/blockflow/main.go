// Package main provides the BlockFlow CLI application
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/blockflow/blockflow/internal/app/dto"
	"github.com/blockflow/blockflow/pkg/blockflow"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("BlockFlow %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
	case "types":
		listTypes()
	case "run":
		if err := runProgram(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("BlockFlow - Visual Block Program Execution")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  blockflow run <program.yaml|program.json> [flags]")
	fmt.Println("  blockflow types")
	fmt.Println("  blockflow version")
}

func listTypes() {
	rt, err := blockflow.NewRuntime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, name := range rt.Registry().Types() {
		def, _ := rt.Registry().Get(name)
		fmt.Printf("%-14s %-8s %s\n", name, def.Category, def.Description)
	}
}

func runProgram(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	maxSteps := fs.Int("max-steps", dto.DefaultMaxSteps, "budget of node-visit attempts")
	timeout := fs.Duration("timeout", dto.DefaultMaxExecutionTime, "time budget for the whole run")
	stepDelay := fs.Duration("step-delay", 0, "delay after each node invocation")
	verbose := fs.Bool("v", false, "stream the run log to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("run expects exactly one program file")
	}

	rt, err := blockflow.NewRuntime()
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, err := rt.LoadProgramFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	opts := blockflow.ExecutionOptions{
		MaxSteps:         *maxSteps,
		MaxExecutionTime: *timeout,
		StepDelay:        *stepDelay,
	}
	if *verbose {
		opts.OnLog = func(msg string) { fmt.Fprintln(os.Stderr, msg) }
	}

	start := time.Now()
	st, runErr := rt.Execute(ctx, p.ID, opts)
	if st != nil {
		out, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	if runErr != nil {
		return runErr
	}
	fmt.Fprintf(os.Stderr, "completed in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}
