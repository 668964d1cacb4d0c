package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/osforge/acpica-go/pipeline"
)

func main() {
	var (
		configPath  = flag.String("config", "acpigen.toml", "Pipeline configuration file")
		list        = flag.Bool("list", false, "Print the generated declaration inventory and exit")
		dryRun      = flag.Bool("dry-run", false, "Stage, patch and parse; skip compilation and the output rewrite")
		debug       = flag.Bool("debug", false, "Verbose logging plus the vendor's diagnostic output define")
		interactive = flag.Bool("i", false, "Interactive binding browser")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *debug {
		cfg.DebugOutput = true
		logger, logErr := zap.NewDevelopment()
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", logErr)
			os.Exit(1)
		}
		defer logger.Sync()
		pipeline.SetLogger(logger)
	}

	if *interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *list, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, falling back to the shipped
// defaults when the default path does not exist.
func loadConfig(path string) (pipeline.Config, error) {
	cfg, err := pipeline.Load(path)
	if err != nil && path == "acpigen.toml" && errors.Is(err, fs.ErrNotExist) {
		return pipeline.Default(), nil
	}
	return cfg, err
}

func run(cfg pipeline.Config, listOnly, dryRun bool) error {
	opts := pipeline.Options{}
	if listOnly || dryRun {
		opts.SkipCompile = true
		opts.SkipPublish = true
	}

	res, err := pipeline.Run(context.Background(), cfg, opts)
	if err != nil {
		return err
	}

	if listOnly {
		for _, d := range res.Set.Inventory() {
			fmt.Printf("%-8s %-32s %s\n", d.Kind, d.Name, d.Detail)
		}
		return nil
	}

	fmt.Printf("Declarations: %d\n", res.Set.Len())
	if dryRun {
		fmt.Println("Dry run: compilation and output rewrite skipped.")
		return nil
	}
	fmt.Printf("Archive: %s\n", res.Archive)
	fmt.Printf("Bindings: %s\n", res.Output)
	return nil
}
