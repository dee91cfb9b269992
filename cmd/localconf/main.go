// Package main is the entry point for the localconf reconciler.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/dshills/localconf/internal/config"
	"github.com/dshills/localconf/internal/config/answers"
	"github.com/dshills/localconf/internal/config/describe"
	"github.com/dshills/localconf/internal/config/source"
	"github.com/dshills/localconf/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("localconf %s (%s)\n", version, commit)
		return 0
	}

	log := logging.Default()
	if opts.quiet {
		log.SetLevel(logging.LevelError)
	}

	if source.EnvSourced() {
		// Environment-sourced deployments have nothing to reconcile or
		// persist; configuration is rebuilt from the environment on read.
		rec := config.New(opts.settingsPath, config.WithLogger(log))
		if _, err := rec.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		log.Infof("configuration sourced from environment; settings file untouched")
		return 0
	}

	recOpts := []config.Option{config.WithLogger(log)}

	if opts.answersPath != "" {
		src, err := answers.LoadFile(opts.answersPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		recOpts = append(recOpts, config.WithAnswers(src))
	}

	if opts.catalogPath != "" {
		desc, err := describe.LoadCatalog(opts.catalogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		recOpts = append(recOpts, config.WithDescriptions(desc))
	}

	rec := config.New(opts.settingsPath, recOpts...)

	res, err := rec.Update(config.UpdateOptions{AcceptDefaults: opts.acceptDefaults})
	if err != nil {
		var review *config.ReviewRequiredError
		if errors.As(err, &review) {
			printReviewWarning(opts.settingsPath, review.NewVars)
			return 2
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !opts.quiet {
		report(opts.settingsPath, res)
	}
	return 0
}

// printReviewWarning tells the user to inspect freshly defaulted variables
// before the setup flow continues.
func printReviewWarning(path string, newVars []string) {
	warn := color.New(color.FgYellow, color.Bold)
	warn.Fprintf(os.Stderr, "New configuration variables were added to %s:\n", path)
	for _, name := range newVars {
		fmt.Fprintf(os.Stderr, "    %s\n", name)
	}
	warn.Fprintln(os.Stderr, "Review their values, then re-run to continue.")
}

// report prints a short summary of an accepted update.
func report(path string, res *config.Result) {
	if len(res.NewVars) > 0 {
		fmt.Printf("Added %d new variable(s) to %s with default values.\n",
			len(res.NewVars), path)
	}
	if len(res.OldVars) > 0 {
		fmt.Printf("Moved %d obsolete variable(s) to %s.\n",
			len(res.OldVars), path+".old")
	}
	if len(res.NewVars) == 0 && len(res.OldVars) == 0 {
		fmt.Printf("%s is up to date.\n", path)
	}
}

type options struct {
	settingsPath   string
	answersPath    string
	catalogPath    string
	acceptDefaults bool
	quiet          bool
	showVersion    bool
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.settingsPath, "file", "localconfig", "Path to the settings file")
	flag.StringVar(&opts.settingsPath, "f", "localconfig", "Path to the settings file (shorthand)")
	flag.StringVar(&opts.answersPath, "answers", "", "Path to a TOML answer file for unattended setup")
	flag.StringVar(&opts.catalogPath, "descriptions", "", "Path to a YAML description catalog")
	flag.BoolVar(&opts.acceptDefaults, "accept-defaults", false, "Accept default values for new variables without stopping for review")
	flag.BoolVar(&opts.quiet, "quiet", false, "Suppress informational output")
	flag.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	flag.Parse()
	return opts
}
