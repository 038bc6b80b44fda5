package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"paper-analytics/config"
	"paper-analytics/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliOptions struct {
	configPath string
}

// handleCLIFlags parses args. handled reports that the process should exit
// with exitCode without starting the backend.
func handleCLIFlags(args []string, out io.Writer) (opts cliOptions, handled bool, exitCode int) {
	flags := flag.NewFlagSet("paper-analytics", flag.ContinueOnError)
	flags.SetOutput(out)

	showVersion := flags.Bool("version", false, "print version information")
	showDiagnose := flags.Bool("diagnose", false, "print runtime diagnostics")
	flags.StringVar(&opts.configPath, "config", "", "path to config.toml")

	if err := flags.Parse(args); err != nil {
		return opts, true, 2
	}
	if opts.configPath != "" {
		config.UseConfigFile(opts.configPath)
	}

	if !*showVersion && !*showDiagnose {
		return opts, false, 0
	}

	if *showVersion {
		printVersion(out)
	}
	if *showDiagnose {
		if *showVersion {
			fmt.Fprintln(out)
		}
		printDiagnose(out)
	}
	return opts, true, 0
}

func printVersion(out io.Writer) {
	fmt.Fprintf(out, "version: %s\ncommit: %s\ndate: %s\n", version, commit, date)
}

func printDiagnose(out io.Writer) {
	fmt.Fprintf(out, "runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "version: %s\n", version)

	if wd, err := os.Getwd(); err == nil {
		fmt.Fprintf(out, "working_dir: %s\n", wd)
	} else {
		fmt.Fprintf(out, "working_dir: <error: %v>\n", err)
	}

	configPath, err := config.ResolveConfigPath()
	if err != nil {
		fmt.Fprintf(out, "path.config: <error: %v>\n", err)
		return
	}
	printPath(out, "config", configPath)
	if dir, err := log.ResolveLogDir(); err == nil {
		printPath(out, "effective_log_dir", dir)
	} else {
		fmt.Fprintf(out, "path.effective_log_dir: <error: %v>\n", err)
	}

	if _, err := os.Stat(configPath); err != nil {
		fmt.Fprintf(out, "config.load: skipped (%v)\n", err)
		return
	}
	if _, err := config.LoadOrCreateConfig(); err != nil {
		fmt.Fprintf(out, "config.load: error (%v)\n", err)
		return
	}
	if err := config.CheckConfig(); err != nil {
		fmt.Fprintf(out, "config.check: invalid (%v)\n", err)
	} else {
		fmt.Fprintf(out, "config.check: ok\n")
	}
	fmt.Fprintf(out, "workflow.status_url: %s\n", config.Conf.Workflow.StatusUrl)
	fmt.Fprintf(out, "workflow.token_set: %t\n", config.Conf.Workflow.ApiToken != "")
}

func printPath(out io.Writer, name, value string) {
	absPath, err := filepath.Abs(value)
	if err != nil {
		fmt.Fprintf(out, "path.%s: %s (abs_error=%v)\n", name, value, err)
		return
	}

	if _, err = os.Stat(absPath); err == nil {
		fmt.Fprintf(out, "path.%s: %s (exists)\n", name, absPath)
		return
	}
	if os.IsNotExist(err) {
		fmt.Fprintf(out, "path.%s: %s (missing)\n", name, absPath)
		return
	}

	fmt.Fprintf(out, "path.%s: %s (error=%v)\n", name, absPath, err)
}
