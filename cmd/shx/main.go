// Command shx runs a command line through the shx interpreter and exits
// with the resulting code.
//
//	shx -c 'echo hi | cat'
//	shx --timeout 5s -- ./build.sh --release
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/go-shx/shx"
	"github.com/go-shx/shx/errors"
	"github.com/go-shx/shx/internal/logger"
)

const usage = `Usage: shx [flags] -c <source>
       shx [flags] -- <argv...>

Runs the given command line with shx's cross-platform interpretation:
builtins, pipelines, redirects and environment scoping behave identically
on every OS. The exit code of the command becomes shx's exit code.

Flags:
`

var (
	source   string
	timeout  string
	envFile  string
	print    bool
	verbose  bool
	noColor  bool
	showHelp bool
)

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.StringVarP(&source, "command", "c", "", "command source to run")
	pflag.StringVarP(&timeout, "timeout", "t", "", "bound execution time, e.g. 500ms, 1.5s, 2m")
	pflag.StringVar(&envFile, "env-file", "", "load environment overrides from a dotenv file")
	pflag.BoolVarP(&print, "print", "p", false, "echo the command line before running it")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	pflag.BoolVar(&noColor, "no-color", false, "disable colored output")
	pflag.BoolVarP(&showHelp, "help", "h", false, "show this help")
	pflag.Parse()

	if showHelp {
		pflag.Usage()
		return errors.CodeOk
	}

	if source == "" {
		source = strings.Join(pflag.Args(), " ")
	}
	if strings.TrimSpace(source) == "" {
		pflag.Usage()
		return errors.CodeUsage
	}

	log := logger.New()
	log.Verbose = verbose
	if noColor {
		log.Color = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := shx.New()
	s.SetLogger(log)

	b := s.Command(source).NoThrow()
	if timeout != "" {
		b = b.Timeout(timeout)
	}
	if print {
		b = b.PrintCommand()
	}
	if envFile != "" {
		b = b.EnvFile(envFile)
	}

	result, err := b.Run(ctx)
	if err != nil {
		log.Errf(logger.Red, "%v", err)
		var coded errors.ShxError
		if errors.As(err, &coded) {
			return coded.Code()
		}
		return 1
	}
	if result.TimedOut {
		log.VerboseErrf(logger.Yellow, "shx: execution timed out")
	}
	return result.Code
}
