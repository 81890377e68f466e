package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/librescoot/padfsm"
)

var (
	debugFlag  = flag.Bool("debug", false, "enable debug logging")
	checkFlag  = flag.Bool("check", false, "warn about unreachable states")
	configFile = flag.String("config", "", "TOML file listing the defenses to generate")
)

func usage() {
	fmt.Fprint(flag.CommandLine.Output(), usageText)
	fmt.Fprintln(flag.CommandLine.Output(), "Flags:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelWarn
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var cfg *Config
	var err error
	if *configFile != "" {
		if flag.NArg() > 0 {
			err = fmt.Errorf("%w: positional arguments given with -config", ErrInvalidArgumentCount)
		} else {
			cfg, err = loadConfig(*configFile)
		}
	} else {
		cfg, err = parseArgs(flag.Args())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, ErrInvalidArgumentCount) || errors.Is(err, ErrInvalidArgumentValue) {
			flag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}

	machines, err := generate(cfg, padfsm.WithLogger(logger))
	if err != nil {
		logger.Error("generate machines", "err", err)
		os.Exit(1)
	}
	if err := emit(os.Stdout, machines, padfsm.StringEncoder{}, *checkFlag, logger); err != nil {
		logger.Error("write machines", "err", err)
		os.Exit(1)
	}
}
