package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kobzarvs/sciedit/internal/app"
	"github.com/kobzarvs/sciedit/internal/logger"
)

func main() {
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: sciedit [-debug] [file]")
		flag.PrintDefaults()
	}
	flag.Parse()
	args := flag.Args()

	if err := logger.Init(*debug); err != nil {
		fmt.Fprintln(os.Stderr, "sciedit: logging disabled:", err)
	}
	defer logger.Close()

	if err := app.New(args).Run(); err != nil {
		logger.Error("exit", "error", err)
		fmt.Fprintln(os.Stderr, "sciedit:", err)
		logger.Close()
		os.Exit(1)
	}
}
