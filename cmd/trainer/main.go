package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"nurseryml/internal/pipeline"
)

func main() {
	fs := flag.NewFlagSet("trainer", flag.ContinueOnError)
	algo := fs.String("algo", "dt", "Algorithm: dt|nb|rf|bagging")
	flags := pipeline.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	d, err := pipeline.ByAlgo(*algo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	os.Exit(pipeline.Execute(d, flags, os.Stdout))
}
