package main

import (
	"os"

	"nurseryml/internal/pipeline"
)

func main() {
	os.Exit(pipeline.Main(pipeline.RandomForest(), os.Args[1:], os.Stdout))
}
