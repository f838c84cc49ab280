package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"nurseryml/internal/config"
	"nurseryml/internal/data"
	"nurseryml/internal/features"
	"nurseryml/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfgPath := flag.String("config", "", "Config file (.toml or .yaml) listing the conversions")
	regen := flag.Bool("regen", false, "Synthesize the nursery CSV inputs before converting")
	in := flag.String("in", "", "Convert this CSV instead of the configured jobs")
	out := flag.String("out", "", "ARFF output for -in (default: same name, .arff)")
	keep := flag.String("keep", "", "Comma-separated attributes to keep for -in")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	jobs := cfg.Conversions
	if *in != "" {
		job := config.Conversion{Input: *in, Output: *out, Nominal: []string{"last"}}
		if job.Output == "" {
			job.Output = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".arff"
		}
		if *keep != "" {
			job.Keep = strings.Split(*keep, ",")
		}
		jobs = []config.Conversion{job}
	}

	for _, job := range jobs {
		n, err := run(job, *regen)
		if err != nil {
			logger.Fatal("conversion failed", zap.String("csv", job.Input), zap.Error(err))
		}
		logger.Info("converted", zap.String("csv", job.Input), zap.String("arff", job.Output), zap.Int("instances", n))
	}
}

// run converts one job, synthesizing its input first when regen is set.
func run(job config.Conversion, regen bool) (int, error) {
	if regen {
		if err := data.GenerateNursery(job.Input, job.Generate); err != nil {
			return 0, fmt.Errorf("generate %s: %w", job.Input, err)
		}
	}
	return convert(job)
}

// convert loads job.Input, applies the attribute selection and writes ARFF.
func convert(job config.Conversion) (int, error) {
	inst, err := data.LoadCSV(job.Input, data.CSVOptions{Nominal: job.Nominal, MissingValue: "?"})
	if err != nil {
		return 0, err
	}
	if len(job.Keep) > 0 {
		if err := inst.SetClassIndex(-1); err != nil {
			return 0, err
		}
		if inst, err = features.Select(inst, job.Keep); err != nil {
			return 0, err
		}
	}
	if err := data.SaveARFF(job.Output, inst); err != nil {
		return 0, err
	}
	return inst.NumInstances(), nil
}
