package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/internal/catalog"
	"github.com/drdonut/voicecart-backend/internal/evaluation"
	"github.com/drdonut/voicecart-backend/pkg/config"
	"github.com/drdonut/voicecart-backend/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "evaluate"})

	_ = godotenv.Load()

	dataset := flag.String("dataset", "", "path to the evaluation dataset (defaults to VOICECART_EVAL_DATASET)")
	menu := flag.String("menu", "", "only run cases for this menu (small|large)")
	output := flag.String("output", "", "write the full JSON report to this file")
	gate := flag.Float64("gate", -1, "exact-match rate required to pass (defaults to VOICECART_EVAL_ACCURACY_GATE)")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "evaluate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	path := *dataset
	if path == "" {
		path = cfg.Eval.DatasetPath
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "no dataset: pass -dataset or set VOICECART_EVAL_DATASET")
		os.Exit(2)
	}

	ds, err := evaluation.LoadDataset(path)
	requireResource(ctx, logg, "dataset", err)

	cases := ds.Cases
	if *menu != "" {
		cases = ds.FilterByMenu(*menu)
		if len(cases) == 0 {
			fmt.Fprintf(os.Stderr, "no cases for menu %q in %s\n", *menu, path)
			os.Exit(2)
		}
	}

	runner, err := evaluation.NewRunner(catalog.BuiltInMenus(), evaluation.Options{
		Parallelism:   cfg.Eval.Parallelism,
		MinConfidence: cfg.Resolver.MinConfidence,
		ModifyBinding: cart.ModifyBinding(cfg.Resolver.ModifyBinding),
	}, logg)
	requireResource(ctx, logg, "runner", err)

	report, err := runner.Run(ctx, cases)
	requireResource(ctx, logg, "evaluation run", err)

	report.WriteSummary(os.Stdout)

	if *output != "" {
		f, err := os.Create(*output)
		requireResource(ctx, logg, "report file", err)
		if err := report.WriteJSON(f); err != nil {
			f.Close()
			requireResource(ctx, logg, "report encode", err)
		}
		requireResource(ctx, logg, "report close", f.Close())
	}

	floor := cfg.Eval.AccuracyGate
	if *gate >= 0 {
		floor = *gate
	}
	if !report.Passed(floor) {
		fmt.Fprintf(os.Stderr, "accuracy below gate %.3f\n", floor)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
