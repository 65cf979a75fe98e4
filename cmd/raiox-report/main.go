// Command raiox-report prints the dashboard aggregations to stdout. It
// reads the same snapshot backends as the server, so it works against a
// live data directory without the HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"raiox/internal/backend"
	"raiox/internal/config"
	"raiox/internal/core"
	"raiox/internal/kv"
	"raiox/internal/log"
	"raiox/internal/report"
	"raiox/internal/store"
)

func main() {
	_ = godotenv.Load()

	query := flag.String("q", "", "filter records by free-text query")
	tab := flag.String("tab", "", "filter records by city tab (svp, chui)")
	flag.Parse()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentReport)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()

	var blob kv.Store
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateStore(backend.Config{
		Type:         backend.Type(cfg.SnapshotBackend),
		DataDir:      cfg.DataDir,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Warn("Snapshot backend unavailable, reporting on seed data",
			log.FieldError, err, "backend", cfg.SnapshotBackend)
	} else {
		blob = result.Store
		if result.Cleanup != nil {
			defer func() { _ = result.Cleanup() }()
		}
	}

	st := store.New(blob, store.WithKey(cfg.SnapshotKey))
	st.Load(ctx)

	records := report.Filter(st.Snapshot(), *query, *tab)
	printReport(os.Stdout, records)
}

func printReport(out *os.File, records []core.Record) {
	stats := report.Stats(records)
	fmt.Fprintf(out, "Exames: %d  Pronto Socorro: %d  SUS: %d  Internados: %d  Santa Vitória: %d  Chuí: %d\n\n",
		stats.Total, stats.Emergency, stats.SUS, stats.Inpatient, stats.SantaVitoria, stats.Chui)

	printChart(out, "Planos de saúde", report.ByLocation(records))
	printChart(out, "Exames mais frequentes", report.ExamTypes(records, 10))
	printChart(out, "Exames por técnico", report.ByTechnician(records))
	printChart(out, "Regiões do corpo", report.BodyParts(records))
	printChart(out, "Cidades", report.ByCity(records))

	breakdown := report.CityExams(records, 5)
	fmt.Fprintln(out, "Cidade × exame")
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "cidade")
	for _, et := range breakdown.ExamTypes {
		fmt.Fprintf(w, "\t%s", et)
	}
	fmt.Fprintln(w)
	for _, row := range breakdown.Rows {
		fmt.Fprint(w, row.City)
		for _, c := range row.Counts {
			fmt.Fprintf(w, "\t%d", c)
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Últimos 6 meses")
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "mês\ttotal\tPS\tSUS\tparticular")
	for _, b := range report.MonthlyTrend(time.Now(), records) {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", b.Month, b.Total, b.Emergency, b.SUS, b.Private)
	}
	_ = w.Flush()
}

func printChart(out *os.File, title string, pairs []core.LabelCount) {
	fmt.Fprintln(out, title)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range pairs {
		fmt.Fprintf(w, "%s\t%d\n", p.Label, p.Count)
	}
	_ = w.Flush()
	fmt.Fprintln(out)
}
