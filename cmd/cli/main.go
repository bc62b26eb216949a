package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"precio-luz/internal/dates"
	"precio-luz/internal/fetch"
	"precio-luz/internal/metrics"
	"precio-luz/internal/prices"
	"precio-luz/internal/slug"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "fetch":
		cmdFetch(os.Args[2:])
	case "slug":
		cmdSlug(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli fetch --date 2025-12-16|hoy|manana [--base-url URL] [--no-cache] [--json]")
	fmt.Println("  cli slug --parse precio-luz-16-diciembre-2025")
	fmt.Println("  cli slug --date 2025-12-16")
}

func cmdFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	date := fs.String("date", "hoy", "Date to fetch (YYYY-MM-DD, hoy, manana)")
	baseURL := fs.String("base-url", "", "Upstream API base URL (default: public API)")
	noCache := fs.Bool("no-cache", false, "Bypass the in-memory day cache")
	asJSON := fs.Bool("json", false, "Print the raw shaped response as JSON")
	_ = fs.Parse(args)

	ymd := *date
	switch ymd {
	case "hoy", "today":
		ymd = dates.Today()
	case "manana", "tomorrow":
		ymd = dates.Tomorrow()
	case "ayer", "yesterday":
		ymd = dates.Yesterday()
	}
	if !dates.IsValid(ymd) {
		fmt.Fprintf(os.Stderr, "invalid date: %s\n", *date)
		os.Exit(2)
	}

	// Keep fetch-layer logging out of CLI output.
	logrus.SetLevel(logrus.ErrorLevel)

	client := fetch.NewClient(fetch.Config{}, nil)
	svc := prices.NewService(*baseURL, client, nil)

	res := svc.GetPricesForDate(context.Background(), ymd, prices.Options{NoCache: *noCache})
	if !res.OK {
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", res.Err())
		os.Exit(1)
	}

	meta := metrics.Compute(res.Data.Data, res.Data.Date)

	if *asJSON {
		out, _ := json.MarshalIndent(map[string]any{
			"date":  res.Data.Date,
			"count": res.Data.Count,
			"data":  res.Data.Data,
			"meta":  meta,
		}, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("%s (%s)  %d hours  complete=%v\n",
		res.Data.Date, dates.FormatDisplay(res.Data.Date), len(res.Data.Data), res.Completeness.IsComplete)
	for _, it := range res.Data.Data {
		marker := " "
		if meta.CurrentHourIndex != nil && it.HourIndex == res.Data.Data[*meta.CurrentHourIndex].HourIndex {
			marker = ">"
		}
		fmt.Printf(" %s %s  %.5f EUR/kWh\n", marker, dates.FormatHourRange(it.HourIndex), it.PriceEurKwh)
	}
	if meta.Min != nil {
		fmt.Printf("min %.5f  max %.5f  mean %.5f\n", *meta.Min, *meta.Max, *meta.Mean)
	}
	if meta.Best2h != nil {
		start := res.Data.Data[meta.Best2h.StartIndex].HourIndex
		fmt.Printf("best 2h: %s (total %.5f)\n", dates.FormatHourRange(start), meta.Best2h.Total)
	}
	if meta.BestWindow != nil {
		start := res.Data.Data[meta.BestWindow.StartIndex].HourIndex
		fmt.Printf("best window: %dh from %s (mean %.5f)\n",
			meta.BestWindow.Duration, dates.FormatHourRange(start), meta.BestWindow.Mean)
	}
}

func cmdSlug(args []string) {
	fs := flag.NewFlagSet("slug", flag.ExitOnError)
	parse := fs.String("parse", "", "Slug to decode")
	date := fs.String("date", "", "Date to encode (YYYY-MM-DD)")
	_ = fs.Parse(args)

	switch {
	case *parse != "":
		p := slug.Parse(*parse)
		if p == nil {
			fmt.Fprintf(os.Stderr, "not a price-page slug: %s\n", *parse)
			os.Exit(1)
		}
		fmt.Printf("%s  type=%s  (%s)\n", p.DateISO, p.Type, p.DateDisplay)
	case *date != "":
		s := slug.Make(*date)
		if s == "" {
			fmt.Fprintf(os.Stderr, "invalid date: %s\n", *date)
			os.Exit(1)
		}
		fmt.Println(s)
	default:
		fmt.Fprintln(os.Stderr, "one of --parse or --date is required")
		os.Exit(2)
	}
}
