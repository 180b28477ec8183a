// Package main prints a summary of the links and testimonials in the
// configured store.
//
// Usage:
//
//	go run ./cmd/dbinspect
//	go run ./cmd/dbinspect -store-driver badger -data-path /tmp/testimonials
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/gbakws/testimonial-server/internal/config"
	"github.com/gbakws/testimonial-server/internal/di"
	"github.com/gbakws/testimonial-server/internal/di/providers"
	"github.com/gbakws/testimonial-server/internal/domain"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "dbinspect: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Logger.Level = "error"

	injector := di.NewContainer()
	do.OverrideValue(injector, cfg)
	defer injector.Shutdown() //nolint:errcheck // best effort on exit

	st, err := do.Invoke[*providers.StoreHandle](injector)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	links, err := st.ListLinks(ctx)
	if err != nil {
		return fmt.Errorf("list links: %w", err)
	}
	subs, err := st.ListSubmissions(ctx)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}

	fmt.Fprintln(out, "=== Store Inspection ===")
	fmt.Fprintf(out, "Driver: %s\n\n", st.Driver)

	now := time.Now()
	states := map[domain.LinkState]int{}
	for _, l := range links {
		states[l.State(now)]++
	}

	fmt.Fprintln(out, "Links:")
	fmt.Fprintf(out, "  Total:   %d\n", len(links))
	fmt.Fprintf(out, "  Unused:  %d\n", states[domain.LinkStateUnused])
	fmt.Fprintf(out, "  Used:    %d\n", states[domain.LinkStateUsed])
	fmt.Fprintf(out, "  Expired: %d\n", states[domain.LinkStateExpired])
	fmt.Fprintln(out)

	statuses := map[domain.SubmissionStatus]int{}
	for _, s := range subs {
		statuses[s.Status]++
	}

	fmt.Fprintln(out, "Testimonials:")
	fmt.Fprintf(out, "  Total:    %d\n", len(subs))
	fmt.Fprintf(out, "  Pending:  %d\n", statuses[domain.SubmissionPending])
	fmt.Fprintf(out, "  Approved: %d\n", statuses[domain.SubmissionApproved])
	fmt.Fprintf(out, "  Rejected: %d\n", statuses[domain.SubmissionRejected])

	// Flag links that are used but have no matching submission.
	used := 0
	for _, l := range links {
		if l.IsUsed {
			used++
		}
	}
	if used != len(subs) {
		fmt.Fprintf(out, "\nWARNING: %d used links but %d testimonials\n", used, len(subs))
	}
	return nil
}
