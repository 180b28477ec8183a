// Package main provides a tool to seed the configured store with test links
// and testimonials.
//
// It reads the same configuration as the server, issues links, and redeems
// a share of them so the moderation endpoints have data to work with.
//
// Usage:
//
//	go run ./cmd/seed -links 10 -redeem 4
//	go run ./cmd/seed -links 3 -- -store-driver badger -data-path /tmp/testimonials
//	STORE_DRIVER=badger DATA_PATH=/tmp/testimonials go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/samber/do/v2"

	"github.com/gbakws/testimonial-server/internal/config"
	"github.com/gbakws/testimonial-server/internal/di"
	"github.com/gbakws/testimonial-server/internal/di/providers"
	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/service"
)

var (
	names = []string{"Asha Devi", "Bilal Khan", "Chen Wei", "Dana Okafor", "Elif Yilmaz", "Farah Haddad"}
	roles = []string{"Volunteer", "Donor", "Board Member", "Program Lead", ""}
	notes = []string{
		"The team made every step easy to follow.",
		"I saw the impact first hand and would do it again.",
		"Great cause, and even better people behind it.",
	}
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

// run seeds the store; main owns the exit code.
func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	links := fs.Int("links", 5, "Number of links to issue")
	redeem := fs.Int("redeem", 2, "Number of issued links to redeem")
	approve := fs.Bool("approve", true, "Approve every other seeded testimonial")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Everything after the seed flags (or after "--") is handed to the server config loader.
	cfg, err := config.Load(fs.Args())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	injector := di.NewContainer()
	do.OverrideValue(injector, cfg)
	defer injector.Shutdown() //nolint:errcheck // best effort on exit

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	issuance, err := do.Invoke[*service.IssuanceService](injector)
	if err != nil {
		return err
	}
	redemption, err := do.Invoke[*service.RedemptionService](injector)
	if err != nil {
		return err
	}
	testimonials, err := do.Invoke[*service.TestimonialService](injector)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(int64(os.Getpid()))) //#nosec G404 -- test data only

	fmt.Fprintf(out, "Seeding %s store\n\n", cfg.Store.Driver)

	var issued []*service.IssuedLink
	for range *links {
		link, err := issuance.Issue(ctx, service.IssueLinkRequest{
			Name:        names[rng.Intn(len(names))],
			Designation: roles[rng.Intn(len(roles))],
		})
		if err != nil {
			return fmt.Errorf("issue link: %w", err)
		}
		issued = append(issued, link)
		fmt.Fprintf(out, "  link  %s\n", link.URL)
	}

	for i, link := range issued {
		if i >= *redeem {
			break
		}
		sub, err := redemption.Redeem(ctx, service.SubmitTestimonialRequest{
			Token:       link.Token,
			Testimonial: notes[rng.Intn(len(notes))],
		})
		if err != nil {
			return fmt.Errorf("redeem link: %w", err)
		}

		status := domain.SubmissionPending
		if *approve && i%2 == 0 {
			sub, err = testimonials.UpdateStatus(ctx, sub.ID, service.UpdateStatusRequest{Status: string(domain.SubmissionApproved)})
			if err != nil {
				return fmt.Errorf("approve testimonial: %w", err)
			}
			status = sub.Status
		}
		fmt.Fprintf(out, "  testimonial  %s  %s  (%s)\n", sub.ID, sub.Name, status)
	}

	fmt.Fprintf(out, "\nIssued %d links, redeemed %d\n", len(issued), min(*redeem, len(issued)))
	return nil
}
