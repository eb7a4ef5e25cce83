package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bioedge/outreach/internal/db"
	"github.com/bioedge/outreach/internal/hunter"
	"github.com/bioedge/outreach/internal/models"
	"github.com/bioedge/outreach/internal/repository"
)

var (
	enrichDryRun      bool
	enrichDelay       time.Duration
	enrichConcurrency int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <domain> [domain...]",
	Short: "Discover and verify contacts for business domains via Hunter.io",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEnrich,
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichDryRun, "dry-run", false, "print discovered contacts without saving")
	enrichCmd.Flags().DurationVar(&enrichDelay, "delay", time.Second, "pause between provider calls per worker")
	enrichCmd.Flags().IntVar(&enrichConcurrency, "concurrency", 3, "parallel domain lookups")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	client, err := hunter.NewClient(hunter.Config{
		APIKey:  cfg.Hunter.APIKey,
		Timeout: cfg.Hunter.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create enrichment client: %w", err)
	}

	var contacts *repository.ContactRepository
	if !enrichDryRun {
		database, err := db.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(); err != nil {
			return err
		}
		contacts = repository.NewContactRepository(database.DB)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	var mu sync.Mutex
	var found, saved int

	for _, domain := range args {
		domain := strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}

		g.Go(func() error {
			result, err := client.SearchDomain(ctx, domain)
			if err != nil {
				// One bad domain should not sink the rest of the batch.
				logger.Error("domain search failed", "domain", domain, "error", err)
				return nil
			}

			var company *models.Company
			if !enrichDryRun && result.Organization != "" {
				if err := contacts.UpsertCompany(&models.Company{Name: result.Organization, Domain: result.Domain}); err != nil {
					logger.Error("failed to save company", "domain", domain, "error", err)
				} else if company, err = contacts.GetCompanyByDomain(result.Domain); err != nil {
					logger.Error("failed to load company", "domain", domain, "error", err)
					company = nil
				}
			}

			for _, email := range result.Emails {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(enrichDelay):
				}

				verification, err := client.VerifyEmail(ctx, email.Value)
				if err != nil {
					logger.Warn("verification failed", "email", email.Value, "error", err)
					continue
				}

				mu.Lock()
				found++
				mu.Unlock()

				if enrichDryRun {
					fmt.Printf("%s\t%s\tconfidence=%d\tverification=%s\n",
						domain, email.Value, email.Confidence, verification.Status)
					continue
				}

				contact := &models.Contact{
					Email:        email.Value,
					FirstName:    email.FirstName,
					LastName:     email.LastName,
					Verification: verification.Status,
					Confidence:   email.Confidence,
				}
				if company != nil {
					contact.CompanyID = company.ID
				}
				if err := contacts.Upsert(contact); err != nil {
					logger.Error("failed to save contact", "email", email.Value, "error", err)
					continue
				}
				mu.Lock()
				saved++
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if enrichDryRun {
		fmt.Printf("Found %d contacts across %d domains (dry run, nothing saved)\n", found, len(args))
	} else {
		fmt.Printf("Saved %d of %d discovered contacts\n", saved, found)
	}
	return nil
}
