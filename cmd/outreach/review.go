package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bioedge/outreach/internal/anthropic"
	"github.com/bioedge/outreach/internal/db"
	"github.com/bioedge/outreach/internal/generator"
	"github.com/bioedge/outreach/internal/metrics"
	"github.com/bioedge/outreach/internal/review"
	"github.com/bioedge/outreach/internal/repository"
)

var reviewCmd = &cobra.Command{
	Use:   "review <campaign-id>",
	Short: "Review generated drafts interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	campaignID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		return err
	}

	campaigns := repository.NewCampaignRepository(database.DB)
	recipients := repository.NewRecipientRepository(database.DB)
	senders := repository.NewSenderProfileRepository(database.DB)

	// Regeneration from inside the queue needs a live client; everything
	// else works without one.
	var llm generator.TextGenerator
	if client, err := anthropic.NewClient(anthropic.Config{
		APIKey:      cfg.Anthropic.APIKey,
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		Temperature: cfg.Anthropic.Temperature,
		Timeout:     cfg.Anthropic.Timeout,
	}); err == nil {
		llm = client
	}
	gen := generator.New(llm, campaigns, recipients, senders, metrics.New(), logger, cfg.Anthropic.CallDelay)
	gen.SetEvents(promptEvents(cfg))

	store := review.NewRepositoryStore(recipients, gen)
	queue := review.New(store, campaignID, cfg.Review.SaveDebounce, logger)
	defer queue.Close()

	if err := queue.Load(); err != nil {
		return err
	}
	if queue.Len() == 0 {
		fmt.Println("Nothing to review.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if queue.Len() == 0 {
			fmt.Println("Queue empty. Done.")
			return queue.Flush()
		}
		printCurrent(queue)
		fmt.Print("[n]ext [p]rev [s]ubject [b]ody [a]pprove [d]elete [r]egenerate [A]pprove-all [q]uit > ")

		if !scanner.Scan() {
			return queue.Flush()
		}
		input := strings.TrimSpace(scanner.Text())

		var actionErr error
		switch input {
		case "n":
			actionErr = queue.Next()
		case "p":
			actionErr = queue.Prev()
		case "s":
			actionErr = editField(scanner, queue, "subject")
		case "b":
			actionErr = editField(scanner, queue, "body")
		case "a":
			actionErr = queue.Approve()
		case "d":
			actionErr = queue.Delete()
		case "r":
			fmt.Println("Regenerating...")
			actionErr = queue.Regenerate(ctx)
		case "A":
			var n int
			n, actionErr = queue.ApproveAll()
			if actionErr == nil {
				fmt.Printf("Approved %d drafts.\n", n)
			}
		case "q":
			return queue.Flush()
		default:
			fmt.Println("Unknown command.")
		}
		if actionErr != nil {
			fmt.Printf("Error: %v\n", actionErr)
		}
	}
}

func printCurrent(q *review.Queue) {
	rec, ok := q.Current()
	if !ok {
		return
	}
	fmt.Printf("\n[%d/%d] %s", q.Cursor()+1, q.Len(), rec.Email)
	if rec.PracticeName != "" {
		fmt.Printf(" (%s)", rec.PracticeName)
	}
	fmt.Printf("\nSubject: %s\n\n%s\n\n", rec.Subject, rec.Body)
}

func editField(scanner *bufio.Scanner, q *review.Queue, field string) error {
	rec, ok := q.Current()
	if !ok {
		return nil
	}

	fmt.Printf("New %s (empty keeps current): ", field)
	if !scanner.Scan() {
		return nil
	}
	value := scanner.Text()
	if strings.TrimSpace(value) == "" {
		return nil
	}

	if field == "subject" {
		q.Edit(value, rec.Body)
	} else {
		q.Edit(rec.Subject, value)
	}
	return nil
}
