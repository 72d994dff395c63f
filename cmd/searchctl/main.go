// Command searchctl reads documents from stdin, one per line as
// "id|status|ratings|text" with space-separated ratings, and either queries
// them in memory, publishes them to the ingest topic or stores them in the
// SQL source.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/database"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/searchserver"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and SP_* env when empty)")
	query := flag.String("query", "", "query to run against the documents read from stdin")
	status := flag.String("status", "ACTUAL", "status filter for -query")
	publish := flag.Bool("publish", false, "publish documents to the ingest topic")
	store := flag.Bool("store", false, "insert documents into the SQL source")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.SetupWriter(os.Stderr, cfg.Logging.Level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := readEvents(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading documents: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *publish:
		err = publishEvents(ctx, cfg, events)
	case *store:
		err = storeEvents(ctx, cfg, events)
	default:
		err = queryEvents(os.Stdout, os.Stderr, cfg.Search.StopWords, events, *query, *status)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readEvents parses one document per non-empty line. Lines starting with
// '#' are comments. The text is everything after the third '|'.
func readEvents(r io.Reader) ([]ingestion.DocumentEvent, error) {
	var events []ingestion.DocumentEvent
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ev, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	return events, scanner.Err()
}

func parseLine(line string) (ingestion.DocumentEvent, error) {
	parts := strings.SplitN(line, "|", 4)
	if len(parts) != 4 {
		return ingestion.DocumentEvent{}, errors.New(`expected "id|status|ratings|text"`)
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return ingestion.DocumentEvent{}, fmt.Errorf("parsing id: %w", err)
	}
	ratings, err := source.ParseRatings(parts[2])
	if err != nil {
		return ingestion.DocumentEvent{}, err
	}
	return ingestion.DocumentEvent{
		ID:      id,
		Status:  strings.TrimSpace(parts[1]),
		Ratings: ratings,
		Text:    parts[3],
	}, nil
}

// queryEvents indexes events in memory and prints the top documents for
// query. Rejected documents are reported on errw and skipped.
func queryEvents(w, errw io.Writer, stopWords string, events []ingestion.DocumentEvent, query, status string) error {
	filter, err := searchserver.ParseStatus(status)
	if err != nil {
		return err
	}
	server := searchserver.NewFromText(stopWords)
	for _, ev := range events {
		st, err := ev.DocumentStatus()
		if err == nil {
			err = server.AddDocument(ev.ID, ev.Text, st, ev.Ratings)
		}
		if err != nil {
			fmt.Fprintf(errw, "document %d skipped: %v\n", ev.ID, err)
		}
	}
	docs, err := server.FindTopDocumentsByStatus(query, filter)
	if err != nil {
		return fmt.Errorf("query %q: %w", query, err)
	}
	for _, doc := range docs {
		fmt.Fprintln(w, doc)
	}
	return nil
}

func publishEvents(ctx context.Context, cfg *config.Config, events []ingestion.DocumentEvent) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("no kafka brokers configured (set SP_KAFKA_BROKERS)")
	}
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest)
	defer producer.Close()
	if err := publisher.New(producer).Publish(ctx, events...); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "published %d documents to %s\n", len(events), cfg.Kafka.Topics.DocumentIngest)
	return nil
}

func storeEvents(ctx context.Context, cfg *config.Config, events []ingestion.DocumentEvent) error {
	if cfg.Source.Driver == "" {
		return errors.New("no source driver configured (set SP_SOURCE_DRIVER)")
	}
	db, err := database.New(ctx, cfg.Source.Driver, cfg.SourceDSN(), cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	src, err := source.New(db, cfg.Source.Table)
	if err != nil {
		return err
	}
	if err := src.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := src.Save(ctx, events...); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "stored %d documents in %s\n", len(events), cfg.Source.Table)
	return nil
}
