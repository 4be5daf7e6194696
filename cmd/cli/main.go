package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/happyloop/vendbot/internal/config"
	"github.com/happyloop/vendbot/internal/domain"
	"github.com/happyloop/vendbot/internal/intent"
	"github.com/happyloop/vendbot/internal/logger"
	"github.com/happyloop/vendbot/internal/store"
	"github.com/happyloop/vendbot/internal/vending"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(log)
	case "products":
		runProducts(log)
	case "sales":
		runSales(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Vendbot CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  chat      Talk to the vending machine interactively")
	fmt.Println("  products  List the current catalog with stock levels")
	fmt.Println("  sales     Show the daily sales summary and top sellers")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func openMachine(ctx context.Context, dsn string, log zerolog.Logger) (*vending.Machine, store.ProductRepository, store.TransactionRepository) {
	cfg := config.Load()
	if dsn != "" {
		cfg.DatabaseDSN = dsn
	}

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", cfg.DatabaseDSN).Msg("Failed to open datastore")
	}

	products := store.NewGormProductRepository(db)
	ledger := store.NewGormTransactionRepository(db)
	committer := store.NewGormPurchaseCommitter(db)

	var extractor vending.Extractor
	if cfg.GeminiAPIKey != "" {
		gem, err := intent.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, products, vending.DefaultAliases, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini extractor")
		}
		extractor = gem
	} else {
		var names []string
		if list, err := products.ListAvailable(ctx); err == nil {
			for _, p := range list {
				names = append(names, p.Name)
			}
		}
		extractor = intent.NewRules(names, vending.DefaultAliases)
	}

	resolver := vending.NewResolver(products, nil)
	machine := vending.NewMachine(extractor, resolver, products, ledger, committer, log)
	return machine, products, ledger
}

func runChat(log zerolog.Logger) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	dsn := fs.String("dsn", "", "SQLite DSN (overrides DATABASE_DSN env)")
	fs.Parse(os.Args[2:])

	ctx := context.Background()
	machine, _, _ := openMachine(ctx, *dsn, log)

	fmt.Println("Vending machine ready. Type a message, or 'quit' to leave.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		reply := machine.Handle(ctx, line)
		fmt.Println(reply.Message)
		if reply.TransactionID != nil {
			fmt.Printf("(transaction %s, total $%s)\n", *reply.TransactionID, reply.TotalPrice.StringFixed(2))
		}
	}
}

func runProducts(log zerolog.Logger) {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	dsn := fs.String("dsn", "", "SQLite DSN (overrides DATABASE_DSN env)")
	all := fs.Bool("all", false, "Include inactive and out-of-stock products")
	fs.Parse(os.Args[2:])

	ctx := context.Background()
	_, products, _ := openMachine(ctx, *dsn, log)

	var rows []domain.Product
	var err error
	if *all {
		rows, err = products.ListAll(ctx, 0, 1000)
	} else {
		rows, err = products.ListAvailable(ctx)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list products")
	}

	if len(rows) == 0 {
		fmt.Println("No products.")
		return
	}
	for _, p := range rows {
		marker := ""
		if !p.IsActive {
			marker = " (inactive)"
		}
		fmt.Printf("%-25s $%s  stock %d%s\n", p.Name, p.Price.StringFixed(2), p.StockQuantity, marker)
	}
}

func runSales(log zerolog.Logger) {
	fs := flag.NewFlagSet("sales", flag.ExitOnError)
	dsn := fs.String("dsn", "", "SQLite DSN (overrides DATABASE_DSN env)")
	date := fs.String("date", "", "Day to summarize (YYYY-MM-DD, default today)")
	days := fs.Int("days", 7, "Window for the popular-products ranking")
	fs.Parse(os.Args[2:])

	ctx := context.Background()
	_, _, ledger := openMachine(ctx, *dsn, log)

	day := civil.DateOf(time.Now())
	if *date != "" {
		parsed, err := civil.ParseDate(*date)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -date, want YYYY-MM-DD")
		}
		day = parsed
	}

	summary, err := ledger.DailySummary(ctx, day)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build daily summary")
	}
	fmt.Printf("Sales for %s: %d transactions, %d items, $%s revenue\n",
		summary.Date, summary.TransactionCount, summary.TotalItemsSold, summary.TotalRevenue.StringFixed(2))

	popular, err := ledger.PopularProducts(ctx, *days)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to rank products")
	}
	if len(popular) == 0 {
		fmt.Printf("No successful sales in the last %d days.\n", *days)
		return
	}
	fmt.Printf("\nTop sellers (last %d days):\n", *days)
	for i, p := range popular {
		fmt.Printf("%d. product %s: %d sold in %d transactions, $%s\n",
			i+1, p.ProductID, p.TotalQuantity, p.TransactionCount, p.TotalRevenue.StringFixed(2))
	}
}
