package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"creances/internal"
	"creances/internal/config"
	"creances/internal/importer"
	"creances/internal/reminder"
	"creances/internal/storage"
	"creances/internal/store"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log, err := zap.NewProduction()
	must(err)
	defer log.Sync()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	imp := importer.New(cfg, log)
	sender := reminder.NewOutboxSender(cfg.OutboxDir)
	s, err := store.New(cfg, log, db, imp, sender)
	must(err)

	cmd := os.Args[1]
	switch cmd {
	case "import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "receivables spreadsheet (.xlsx or .xls)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		report, err := s.Load(context.Background(), *file)
		must(err)
		fmt.Printf("import done file=%s rows=%d merged=%d appended=%d skipped=%d trace=%s\n",
			report.FileName, report.Rows, report.Merged, report.Appended, report.Skipped, report.TraceID)
	case "mapping:load":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "email mapping spreadsheet")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		added, err := s.LoadEmailMapping(context.Background(), *file)
		must(err)
		fmt.Printf("mapping load done added=%d total=%d\n", added, len(s.EmailMappings()))
	case "list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		search := fs.String("search", "", "client, contract or agency substring")
		status := fs.String("status", store.FilterAll, "Créance|Partiellement recouvré|Recouvré|all")
		agency := fs.String("agency", store.FilterAll, "agency code or all")
		sort := fs.String("sort", store.SortNone, "ascending|descending|none")
		page := fs.Int("page", 1, "1-based page")
		asJSON := fs.Bool("json", false, "print the page as JSON")
		_ = fs.Parse(os.Args[2:])
		res := s.Query(store.QueryOptions{
			Search: *search,
			Status: *status,
			Agency: *agency,
			Sort:   *sort,
			Page:   *page,
		})
		if *asJSON {
			must(printJSON(res.Records))
			return
		}
		for _, r := range res.Records {
			printRecord(r)
		}
		fmt.Printf("page %d/%d (%d contrats)\n", res.Page, res.TotalPages, res.Total)
	case "debtors":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		top := fs.Int("top", 10, "number of debtors")
		_ = fs.Parse(os.Args[2:])
		for i, r := range s.TopDebtors(*top) {
			fmt.Printf("%2d. %-30s %-15s reste=%.2f DZD\n", i+1, r.ClientName, r.ContractNumber, r.RemainingAmount)
		}
	case "stats":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		asJSON := fs.Bool("json", false, "print the aggregates as JSON")
		_ = fs.Parse(os.Args[2:])
		st := s.Stats()
		if *asJSON {
			must(printJSON(st))
			return
		}
		fmt.Printf("contrats: %d\n", st.TotalContracts)
		fmt.Printf("total: %.2f DZD  encaissé: %.2f DZD  restant: %.2f DZD\n",
			st.TotalAmount, st.PaidAmount, st.RemainingAmount)
		for _, status := range []internal.Status{internal.StatusCreance, internal.StatusPartiel, internal.StatusRecouvre} {
			fmt.Printf("  %-24s %d\n", status, st.ByStatus[status])
		}
		for _, m := range st.Monthly {
			fmt.Printf("  %s  total=%.2f  encaissé=%.2f\n", m.Month, m.Total, m.Paid)
		}
	case "imports":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max history entries")
		_ = fs.Parse(os.Args[2:])
		history, err := db.ListImports(*limit)
		must(err)
		for _, h := range history {
			fmt.Printf("%s file=%s rows=%d merged=%d appended=%d skipped=%d\n",
				h.TraceID, h.FileName, h.Rows, h.Merged, h.Appended, h.Skipped)
		}
	case "emails:send":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		period := fs.Int("period", cfg.ReminderPeriodDays, "minimum debt age in days")
		_ = fs.Parse(os.Args[2:])
		report, err := s.SendReminders(context.Background(), senderAccount(cfg), reminder.DefaultTemplate, cfg.ReminderContact, *period, false)
		must(err)
		fmt.Printf("reminders done eligible=%d sent=%d noMapping=%d failed=%d\n",
			report.Eligible, report.Sent, report.NoMapping, report.Failed)
	case "emails:sent":
		sent, err := s.EmailsSent()
		must(err)
		for _, e := range sent {
			fmt.Printf("%s sent=%v at=%s\n", e.ContractNumber, e.EmailSent, e.SentAt)
		}
		if last, err := s.LastReminderRun(); err == nil && last != nil {
			fmt.Printf("dernier cycle: %s\n", *last)
		}
	case "remind:listen":
		sched := reminder.NewScheduler(cfg, log, s)
		must(sched.Run(context.Background()))
	case "reset":
		must(s.Reset())
		fmt.Println("données réinitialisées")
	default:
		usage()
		os.Exit(1)
	}
}

func senderAccount(cfg config.Config) internal.EmailAccount {
	return internal.EmailAccount{
		Name:     cfg.SenderName,
		Address:  cfg.SenderAddress,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printRecord(r internal.InsuranceRecord) {
	fmt.Printf("%-15s %-30s %-8s %s  total=%.2f encaissé=%.2f reste=%.2f  %s\n",
		r.ContractNumber, r.ClientName, r.CodeAgence, r.DateEmission,
		r.TotalAmount, r.AmountPaid, r.RemainingAmount, r.Status)
}

func usage() {
	fmt.Println("usage: creances <command>")
	fmt.Println("commands:")
	fmt.Println("  import --file=./etat.xlsx")
	fmt.Println("  mapping:load --file=./emails.xlsx")
	fmt.Println("  list [--search=...] [--status=...] [--agency=...] [--sort=ascending|descending] [--page=1] [--json]")
	fmt.Println("  debtors [--top=10]")
	fmt.Println("  stats [--json]")
	fmt.Println("  imports [--limit=20]")
	fmt.Println("  emails:send [--period=30]")
	fmt.Println("  emails:sent")
	fmt.Println("  remind:listen")
	fmt.Println("  reset")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
