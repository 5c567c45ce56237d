package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/solosevn/trainingrun/internal/config"
	"github.com/solosevn/trainingrun/internal/scheduler"
	"github.com/solosevn/trainingrun/internal/store"
	"github.com/solosevn/trainingrun/pkg/engine"
	"github.com/solosevn/trainingrun/pkg/notify"
	"github.com/solosevn/trainingrun/pkg/publish"
	"github.com/solosevn/trainingrun/pkg/roster"
	"github.com/solosevn/trainingrun/pkg/server"
	"github.com/solosevn/trainingrun/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildSources(cfgs []config.SourceConfig) []source.Source {
	var sources []source.Source
	for _, sc := range cfgs {
		switch sc.Type {
		case "table":
			sources = append(sources, source.NewTable(sc.Name, sc.URL, sc.NameHints, sc.ScoreHints))
		case "jsonapi":
			sources = append(sources, source.NewJSONAPI(sc.Name, sc.URL, sc.NameField, sc.ValueField))
		case "file":
			sources = append(sources, source.NewFile(sc.Name, sc.Path))
		case "static":
			sources = append(sources, source.NewStatic(sc.Name, sc.Values))
		default:
			fmt.Fprintf(os.Stderr, "skipping source %s: unknown type %q\n", sc.Name, sc.Type)
		}
	}
	return sources
}

func buildAliases(cfg *config.Config) map[string]string {
	aliases := roster.DefaultAliases()
	for k, v := range cfg.Aliases {
		aliases[k] = v
	}
	return aliases
}

func buildPipeline(cfg *config.Config, board *config.BoardConfig, arch *store.Archive, mgr *notify.Manager) *engine.Pipeline {
	cats := make([]engine.CategorySources, len(board.Categories))
	for i, cc := range board.Categories {
		cats[i] = engine.CategorySources{
			Category: engine.Category{
				Key:           cc.Key,
				Weight:        cc.Weight,
				LowerIsBetter: cc.LowerIsBetter,
			},
			Sources: buildSources(cc.Sources),
		}
	}

	p := engine.NewPipeline(cats, engine.Options{
		Board:               board.Name,
		QualificationMin:    board.QualificationMin,
		DampenerBase:        board.DampenerBase,
		DiscoveryMinSources: cfg.Discovery.MinSources,
		TopN:                board.TopN,
		Aliases:             buildAliases(cfg),
		Companies:           roster.DefaultCompanies(),
	}, os.Stderr).
		WithDataFile(board.DataFile).
		WithArchive(arch).
		WithNotifier(mgr)

	if cfg.Publish.Enabled && cfg.Publish.RepoDir != "" {
		p = p.WithPublisher(publish.NewGit(cfg.Publish.RepoDir, cfg.Publish.Remote, cfg.Publish.Branch))
	}
	return p
}

func buildNotifier(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier

	if cfg.Notify.Telegram.Enabled && cfg.Notify.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telegram disabled: %v\n", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewWebhook(cfg.Notify.Webhook.URL, cfg.Notify.Webhook.Secret))
	}

	return notify.NewManager(notifiers...)
}

func selectBoards(cfg *config.Config, names []string) ([]*config.BoardConfig, error) {
	if len(names) == 0 {
		var out []*config.BoardConfig
		for i := range cfg.Boards {
			if cfg.Boards[i].Enabled {
				out = append(out, &cfg.Boards[i])
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("no enabled boards in config")
		}
		return out, nil
	}

	var out []*config.BoardConfig
	for _, name := range names {
		b := cfg.Board(strings.TrimSpace(name))
		if b == nil {
			return nil, fmt.Errorf("unknown board %q", name)
		}
		out = append(out, b)
	}
	return out, nil
}

func runRun(boardNames []string, date string, dryRun bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	boards, err := selectBoards(cfg, boardNames)
	if err != nil {
		return err
	}

	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	var arch *store.Archive
	if !dryRun {
		arch, err = store.OpenArchive(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer arch.Close()
	}

	mgr := buildNotifier(cfg)
	ctx := context.Background()
	failed := 0

	for _, b := range boards {
		p := buildPipeline(cfg, b, arch, mgr)
		report, err := p.Run(ctx, date, dryRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", b.Name, err)
			failed++
			continue
		}
		fmt.Print(report.Summary())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d boards failed", failed, len(boards))
	}
	return nil
}

func runLeaderboard(boardName string, jsonOutput bool, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	b := cfg.Board(boardName)
	if b == nil {
		return fmt.Errorf("unknown board %q", boardName)
	}

	led, err := store.LoadLedger(b.DataFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", b.DataFile, err)
	}
	if len(led.Dates) == 0 {
		fmt.Println("no runs yet (try: trainingrun run)")
		return nil
	}
	idx := len(led.Dates) - 1

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(led)
	}

	fmt.Printf("%s as of %s\n\n", b.Name, led.Dates[idx])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tMODEL\tCOMPANY\tSCORE\tCATS")
	rows := 0
	for _, m := range led.Models {
		if m.Rank == 0 || m.Rank > limit {
			continue
		}
		score := m.ScoreAt(idx)
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\n", m.Rank, m.Name, m.Company, *score, m.SourceCount)
		rows++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if rows == 0 {
		fmt.Println("no ranked models on the latest date")
	}
	return nil
}

func runVerify(boardNames []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	boards := cfg.Boards
	if len(boardNames) > 0 {
		selected, err := selectBoards(cfg, boardNames)
		if err != nil {
			return err
		}
		boards = nil
		for _, b := range selected {
			boards = append(boards, *b)
		}
	}

	failed := 0
	for _, b := range boards {
		if err := store.VerifyLedger(b.DataFile); err != nil {
			fmt.Printf("%s: FAIL (%v)\n", b.Name, err)
			failed++
			continue
		}
		fmt.Printf("%s: ok\n", b.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d boards failed verification", failed, len(boards))
	}
	return nil
}

func runRuns(boardName string, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	arch, err := store.OpenArchive(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer arch.Close()

	runs, err := arch.RecentRuns(context.Background(), boardName, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no archived runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BOARD\tDATE\tMODE\tSTATUS\tQUALIFIED\tDIGEST")
	for _, r := range runs {
		digest := r.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			r.Board, r.RunDate, r.Mode, r.Status, r.Qualified, r.Total, digest)
	}
	return w.Flush()
}

func boardFiles(cfg *config.Config) server.BoardFiles {
	files := make(server.BoardFiles, len(cfg.Boards))
	for _, b := range cfg.Boards {
		files[b.Name] = b.DataFile
	}
	return files
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	arch, err := store.OpenArchive(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer arch.Close()

	srv := server.New(boardFiles(cfg), arch, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	arch, err := store.OpenArchive(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer arch.Close()

	mgr := buildNotifier(cfg)

	var boards []scheduler.Board
	for i := range cfg.Boards {
		if !cfg.Boards[i].Enabled {
			continue
		}
		boards = append(boards, scheduler.Board{
			Name:     cfg.Boards[i].Name,
			Pipeline: buildPipeline(cfg, &cfg.Boards[i], arch, mgr),
		})
	}
	if len(boards) == 0 {
		return fmt.Errorf("no enabled boards in config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(boards, cfg.Schedule.Cron, cfg.Schedule.RunOnStart)

	// Start scheduler in background.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	srv := server.New(boardFiles(cfg), arch, port)
	return srv.ListenAndServe()
}
