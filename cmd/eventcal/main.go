package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"eventcal/internal/config"
	"eventcal/internal/event"
	"eventcal/internal/extract"
	"eventcal/internal/ics"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/retry"
	"eventcal/internal/tz"
)

// imageList collects repeated -image flags.
type imageList []string

func (l *imageList) String() string     { return strings.Join(*l, ",") }
func (l *imageList) Set(v string) error { *l = append(*l, v); return nil }

type flagConfig struct {
	configPath string
	text       string
	images     imageList
	outPath    string
	refDate    string
	zone       string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.Level(conf.LogLevel))

	// CLI -zone overrides the config default zone.
	if flags.zone != "" {
		conf.Timezone = flags.zone
	}

	if flags.text == "" && len(flags.images) == 0 {
		appLog.Error("nothing to extract", fmt.Errorf("provide -text and/or -image"))
		os.Exit(2)
	}

	refDate, err := referenceDate(flags.refDate)
	if err != nil {
		appLog.Error("invalid -ref-date", err, "value", flags.refDate)
		os.Exit(2)
	}

	localZone := conf.Timezone
	if localZone == "" {
		localZone = tz.LocalZoneName()
	}

	appLog.Info("eventcal starting",
		"model", conf.API.Model,
		"local_zone", localZone,
		"ref_date", refDate.Format("2006-01-02"),
		"images", len(flags.images),
		"out", flags.outPath,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, conf, flags, refDate, localZone); err != nil {
		appLog.Error("run failed", err)
		os.Exit(1)
	}
	appLog.Info("eventcal done", "out", flags.outPath)
}

func run(ctx context.Context, conf *config.Config, flags flagConfig, refDate time.Time, localZone string) error {
	apiKey, err := extract.LoadAPIKey()
	if err != nil {
		return err
	}

	req := extract.Request{
		Text:          flags.text,
		ReferenceDate: refDate,
		ZoneName:      localZone,
	}
	for _, path := range flags.images {
		img, err := loadImage(path)
		if err != nil {
			return err
		}
		req.Images = append(req.Images, img)
	}

	client := extract.NewClient(conf.API, apiKey)
	policy := retry.Policy{
		MaxAttempts: conf.Retry.MaxAttempts,
		BaseDelay:   time.Duration(conf.Retry.BaseDelaySeconds * float64(time.Second)),
		MaxBackoff:  time.Duration(conf.Retry.MaxBackoffSeconds * float64(time.Second)),
	}

	var candidates []model.RawEventCandidate
	err = policy.Do(ctx, func(ctx context.Context) error {
		var callErr error
		candidates, callErr = client.Extract(ctx, req)
		return callErr
	})
	if err != nil {
		return err
	}
	appLog.Info("extraction finished", "candidates", len(candidates))

	buildOpts := event.BuildOptions{
		DefaultTitle:           conf.DefaultTitle,
		DefaultDurationMinutes: conf.DefaultDurationMinutes,
	}
	icsOpts := ics.BuildOptions{
		ProdID:          conf.ProdID,
		ReminderMinutes: conf.ReminderMinutes,
	}

	// Each candidate becomes its own document; the merge at the end
	// keeps good events even when neighbors in the same reply are
	// broken.
	var documents []string
	for i, cand := range candidates {
		zone, err := tz.Resolve(cand.TimezoneHint, localZone)
		if err != nil {
			appLog.Error("skipping candidate, unresolvable timezone", err,
				"index", i, "hint", cand.TimezoneHint)
			continue
		}
		rec, err := event.Build(cand, zone, refDate, buildOpts)
		if err != nil {
			appLog.Error("skipping candidate, invalid event", err,
				"index", i, "title", cand.Title)
			continue
		}
		documents = append(documents, ics.Build([]model.EventRecord{rec}, icsOpts))
		appLog.Debug("candidate accepted",
			"index", i, "title", rec.Title,
			"start_utc", rec.StartUTC.Format(time.RFC3339))
	}
	if len(documents) == 0 {
		return fmt.Errorf("no usable events in %d candidate(s)", len(candidates))
	}

	doc, err := ics.Merge(documents)
	if err != nil {
		return err
	}

	if flags.outPath == "-" {
		_, err = os.Stdout.WriteString(doc)
		return err
	}
	return os.WriteFile(flags.outPath, []byte(doc), 0o600)
}

// referenceDate parses the -ref-date override, defaulting to the
// current local date at midnight.
func referenceDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func loadImage(path string) (extract.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Image{}, fmt.Errorf("read image %s: %w", path, err)
	}
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = "image/png"
	}
	return extract.Image{MIMEType: mt, Data: data}, nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.text, "text", "", "Text to extract events from")
	flag.Var(&cfg.images, "image", "Image file to extract events from (repeatable)")
	flag.StringVar(&cfg.outPath, "out", "events.ics", "Output .ics path, or - for stdout")
	flag.StringVar(&cfg.refDate, "ref-date", "", "Reference date for relative expressions (YYYY-MM-DD, default today)")
	flag.StringVar(&cfg.zone, "zone", "", "Default IANA timezone (overrides config and system zone)")

	flag.Parse()

	return cfg
}

func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "eventcal", "config.yaml")
	}
	return "config.yaml"
}
