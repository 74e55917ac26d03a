package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"joint-orient/internal/batch"
	"joint-orient/internal/config"
	"joint-orient/internal/preview"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	forceDefaults := flag.Bool("force-defaults", false, "Give unconfigured joints the default settings")
	upObject := flag.String("up-object", "", "Node whose rotation is the up reference for every joint")
	outputDir := flag.String("out", "", "Output directory (default: oriented)")
	withPreview := flag.Bool("preview", false, "Render a preview image per rig")
	format := flag.String("format", "", "Preview format: webp or tga (default: webp)")
	size := flag.Int("size", 0, "Preview size in pixels (default: 256)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (default: info)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: orient [flags] <rig.yaml|model.bmd|dir>...\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:     *outputDir,
		Format:        *format,
		Size:          *size,
		Workers:       *workers,
		LogLevel:      *logLevel,
		Preview:       *withPreview,
		ForceDefaults: *forceDefaults,
	})
	if *upObject != "" {
		cfg.UpObject = *upObject
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	files, err := collect(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	fmtOut, err := preview.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render("Joint orientation"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("Files: %d, Workers: %d, Output: %s", len(files), cfg.Workers, cfg.OutputDir)))

	start := time.Now()
	results := batch.Run(batch.Config{
		OutputDir:     cfg.OutputDir,
		ForceDefaults: cfg.ForceDefaults,
		UpObject:      cfg.UpObject,
		Preview:       cfg.Preview,
		Format:        fmtOut,
		Render: preview.Options{
			Size:        cfg.PreviewSize,
			Supersample: cfg.Supersample,
			Yaw:         cfg.Yaw,
			Pitch:       cfg.Pitch,
		},
		Workers: cfg.Workers,
		Logger:  log,
	}, files)
	elapsed := time.Since(start)

	rep := batch.Summarize(results)
	fmt.Println(summary(rep, elapsed))

	reportPath := filepath.Join(cfg.OutputDir, "report.json")
	if err := batch.WriteReport(reportPath, results); err != nil {
		log.Warn("report write failed", slog.Any("error", err))
	} else {
		fmt.Println(dimStyle.Render("Report: " + reportPath))
	}

	if rep.Failed > 0 || rep.Success < rep.Files {
		os.Exit(1)
	}
}

// collect expands directories into the rig and BMD files they contain.
func collect(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".yaml", ".yml", ".bmd":
				if !d.IsDir() {
					found = append(found, path)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func summary(rep batch.Report, elapsed time.Duration) string {
	lines := []string{
		fmt.Sprintf("Done in %.1fs", elapsed.Seconds()),
		okStyle.Render(fmt.Sprintf("Files ok: %d/%d", rep.Success, rep.Files)),
		fmt.Sprintf("Joints oriented: %d", rep.Oriented),
	}
	if rep.Failed > 0 || rep.Success < rep.Files {
		lines = append(lines, failStyle.Render(fmt.Sprintf("Failed joints: %d, failed files: %d", rep.Failed, rep.Files-rep.Success)))
		limit := 20
		for _, r := range rep.Results {
			if r.Error != "" && limit > 0 {
				lines = append(lines, failStyle.Render(fmt.Sprintf("  %s: %s", r.File, r.Error)))
				limit--
			}
			for _, f := range r.Failed {
				if limit == 0 {
					break
				}
				lines = append(lines, failStyle.Render(fmt.Sprintf("  %s/%s: %s", filepath.Base(r.File), f.Joint, f.Error)))
				limit--
			}
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
