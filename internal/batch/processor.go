package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"joint-orient/internal/orient"
	"joint-orient/internal/preview"
	"joint-orient/internal/rig"
	"joint-orient/internal/scene"
)

// Config holds the shared settings of a batch run. Every file gets its own
// scene, so files are processed in parallel while each scene stays
// single-threaded.
type Config struct {
	OutputDir     string
	ForceDefaults bool
	UpObject      string // node name; empty means per-joint settings
	Preview       bool
	Format        preview.Format
	Render        preview.Options
	Workers       int
	Logger        *slog.Logger
}

// FailedJoint is a joint that could not be oriented.
type FailedJoint struct {
	Joint string `json:"joint"`
	Error string `json:"error"`
}

// Result holds the outcome of processing one file.
type Result struct {
	File         string        `json:"file"`
	Output       string        `json:"output,omitempty"`
	Preview      string        `json:"preview,omitempty"`
	Nodes        int           `json:"nodes"`
	Oriented     int           `json:"oriented"`
	Skipped      int           `json:"skipped"`
	Unconfigured int           `json:"unconfigured"`
	Degenerate   int           `json:"degenerate"`
	Failed       []FailedJoint `json:"failed,omitempty"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

// Run processes all files using a worker pool. Results keep the input order.
func Run(cfg Config, files []string) []Result {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "batch"))
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	total := len(files)
	results := make([]Result, total)
	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("progress", slog.Int64("done", p), slog.Int("total", total), slog.Float64("files_per_sec", rate))
				}
			}
		}
	}()

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = processFile(cfg, log, files[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

// Load reads a rig document or imports a BMD skeleton, by extension.
func Load(path string) (*rig.Doc, error) {
	if strings.EqualFold(filepath.Ext(path), ".bmd") {
		return rig.ImportBMD(path)
	}
	return rig.Load(path)
}

func processFile(cfg Config, log *slog.Logger, path string) Result {
	res := Result{File: path}
	fail := func(err error) Result {
		log.Error("file failed", slog.String("file", path), slog.Any("error", err))
		res.Error = err.Error()
		return res
	}

	doc, err := Load(path)
	if err != nil {
		return fail(err)
	}
	s, err := rig.Build(doc)
	if err != nil {
		return fail(err)
	}
	res.Nodes = s.Len()

	opts := orient.Options{Logger: log.With(slog.String("file", filepath.Base(path)))}
	if cfg.UpObject != "" {
		h, ok := s.Find(cfg.UpObject)
		if !ok {
			return fail(fmt.Errorf("batch: up object %q not found", cfg.UpObject))
		}
		opts.UpObject = h
	}
	rep := orient.New(s, opts).OrientHierarchy(nil, cfg.ForceDefaults)
	res.Oriented = len(rep.Oriented)
	res.Skipped = len(rep.Skipped)
	res.Unconfigured = len(rep.Unconfigured)
	res.Degenerate = len(rep.Degenerate)
	for _, f := range rep.Failed {
		res.Failed = append(res.Failed, FailedJoint{Joint: f.Name, Error: errString(f.Err)})
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out, err := rig.Capture(s, doc.Name)
	if err != nil {
		return fail(err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fail(err)
	}
	res.Output = filepath.Join(cfg.OutputDir, base+".yaml")
	if err := rig.Save(res.Output, out); err != nil {
		return fail(err)
	}

	if cfg.Preview {
		if res.Preview, err = renderPreview(cfg, s, base); err != nil {
			return fail(err)
		}
	}

	res.Success = true
	return res
}

func renderPreview(cfg Config, s *scene.Scene, base string) (string, error) {
	format := cfg.Format
	if format == "" {
		format = preview.FormatWebP
	}
	path := filepath.Join(cfg.OutputDir, "previews", base+format.Ext())
	img := preview.Render(s, cfg.Render)
	if err := preview.Save(path, img, format); err != nil {
		return "", err
	}
	return path, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
