package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/catrisk/runprep/internal/fileset"
)

// defaultWorkers bounds parallel tool processes when Options.Workers is unset.
const defaultWorkers = 4

// Options configures CreateBinaryFiles. IncludeIL is forced on whenever
// IncludeRI is set.
type Options struct {
	IncludeIL   bool
	IncludeRI   bool
	Workers     int           // parallel tool processes per pass, default 4
	ToolTimeout time.Duration // per-invocation timeout, 0 = none
}

// ConversionError reports a tool that exited non-zero, carrying its
// captured diagnostic output.
type ConversionError struct {
	Tool   string
	Input  string
	Output string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s failed converting %s: %v", e.Tool, e.Input, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ToolTimeoutError reports a conversion killed after exceeding the
// per-tool timeout.
type ToolTimeoutError struct {
	Tool    string
	Input   string
	Timeout time.Duration
}

func (e *ToolTimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s converting %s", e.Tool, e.Timeout, e.Input)
}

// CreateBinaryFiles converts every present CSV of the active file set in
// csvDir into its binary under binDir. Members whose CSV is absent are
// skipped. With IncludeRI the same pass repeats for every RI_<n>
// subdirectory of csvDir, writing to the matching subdirectory of binDir.
// The first failed invocation aborts the operation; binaries from a failed
// pass must not be trusted.
func CreateBinaryFiles(ctx context.Context, reg *fileset.Registry, csvDir, binDir string, opts Options) error {
	csvAbs, err := filepath.Abs(csvDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", csvDir, err)
	}
	binAbs, err := filepath.Abs(binDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", binDir, err)
	}

	includeIL := opts.IncludeIL || opts.IncludeRI

	if err := convertSet(ctx, reg, csvAbs, binAbs, includeIL, opts); err != nil {
		return err
	}

	if !opts.IncludeRI {
		return nil
	}

	entries, err := os.ReadDir(csvAbs)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", csvAbs, err)
	}
	for _, e := range entries {
		if !e.IsDir() || !fileset.IsRILayer(e.Name()) {
			continue
		}
		layerCSV := filepath.Join(csvAbs, e.Name())
		layerBin := filepath.Join(binAbs, e.Name())
		if err := convertSet(ctx, reg, layerCSV, layerBin, true, opts); err != nil {
			return err
		}
	}
	return nil
}

type job struct {
	in      fileset.Input
	csvPath string
	binPath string
}

// convertSet runs one conversion pass over a single directory pair through
// a bounded worker pool. The first failure cancels outstanding work.
func convertSet(ctx context.Context, reg *fileset.Registry, csvDir, binDir string, includeIL bool, opts Options) error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", binDir, err)
	}

	var jobs []job
	for _, in := range reg.Convertible(includeIL) {
		csvPath := filepath.Join(csvDir, in.CSVName())
		if _, err := os.Stat(csvPath); err != nil {
			slog.Debug("skipping absent input", "csv", csvPath)
			continue
		}
		jobs = append(jobs, job{in: in, csvPath: csvPath, binPath: filepath.Join(binDir, in.BinName())})
	}
	if len(jobs) == 0 {
		return nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	work := make(chan job)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range work {
				if ctx.Err() != nil {
					continue
				}
				if err := runTool(ctx, j, opts.ToolTimeout); err != nil {
					fail(err)
				}
			}
		}()
	}

	for _, j := range jobs {
		work <- j
	}
	close(work)
	wg.Wait()

	return firstErr
}

// runTool invokes one conversion tool with the CSV on stdin and the binary
// on stdout, no shell involved.
func runTool(ctx context.Context, j job, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	csvFile, err := os.Open(j.csvPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", j.csvPath, err)
	}
	defer func() { _ = csvFile.Close() }()

	binFile, err := os.Create(j.binPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", j.binPath, err)
	}
	defer func() { _ = binFile.Close() }()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, j.in.Tool)
	cmd.Stdin = csvFile
	cmd.Stdout = binFile
	cmd.Stderr = &stderr

	slog.Debug("converting input", "tool", j.in.Tool, "csv", j.csvPath, "bin", j.binPath)

	if err := cmd.Run(); err != nil {
		if timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &ToolTimeoutError{Tool: j.in.Tool, Input: j.csvPath, Timeout: timeout}
		}
		return &ConversionError{Tool: j.in.Tool, Input: j.csvPath, Output: stderr.String(), Err: err}
	}
	return nil
}
