package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/akamensky/argparse"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	photoutils "github.com/the-little-hackers/photo-utils"
)

type ProgramOptions struct {
	DebugMode    bool     `json:"debug_mode"`
	Lenient      bool     `json:"lenient"`
	WithChecksum bool     `json:"with_checksum"`
	WorkerCount  int      `json:"worker_count"`
	SourceDirs   []string `json:"source_dirs"`
}

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,

	// camera raw
	".cr3": true,
	".nef": true,
}

type photoResult struct {
	Path        string
	CaptureTime time.Time
	HasTime     bool
	Checksum    string
	Err         error
}

type enumerationResult struct {
	sourceDir string
	paths     []string
}

func parseArgs() ProgramOptions {
	parser := argparse.NewParser("phototime", "Batch-extract photo capture timestamps from Exif metadata")

	debugMode := parser.Flag("", "debug", &argparse.Options{
		Required: false,
		Help:     "Enable debug output",
		Default:  false,
	})

	lenient := parser.Flag("", "lenient", &argparse.Options{
		Required: false,
		Help:     "Skip photos without capture time instead of reporting them as failures",
		Default:  false,
	})

	withChecksum := parser.Flag("", "checksum", &argparse.Options{
		Required: false,
		Help:     "Print a BLAKE2b-256 content digest next to each timestamp",
		Default:  false,
	})

	workerCount := parser.Int("", "workers", &argparse.Options{
		Required: false,
		Help:     "Number of extraction workers",
		Default:  4,
	})

	optionalSourcedirs := parser.StringList("", "additional_sourcedir", &argparse.Options{
		Required: false,
		Help:     "If there are more than one sourcedir to read from",
		Default:  nil,
	})

	requiredSourcedir := parser.StringPositional(nil)

	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	sourceDirs := []string{*requiredSourcedir}
	if optionalSourcedirs != nil {
		sourceDirs = append(sourceDirs, *optionalSourcedirs...)
	}

	return ProgramOptions{
		DebugMode:    *debugMode,
		Lenient:      *lenient,
		WithChecksum: *withChecksum,
		WorkerCount:  *workerCount,
		SourceDirs:   sourceDirs,
	}
}

func enumeratePhotos(sourceDir string, logger zerolog.Logger, results chan<- enumerationResult) {
	var paths []string

	err := filepath.Walk(sourceDir,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if photoExtensions[strings.ToLower(filepath.Ext(path))] {
				paths = append(paths, path)
			}
			return nil
		})

	if err != nil {
		logger.Error().Err(err).Str("sourcedir", sourceDir).Msg("enumeration failed")
	}

	results <- enumerationResult{sourceDir, paths}
}

func resolvePhoto(path string, opts ProgramOptions) photoResult {
	res := photoResult{Path: path}

	switch {
	case rawExtensions[strings.ToLower(filepath.Ext(path))]:
		captureTime, err := rawCaptureTime(path)
		res.CaptureTime = captureTime
		res.HasTime = err == nil && !captureTime.IsZero()
		res.Err = err
	case opts.Lenient:
		captureTime, ok, err := photoutils.LookupCaptureTime(path)
		res.CaptureTime = captureTime
		res.HasTime = ok
		res.Err = err
	default:
		captureTime, err := photoutils.CaptureTime(path)
		res.CaptureTime = captureTime
		res.HasTime = err == nil
		res.Err = err
	}

	if res.Err == nil && opts.WithChecksum {
		res.Checksum, res.Err = contentChecksum(path)
	}

	return res
}

func resolveWorker(opts ProgramOptions, work <-chan string, results chan<- photoResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for path := range work {
		results <- resolvePhoto(path, opts)
	}
}

func contentChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("checksum %q: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func main() {
	opts := parseArgs()

	level := zerolog.InfoLevel
	if opts.DebugMode {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	timer := newPhaseTimer(logger)

	// Spin off one enumeration goroutine per sourcedir and collect the
	// file lists back in main.
	enumID := timer.start("enumerate sourcedirs")
	enumerated := make(chan enumerationResult)
	for _, sourceDir := range opts.SourceDirs {
		go enumeratePhotos(sourceDir, logger, enumerated)
	}

	var paths []string
	for range opts.SourceDirs {
		res := <-enumerated
		logger.Info().Str("sourcedir", res.sourceDir).Int("photos", len(res.paths)).Msg("enumerated sourcedir")
		paths = append(paths, res.paths...)
	}
	close(enumerated)
	timer.stop(enumID)

	extractID := timer.start("extract capture times")
	work := make(chan string)
	results := make(chan photoResult)

	wg := &sync.WaitGroup{}
	for i := 0; i < opts.WorkerCount; i++ {
		wg.Add(1)
		go resolveWorker(opts, work, results, wg)
	}
	go func() {
		for _, path := range paths {
			work <- path
		}
		close(work)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var resolved, skipped, failed int
	for res := range results {
		switch {
		case res.Err != nil:
			failed++
			logger.Error().Err(res.Err).Str("photo", res.Path).Msg("capture time extraction failed")
		case !res.HasTime:
			skipped++
			logger.Warn().Str("photo", res.Path).Msg("no capture time in Exif metadata")
		default:
			resolved++
			line := fmt.Sprintf("%s\t%s", res.Path, res.CaptureTime.Format(time.RFC3339))
			if res.Checksum != "" {
				line += "\t" + res.Checksum
			}
			fmt.Println(line)
		}
	}
	timer.stop(extractID)
	timer.report()

	logger.Info().
		Int("resolved", resolved).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("done")

	if failed > 0 {
		os.Exit(1)
	}
}
