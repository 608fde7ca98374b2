// linepairs is a command-line tool for turning OCR documents and their page
// images into line level training pairs for OCR engines.
//
// Every text line of an ALTO, PAGE, hOCR or Document AI file is cut out of
// the page image, cleaned up and written as an image next to a .gt.txt file
// holding its transcription.
//
// Usage:
//
//	linepairs -xml page.xml [-image page.tif] -out training [options]
//
// Required flags:
//
//	-xml string   Path to the OCR document, or a comma separated list of documents
//
// Options:
//
//	-image string              Page image (single document only, default: resolved from the document)
//	-out string                Output directory (default ".")
//	-config string             YAML file with default settings
//	-min-chars int             Minimum characters per line (default 1)
//	-summary                   Also write <id>_summary.gt.txt
//	-reorder                   Reverse the word order of every line
//	-page int                  Page of multi page hOCR and Document AI files
//	-intrusion-ratio float     Sets both intrusion bands
//	-intrusion-top float       Top intrusion band ratio, 0 disables (default 0.125)
//	-intrusion-bottom float    Bottom intrusion band ratio, 0 disables (default 0.125)
//	-rotation-threshold float  Minimum skew in degrees to correct (default 0.1)
//	-no-sanitize               Store raw crops
//	-padding int               Border around every line in pixels
//	-binarize                  Store black and white line images
//	-format string             tif or png (default "tif")
//	-dpi int                   Density used when the page image has none (default 300)
//	-seed uint                 Seed for synthetic backgrounds, 0 is random
//	-ledger string             SQLite database recording every run
//	-proof string              Path to save a PDF proof sheet of all pairs
//	-jobs int                  Documents processed in parallel (default: number of CPUs)
//	-v                         Debug logging
//
// Example:
//
//	linepairs -xml 0001.xml -image 0001.tif -out training -min-chars 8 -summary
//	linepairs -xml page/0001.xml,page/0002.xml -out training -ledger runs.db -proof proof.pdf
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gardar/ocrtrain/pkg/document"
	"github.com/gardar/ocrtrain/pkg/ledger"
	"github.com/gardar/ocrtrain/pkg/proof"
	"github.com/gardar/ocrtrain/pkg/trainingset"
)

func main() {
	xmlPaths := flag.String("xml", "", "Path to the OCR document, or a comma separated list of documents (required)")
	imagePath := flag.String("image", "", "Path to the page image (single document only)")
	configPath := flag.String("config", "", "Path to a YAML file with default settings")

	outDir := flag.String("out", "", "Output directory")
	minChars := flag.Int("min-chars", 0, "Minimum characters per line")
	summary := flag.Bool("summary", false, "Also write <id>_summary.gt.txt")
	reorder := flag.Bool("reorder", false, "Reverse the word order of every line")
	page := flag.Int("page", 0, "Page of multi page hOCR and Document AI files")
	intrusionRatio := flag.Float64("intrusion-ratio", 0, "Sets both intrusion bands")
	intrusionTop := flag.Float64("intrusion-top", 0, "Top intrusion band ratio, 0 disables")
	intrusionBottom := flag.Float64("intrusion-bottom", 0, "Bottom intrusion band ratio, 0 disables")
	rotationThreshold := flag.Float64("rotation-threshold", 0, "Minimum skew in degrees to correct")
	noSanitize := flag.Bool("no-sanitize", false, "Store raw crops")
	padding := flag.Int("padding", 0, "Border around every line in pixels")
	binarize := flag.Bool("binarize", false, "Store black and white line images")
	format := flag.String("format", "", "Line image format, tif or png")
	dpi := flag.Int("dpi", 0, "Density used when the page image has none")
	seed := flag.Uint64("seed", 0, "Seed for synthetic backgrounds, 0 is random")

	ledgerPath := flag.String("ledger", "", "Path to a SQLite database recording every run")
	proofPath := flag.String("proof", "", "Path to save a PDF proof sheet of all pairs")
	jobs := flag.Int("jobs", runtime.NumCPU(), "Documents processed in parallel")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	if *xmlPaths == "" {
		fmt.Fprintln(os.Stderr, "Error: -xml flag is required")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	docs := splitList(*xmlPaths)
	if *imagePath != "" && len(docs) > 1 {
		fmt.Fprintln(os.Stderr, "Error: -image can only be used with a single document")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := trainingset.DefaultConfig()
	cfg.Logger = logger
	if *configPath != "" {
		yc, err := loadConfig(*configPath, &cfg)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		set(jobs, yc.Jobs)
		set(ledgerPath, yc.Ledger)
	}

	// flags given on the command line win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.OutputDir = *outDir
		case "min-chars":
			cfg.MinChars = *minChars
		case "summary":
			cfg.Summary = *summary
		case "reorder":
			cfg.Reorder = *reorder
		case "page":
			cfg.Page = *page
		case "intrusion-ratio":
			cfg.IntrusionTop, cfg.IntrusionBottom = *intrusionRatio, *intrusionRatio
		case "intrusion-top":
			cfg.IntrusionTop = *intrusionTop
		case "intrusion-bottom":
			cfg.IntrusionBottom = *intrusionBottom
		case "rotation-threshold":
			cfg.RotationThreshold = *rotationThreshold
		case "no-sanitize":
			cfg.Sanitize = !*noSanitize
		case "padding":
			cfg.Padding = *padding
		case "binarize":
			cfg.Binarize = *binarize
		case "format":
			cfg.ImageFormat = *format
		case "dpi":
			cfg.DPI = *dpi
		case "seed":
			cfg.Seed = *seed
		}
	})

	if *ledgerPath != "" {
		lg, err := ledger.Open(*ledgerPath, logger)
		if err != nil {
			log.Fatalf("Failed to open ledger: %v", err)
		}
		cfg.Observer = lg
	}

	pairs, failed := run(docs, *imagePath, cfg, *jobs)

	if *proofPath != "" && len(pairs) > 0 {
		if err := writeProof(*proofPath, pairs, logger); err != nil {
			logger.Error("failed to write proof sheet", "error", err)
			failed++
		} else {
			logger.Info("proof sheet saved", "path", *proofPath)
		}
	}

	if lg, ok := cfg.Observer.(*ledger.Ledger); ok {
		if err := lg.Close(); err != nil {
			logger.Error("failed to close ledger", "error", err)
		}
	}
	logger.Info("done", "documents", len(docs), "failed", failed, "pairs", len(pairs))
	if failed > 0 {
		os.Exit(1)
	}
}

var errDuplicateID = errors.New("duplicate document id")

// run processes every document with at most jobs in flight and returns the
// pairs in document order together with the number of failed documents.
// A document whose id repeats an earlier one of the batch fails without
// being processed.
func run(docs []string, imagePath string, cfg trainingset.Config, jobs int) ([]trainingset.Pair, int) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	results := make([][]trainingset.Pair, len(docs))
	var (
		mu     sync.Mutex
		failed int
	)

	// documents of one batch share the output directory and the ledger,
	// so their ids must not collide
	owner := make(map[string]string, len(docs))
	for _, xmlPath := range docs {
		id := document.DocumentID(xmlPath)
		if first, ok := owner[id]; ok {
			logger.Error("document failed", "path", xmlPath, "error",
				fmt.Errorf("%w: %q is already used by %s", errDuplicateID, id, first))
			failed++
			continue
		}
		owner[id] = xmlPath
	}

	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for i, xmlPath := range docs {
		if owner[document.DocumentID(xmlPath)] != xmlPath {
			continue
		}
		g.Go(func() error {
			ts, err := trainingset.Open(xmlPath, imagePath, cfg)
			if err == nil {
				results[i], err = ts.Create()
			}
			if err != nil {
				logger.Error("document failed", "path", xmlPath, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
			// one bad document does not stop the others
			return nil
		})
	}
	g.Wait()

	var pairs []trainingset.Pair
	for _, r := range results {
		pairs = append(pairs, r...)
	}
	return pairs, failed
}

func writeProof(path string, pairs []trainingset.Pair, logger *slog.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	pc := proof.DefaultConfig()
	pc.Logger = logger
	if err := proof.Write(f, pairs, pc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
