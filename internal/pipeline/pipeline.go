// Package pipeline drives corpus preparation: each document flows through
// produce → segment → summarize → optionally embed, with bounded parallelism
// and explicit per-document results instead of thrown-and-caught failures.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"gradient/internal/embedder"
	"gradient/internal/pagetext"
	"gradient/internal/report"
	"gradient/internal/segmenter"
	"gradient/internal/summary"
)

// Stage names the pipeline phase a failure occurred in.
type Stage string

const (
	StageProduce Stage = "produce"
	StageSegment Stage = "segment"
	StageEmbed   Stage = "embed"
)

// Result is the explicit outcome for one document. Err, when set, carries
// the failing Stage. A document with zero surviving chunks is a valid,
// empty result, distinguishable downstream, not an error.
type Result struct {
	Document string
	Chunks   []segmenter.Chunk
	Summary  summary.Summary
	Vectors  [][]float32
	Stage    Stage
	Err      error
}

// Pipeline processes a corpus directory. Segmentation sessions are fully
// independent per document, so documents run concurrently without locking.
type Pipeline struct {
	seg       *segmenter.Segmenter
	opts      pagetext.Options
	embed     embedder.Embedder // nil disables the embed phase
	batchSize int
	workers   int
	log       *slog.Logger
}

func New(seg *segmenter.Segmenter, opts pagetext.Options, embed embedder.Embedder, batchSize, workers int, log *slog.Logger) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		seg:       seg,
		opts:      opts,
		embed:     embed,
		batchSize: batchSize,
		workers:   workers,
		log:       log,
	}
}

// Run processes every supported file directly under inputDir and returns
// one result per document, ordered by filename.
func (p *Pipeline) Run(ctx context.Context, inputDir string) ([]Result, error) {
	files, err := listDocuments(inputDir)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			results[i] = p.processOne(ctx, path)
			return nil
		})
	}
	// Workers never return errors; per-document failures land in results.
	_ = g.Wait()
	return results, nil
}

func (p *Pipeline) processOne(ctx context.Context, path string) Result {
	name := filepath.Base(path)
	log := p.log.With("document", name)
	res := Result{Document: name}

	prod, err := pagetext.ForFile(name, p.opts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		res.Stage, res.Err = StageProduce, err
		return res
	}

	f, err := os.Open(path)
	if err != nil {
		res.Stage, res.Err = StageProduce, fmt.Errorf("open document: %w", err)
		return res
	}
	text, err := prod.Produce(f, name)
	f.Close()
	if err != nil {
		log.Error("produce failed", "error", err)
		res.Stage, res.Err = StageProduce, fmt.Errorf("produce: %w", err)
		return res
	}

	res.Chunks = p.seg.Segment(text, name)
	res.Summary = summary.Summarize(name, res.Chunks)
	if len(res.Chunks) == 0 {
		// Not an error, but operators want to see it.
		log.Warn("document contributed no chunks")
		return res
	}
	log.Info("segmented document",
		"chunks", len(res.Chunks),
		"characters", res.Summary.TotalCharacters,
		"tokens", res.Summary.TotalTokens,
	)

	if p.embed != nil {
		texts := make([]string, len(res.Chunks))
		for i, c := range res.Chunks {
			texts[i] = c.Content
		}
		vecs, err := embedder.EmbedAll(ctx, p.embed, texts, p.batchSize)
		if err != nil {
			log.Error("embedding failed", "error", err)
			// Chunks and summary stay usable downstream.
			res.Stage, res.Err = StageEmbed, fmt.Errorf("embed: %w", err)
			return res
		}
		res.Vectors = vecs
	}
	return res
}

// Failures converts failed results into report rows.
func Failures(results []Result) []report.Failure {
	var fails []report.Failure
	for _, r := range results {
		if r.Err != nil {
			fails = append(fails, report.Failure{
				PDFName: r.Document,
				Stage:   string(r.Stage),
				Error:   r.Err.Error(),
			})
		}
	}
	return fails
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !pagetext.IsSupportedExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
