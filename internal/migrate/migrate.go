// Package migrate runs a complete MkDocs to Hugo migration: it parses the nav,
// reconciles it with the documents on disk, writes section indexes, converts every
// document and assembles the run summary.
package migrate

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docmigrate/internal/assets"
	"git.home.luguber.info/inful/docmigrate/internal/config"
	"git.home.luguber.info/inful/docmigrate/internal/content"
	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/frontmatter"
	"git.home.luguber.info/inful/docmigrate/internal/includes"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
	"git.home.luguber.info/inful/docmigrate/internal/manifest"
	"git.home.luguber.info/inful/docmigrate/internal/metrics"
	"git.home.luguber.info/inful/docmigrate/internal/nav"
	"git.home.luguber.info/inful/docmigrate/internal/reconcile"
	"git.home.luguber.info/inful/docmigrate/internal/report"
)

// IndexFile is the name of the section index written into every nav directory.
const IndexFile = "_index.md"

// Stage names used for logging and metrics.
const (
	StageSnippets = "snippets"
	StageNav      = "nav"
	StageSections = "sections"
	StageConvert  = "convert"
	StageManifest = "manifest"
)

// Migrator runs migrations for one configuration.
type Migrator struct {
	cfg      *config.Config
	recorder metrics.Recorder
	now      func() time.Time
}

// Option customizes a Migrator.
type Option func(*Migrator)

// WithRecorder sets the metrics recorder. The default records nothing.
func WithRecorder(r metrics.Recorder) Option {
	return func(m *Migrator) {
		if r != nil {
			m.recorder = r
		}
	}
}

// New returns a Migrator for cfg. cfg must already be validated.
func New(cfg *config.Config, opts ...Option) *Migrator {
	m := &Migrator{cfg: cfg, recorder: metrics.NoopRecorder{}, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// documentResult is everything one document produced. Results are stored by
// document index and merged after all workers finished.
type documentResult struct {
	path    string
	meta    nav.File
	dest    string
	content content.Result
	err     error
}

// Run performs one migration. Fatal problems (unreadable config, missing nav, missing
// source or asset roots, unwritable destination) are returned as errors. Document
// level failures are reported in the summary instead.
func (m *Migrator) Run(ctx context.Context) (*report.Summary, error) {
	start := m.now()
	runID := uuid.NewString()
	logger := slog.With(logfields.RunID(runID))

	summary := report.NewSummary(runID)
	summary.Source = m.cfg.Source
	summary.Dest = m.cfg.Dest
	summary.SnippetDest = m.cfg.SnippetDestination

	rawConfig, err := m.checkInputs()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.cfg.Dest, 0o750); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "create destination directory").
			Fatal().
			WithContext("path", m.cfg.Dest).
			Build()
	}

	stageStart := m.now()
	copied, err := m.copySnippets()
	if err != nil {
		m.recorder.IncStageResult(StageSnippets, metrics.ResultFatal)
		return nil, err
	}
	summary.SnippetsCopied = copied
	m.finishStage(logger, StageSnippets, stageStart)
	if copied {
		logger.Info("Copied snippets folder", logfields.Path(m.cfg.SnippetDestination))
	} else {
		logger.Info("No snippets folder found in source directory")
	}

	stageStart = m.now()
	block, err := nav.ExtractBlock(rawConfig)
	if err != nil {
		m.recorder.IncStageResult(StageNav, metrics.ResultFatal)
		return nil, err
	}
	files, sections := nav.Parse(block, m.cfg.Source)
	docs, err := reconcile.Inventory(m.cfg.Source, reconcile.Options{Exclude: m.cfg.Exclude})
	if err != nil {
		m.recorder.IncStageResult(StageNav, metrics.ResultFatal)
		return nil, err
	}
	extended, unmatched := reconcile.Reconcile(files, docs)
	summary.NavFiles = len(files)
	summary.Sections = len(sections)
	for _, u := range unmatched {
		summary.Unmatched = append(summary.Unmatched, report.UnmatchedDocument{Path: u.Path, Weight: u.Weight})
	}
	logger.Info("Parsed navigation",
		logfields.Path(m.cfg.MkDocsConfig),
		slog.Int("nav_files", len(files)),
		slog.Int("sections", len(sections)),
		slog.Int("unmatched", len(unmatched)))
	m.finishStage(logger, StageNav, stageStart)

	stageStart = m.now()
	sectionEntries, err := m.writeSectionIndexes(logger, sections)
	if err != nil {
		m.recorder.IncStageResult(StageSections, metrics.ResultFatal)
		return nil, err
	}
	m.finishStage(logger, StageSections, stageStart)

	stageStart = m.now()
	resolver, err := assets.NewResolver(m.cfg.AssetsFolder)
	if err != nil {
		m.recorder.IncStageResult(StageConvert, metrics.ResultFatal)
		return nil, err
	}
	logger.Debug("Indexed assets", logfields.Count(resolver.Len()))
	rewriter := content.NewRewriter(resolver, includes.NewRewriter(m.cfg.SnippetDestination))

	results, err := m.convertAll(ctx, rewriter, extended)
	if err != nil {
		m.recorder.IncStageResult(StageConvert, metrics.ResultFatal)
		return nil, err
	}

	run := &manifest.RunManifest{
		ID:        runID,
		Timestamp: start.UTC(),
		Inputs: manifest.Inputs{
			MkDocsConfig: m.cfg.MkDocsConfig,
			ConfigHash:   manifest.ConfigHash(rawConfig),
			Source:       m.cfg.Source,
			Dest:         m.cfg.Dest,
			AssetsFolder: m.cfg.AssetsFolder,
		},
		Sections: sectionEntries,
	}
	m.merge(summary, run, files, results)
	if len(summary.Failures) > 0 {
		m.recorder.IncStageResult(StageConvert, metrics.ResultWarning)
	}
	m.finishStage(logger, StageConvert, stageStart)

	summary.Duration = m.now().Sub(start)
	m.recorder.ObserveRunDuration(summary.Duration)

	if m.cfg.Manifest != "" {
		stageStart = m.now()
		run.Status = "success"
		if len(summary.Failures) > 0 {
			run.Status = "warning"
		}
		run.Duration = summary.Duration.Milliseconds()
		run.Sort()
		if err := run.Write(m.cfg.Manifest); err != nil {
			m.recorder.IncStageResult(StageManifest, metrics.ResultFatal)
			return summary, err
		}
		m.finishStage(logger, StageManifest, stageStart)
	}

	logger.Info("Conversion complete",
		slog.Int("converted", summary.Converted),
		slog.Int("errors", len(summary.Failures)),
		logfields.DurationMS(float64(summary.Duration.Milliseconds())))
	return summary, nil
}

// checkInputs verifies the input paths and returns the raw mkdocs configuration.
func (m *Migrator) checkInputs() ([]byte, error) {
	raw, err := os.ReadFile(filepath.Clean(m.cfg.MkDocsConfig))
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "config file not found").
			Fatal().
			WithContext("path", m.cfg.MkDocsConfig).
			Build()
	}
	for _, dir := range []struct{ what, path string }{
		{"source directory", m.cfg.Source},
		{"assets folder", m.cfg.AssetsFolder},
	} {
		info, err := os.Stat(dir.path)
		if err != nil || !info.IsDir() {
			return nil, derrors.FileSystemError(dir.what+" not found").
				Fatal().
				WithContext("path", dir.path).
				Build()
		}
	}
	return raw, nil
}

func (m *Migrator) finishStage(logger *slog.Logger, stage string, started time.Time) {
	d := m.now().Sub(started)
	m.recorder.ObserveStageDuration(stage, d)
	m.recorder.IncStageResult(stage, metrics.ResultSuccess)
	logger.Debug("Stage finished", logfields.Stage(stage), logfields.DurationMS(float64(d.Microseconds())/1000))
}

// writeSectionIndexes writes an index page for every nav directory, in path order.
func (m *Migrator) writeSectionIndexes(logger *slog.Logger, sections nav.SectionMetadata) ([]manifest.SectionEntry, error) {
	dirs := make([]string, 0, len(sections))
	for dir := range sections {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	entries := make([]manifest.SectionEntry, 0, len(dirs))
	for _, dir := range dirs {
		sec := sections[dir]
		target := filepath.Join(m.cfg.Dest, filepath.FromSlash(dir), IndexFile)
		if err := writeFile(target, frontmatter.RenderIndex(sec.Title, sec.Weight)); err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "write section index").
				Fatal().
				WithContext("path", target).
				Build()
		}
		logger.Info("Created section index",
			logfields.Path(path.Join(dir, IndexFile)),
			logfields.Section(sec.Title),
			logfields.Weight(sec.Weight))
		entries = append(entries, manifest.SectionEntry{Dir: dir, Title: sec.Title, Weight: sec.Weight})
	}
	return entries, nil
}

// convertAll converts every document in files on up to cfg.Workers workers.
// The returned slice is in document path order.
func (m *Migrator) convertAll(ctx context.Context, rw *content.Rewriter, files nav.FileMetadata) ([]documentResult, error) {
	docs := make([]string, 0, len(files))
	for doc := range files {
		docs = append(docs, doc)
	}
	sort.Strings(docs)

	workers := max(m.cfg.Workers, 1)
	m.recorder.SetWorkers(workers)

	results := make([]documentResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.convertDocument(rw, doc, files[doc])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRuntime, "conversion canceled").Build()
	}
	if err := ctx.Err(); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRuntime, "conversion canceled").Build()
	}
	return results, nil
}

// convertDocument reads, converts and writes one document. It never panics.
func (m *Migrator) convertDocument(rw *content.Rewriter, doc string, meta nav.File) (res documentResult) {
	res = documentResult{
		path: doc,
		meta: meta,
		dest: filepath.Join(m.cfg.Dest, filepath.FromSlash(doc)),
	}
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("%w: %s: %v", ErrDocumentPanic, doc, r)
		}
	}()

	source, err := os.ReadFile(filepath.Join(m.cfg.Source, filepath.FromSlash(doc)))
	if err != nil {
		res.err = fmt.Errorf("%w: %s: %w", ErrReadDocument, doc, err)
		return res
	}
	out, err := rw.Rewrite(doc, source, meta)
	if err != nil {
		res.err = fmt.Errorf("%w: %s: %w", ErrConvertDocument, doc, err)
		return res
	}
	if err := writeFile(res.dest, out.Text); err != nil {
		res.err = fmt.Errorf("%w: %s: %w", ErrWriteDocument, doc, err)
		return res
	}
	res.content = out
	return res
}

// merge folds the per-document results into the summary and manifest in order.
func (m *Migrator) merge(summary *report.Summary, run *manifest.RunManifest, navFiles nav.FileMetadata, results []documentResult) {
	for _, r := range results {
		_, inNav := navFiles[r.path]
		if r.err != nil {
			slog.Error("Error converting document", logfields.Document(r.path), logfields.Error(r.err))
			summary.Failures = append(summary.Failures, report.DocumentFailure{Document: r.path, Error: r.err.Error()})
			m.recorder.IncDocument(metrics.DocumentFailed)
			continue
		}

		summary.Converted++
		if inNav {
			summary.Matched++
			m.recorder.IncDocument(metrics.DocumentMatched)
		} else {
			m.recorder.IncDocument(metrics.DocumentUnmatched)
		}
		summary.Assets.AddRefs(r.content.AssetRefs)
		summary.MissingAssets = append(summary.MissingAssets, r.content.MissingAssets...)
		summary.MissingSnippets = append(summary.MissingSnippets, r.content.MissingSnippets...)
		summary.Leftovers = append(summary.Leftovers, r.content.Leftovers...)
		m.recorder.AddAssetReferences(len(r.content.AssetRefs), len(r.content.MissingAssets))
		m.recorder.AddMissingSnippets(len(r.content.MissingSnippets))

		run.Documents = append(run.Documents, manifest.DocumentEntry{
			Source:      r.path,
			Dest:        filepath.ToSlash(r.dest),
			Title:       r.meta.Title,
			Weight:      r.meta.Weight,
			InNav:       inNav,
			Fingerprint: manifest.Fingerprint(r.content.Text),
		})
	}
}

// copySnippets mirrors the snippet source folder into the snippet destination.
// Top-level directories are replaced as a whole, files are overwritten. It reports
// whether a snippet folder was found.
func (m *Migrator) copySnippets() (bool, error) {
	src := m.cfg.SnippetSource
	if src == "" {
		return false, nil
	}
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return false, nil
	}
	if err := replaceSnippetDirs(src, m.cfg.SnippetDestination); err != nil {
		return false, derrors.WrapError(err, derrors.CategoryFileSystem, "copy snippets folder").
			Fatal().
			WithContext("path", src).
			Build()
	}
	return true, nil
}

func writeFile(target, text string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}
	return atomic.WriteFile(target, bytes.NewReader([]byte(text)))
}
