package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/promptvault"
	"github.com/fwojciec/promptvault/importer"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	Prompts    promptvault.PromptService
	Categories promptvault.CategoryClassifier
	Importer   *importer.Importer

	// NewDuplicateFinder builds a near-duplicate finder over stored texts.
	NewDuplicateFinder func(corpus []string) promptvault.DuplicateFinder

	// NewExporter creates a staged writer for the export directory.
	NewExporter func(dir string) Exporter
}

// Exporter writes prompts into a staging area that is published on Commit
// or discarded on Abort.
type Exporter interface {
	promptvault.PromptWriter
	Commit() error
	Abort() error
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log pipeline activity to stderr"`

	References string  `help:"Reference prompts JSON used for categorization"`
	K          int     `default:"5" help:"Neighbors that vote on a category"`
	Confidence float64 `default:"0.4" help:"Minimum confidence for a category"`
	TopN       int     `name:"top-n" default:"10" help:"Candidates kept by the TF-IDF pre-filter"`
	Threshold  float64 `default:"0.9" help:"Edit-distance similarity that marks a duplicate"`

	Import   ImportCmd   `cmd:"" help:"Import prompts from saved forum pages"`
	Classify ClassifyCmd `cmd:"" help:"Predict the category of a prompt text"`
	Similar  SimilarCmd  `cmd:"" help:"Find stored prompts similar to a text"`
	List     ListCmd     `cmd:"" help:"List stored prompts"`
	Export   ExportCmd   `cmd:"" help:"Export stored prompts as markdown files"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Files       []string `arg:"" help:"Saved forum pages (HTML)"`
	Config      string   `short:"c" help:"Parser config (JSON or YAML)"`
	BaseURL     string   `name:"base-url" help:"URL the pages were saved from, used to resolve links"`
	Concurrency int      `default:"8" help:"Posts processed at once"`
	DryRun      bool     `name:"dry-run" short:"n" help:"Extract without saving"`
}

// ClassifyCmd is the "classify" subcommand.
type ClassifyCmd struct {
	Text string `arg:"" help:"Prompt text"`
}

// SimilarCmd is the "similar" subcommand.
type SimilarCmd struct {
	Text string `arg:"" help:"Prompt text"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Category string `help:"Only prompts in this category"`
	Limit    int    `default:"50" help:"Maximum number of prompts"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Dir      string `arg:"" help:"Destination directory (replaced on success)"`
	Category string `help:"Only prompts in this category"`
}
