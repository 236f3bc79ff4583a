package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/promptvault"
	"github.com/fwojciec/promptvault/importer"
)

// Run executes the similar command.
func (c *SimilarCmd) Run(deps *Dependencies) error {
	corpus, err := importer.LoadCorpus(deps.Ctx, deps.Prompts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", promptvault.ErrorMessage(err))
		return err
	}

	var matches []promptvault.PromptMatch
	if len(corpus) > 0 {
		matches = deps.NewDuplicateFinder(corpus).FindSimilar(c.Text)
	}

	if len(matches) == 0 {
		fmt.Fprintln(deps.Stdout, "No similar prompts found.")
		return nil
	}

	for _, m := range matches {
		marker := " "
		if m.IsPotentialDuplicate {
			marker = "*"
		}
		fmt.Fprintf(deps.Stdout, "%s %.3f  %s\n", marker, m.SimilarityScore, firstLine(m.CandidateText))
	}

	return nil
}

// firstLine returns the first line of s, shortened for terminal output.
func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	runes := []rune(line)
	if len(runes) > 80 {
		return string(runes[:80]) + "…"
	}
	return line
}
