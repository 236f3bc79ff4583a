package main

import (
	"fmt"

	"github.com/fwojciec/promptvault"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := promptvault.PromptFilter{Limit: c.Limit}
	if c.Category != "" {
		filter.Category = &c.Category
	}

	prompts, err := deps.Prompts.FindPrompts(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", promptvault.ErrorMessage(err))
		return err
	}

	if len(prompts) == 0 {
		fmt.Fprintln(deps.Stdout, "No prompts found. Use 'promptvault import' to add some.")
		return nil
	}

	for _, p := range prompts {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", p.ID, p.SourcePostID, categoryLabel(p.Category), p.Title)
	}

	return nil
}
