package main

import (
	"fmt"

	"github.com/fwojciec/promptvault"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	var filter promptvault.PromptFilter
	if c.Category != "" {
		filter.Category = &c.Category
	}

	prompts, err := deps.Prompts.FindPrompts(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", promptvault.ErrorMessage(err))
		return err
	}

	w := deps.NewExporter(c.Dir)
	for _, p := range prompts {
		if err := w.WritePrompt(deps.Ctx, p); err != nil {
			_ = w.Abort()
			fmt.Fprintf(deps.Stderr, "error: prompt %s: %s\n", p.ID, promptvault.ErrorMessage(err))
			return err
		}
	}
	if err := w.Commit(); err != nil {
		_ = w.Abort()
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d prompts to %s\n", len(prompts), c.Dir)
	return nil
}
