package main

import "fmt"

// Run executes the classify command.
func (c *ClassifyCmd) Run(deps *Dependencies) error {
	result := deps.Categories.Classify(c.Text)

	fmt.Fprintf(deps.Stdout, "%s (confidence %.2f)\n", result.Category, result.Confidence)
	for _, n := range result.Neighbors {
		fmt.Fprintf(deps.Stdout, "  %.3f  %s  %s\n", n.Similarity, n.Category, n.Text)
	}

	return nil
}
