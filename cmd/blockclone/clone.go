package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCloneCmd(configPath, logLevel *string) *cobra.Command {
	var (
		referenceID     string
		destinationID   string
		dryRun          bool
		skipUnsupported bool
		maxDepth        int
	)

	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone a synced reference's source content under a destination",
		Long: `Resolve a synced reference block to its canonical source, snapshot the
source's entire subtree, and re-create it as independent blocks under the
destination. With --dry-run the planned write set is printed and nothing
is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := a.options(dryRun)
			if skipUnsupported {
				opts.SkipUnsupported = true
			}
			if maxDepth > 0 {
				opts.MaxDepth = maxDepth
			}

			sum, err := a.engine().Clone(cmd.Context(), referenceID, destinationID, opts)
			if sum != nil && sum.Plan != nil {
				if renderErr := sum.Plan.Render(os.Stdout, opts.BatchSize); renderErr != nil {
					return renderErr
				}
			}
			if err != nil {
				if sum != nil && sum.Created > 0 {
					// Partial success: report what landed before failing.
					fmt.Fprintf(os.Stderr, "partial result: %d block(s) in %d batch(es) were created before the failure\n",
						sum.Created, sum.Batches)
				}
				return err
			}

			if dryRun {
				fmt.Printf("dry run: %d block(s) would be created under %s\n", sum.Planned, destinationID)
			} else {
				fmt.Printf("cloned %d block(s) in %d batch(es) under %s\n", sum.Created, sum.Batches, destinationID)
			}
			if len(sum.Skipped) > 0 {
				fmt.Printf("skipped %d unsupported block(s)\n", len(sum.Skipped))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&referenceID, "reference-id", "", "Synced reference block id (required)")
	cmd.Flags().StringVar(&destinationID, "destination-id", "", "Destination page or block id (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the write set without writing")
	cmd.Flags().BoolVar(&skipUnsupported, "skip-unsupported", false, "Skip blocks with no creation mapping instead of aborting")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Override the subtree depth ceiling")
	_ = cmd.MarkFlagRequired("reference-id")
	_ = cmd.MarkFlagRequired("destination-id")

	return cmd
}
