package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/c360studio/blockclone/clone"
)

func newScanCmd(configPath, logLevel *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan <page-id>",
		Short: "List the synced blocks under a page",
		Long: `Walk a page and list every synced block in it: originals, references,
their canonical source ids, and a short content preview. Use the output
to pick which references to clone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			scanner := clone.NewScanner(a.src, a.cfg.Clone.MaxDepth, a.logger)
			refs, err := scanner.Scan(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("scan %s: %w", args[0], err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(refs)
			}

			if len(refs) == 0 {
				fmt.Println("no synced blocks found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BLOCK\tKIND\tSOURCE\tDEPTH\tPREVIEW")
			for _, ref := range refs {
				kind := "reference"
				if ref.Original {
					kind = "original"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", ref.ID, kind, ref.TargetID, ref.Depth, ref.Preview)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
