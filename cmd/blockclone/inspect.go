package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/blockclone/block"
	"github.com/c360studio/blockclone/clone"
)

type inspectReport struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	HasChildren  bool     `json:"has_children"`
	Archived     bool     `json:"archived"`
	ChildCount   int      `json:"child_count"`
	AliasChain   []string `json:"alias_chain,omitempty"`
	SourceID     string   `json:"source_id,omitempty"`
	SourcePrefix string   `json:"source_preview,omitempty"`
}

func newInspectCmd(configPath, logLevel *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <block-id>",
		Short: "Show a block's metadata and, for references, its alias chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			b, err := a.src.GetBlock(ctx, args[0])
			if err != nil {
				return fmt.Errorf("inspect %s: %w", args[0], err)
			}

			rep := inspectReport{
				ID:          b.ID,
				Type:        b.Type,
				HasChildren: b.HasChildren,
				Archived:    b.Archived,
			}

			kids, err := a.src.ListChildren(ctx, b.ID)
			if err != nil {
				return fmt.Errorf("list children of %s: %w", b.ID, err)
			}
			rep.ChildCount = len(kids)

			if b.IsAlias() {
				resolver := clone.NewResolver(a.src, a.cfg.Clone.MaxAliasHops)
				chain, err := resolver.Chain(ctx, b)
				if err != nil {
					return fmt.Errorf("resolve %s: %w", b.ID, err)
				}
				for _, hop := range chain {
					rep.AliasChain = append(rep.AliasChain, hop.ID)
				}
				src := chain[len(chain)-1]
				rep.SourceID = src.ID
				rep.SourcePrefix = firstPreview(ctx, a.src, src)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}

			fmt.Printf("id:           %s\n", rep.ID)
			fmt.Printf("type:         %s\n", rep.Type)
			fmt.Printf("has_children: %t\n", rep.HasChildren)
			fmt.Printf("archived:     %t\n", rep.Archived)
			fmt.Printf("children:     %d\n", rep.ChildCount)
			if len(rep.AliasChain) > 0 {
				fmt.Printf("alias chain:  ")
				for i, id := range rep.AliasChain {
					if i > 0 {
						fmt.Print(" -> ")
					}
					fmt.Print(id)
				}
				fmt.Println()
				fmt.Printf("source:       %s\n", rep.SourceID)
				if rep.SourcePrefix != "" {
					fmt.Printf("preview:      %s\n", rep.SourcePrefix)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

// firstPreview reads the leading text under b's first non-empty child.
// Best effort: read failures come back as "".
func firstPreview(ctx context.Context, src clone.Source, b *block.Block) string {
	kids, err := src.ListChildren(ctx, b.ID)
	if err != nil {
		return ""
	}
	for i := range kids {
		if text := kids[i].Preview(5); text != "" {
			return text
		}
	}
	return ""
}
