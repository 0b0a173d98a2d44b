// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/isa-docset/internal/docset"
	"github.com/pdiddy/isa-docset/internal/index"
	"github.com/pdiddy/isa-docset/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [query]",
	Short: "Search a generated docset index",
	Long: `Lookup searches the search index of a generated docset for entries whose
name contains the query, and prints the matching pages.

With --export the whole index is written to a .yaml or .json file instead.`,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().Int("limit", 20, "maximum number of results")
	lookupCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	lookupCmd.Flags().String("export", "", "write every index row to this .yaml or .json file")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	exportPath, _ := cmd.Flags().GetString("export")
	query := strings.Join(args, " ")
	if query == "" && exportPath == "" {
		return fmt.Errorf("query required: provide a search term or --export")
	}

	layout := docset.Layout{Dir: viper.GetString("docset_dir")}
	if _, err := os.Stat(layout.IndexPath()); err != nil {
		return fmt.Errorf("no index at %s: run generate first", layout.IndexPath())
	}
	cmd.SilenceUsage = true

	store, err := index.Open(layout.IndexPath())
	if err != nil {
		return err
	}
	defer store.Close()

	if exportPath != "" {
		return exportIndex(cmd, store, exportPath)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	rows, err := store.Lookup(cmd.Context(), query, limit)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return formatLookupOutput(rows, format)
}

func exportIndex(cmd *cobra.Command, store *index.Store, path string) error {
	var err error
	switch {
	case strings.HasSuffix(path, ".json"):
		err = store.ExportJSON(cmd.Context(), path)
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		err = store.ExportYAML(cmd.Context(), path)
	default:
		return fmt.Errorf("unsupported export file %q: use .yaml or .json", path)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func formatLookupOutput(rows []types.IndexRow, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(rows)
	case "table", "":
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}

	if len(rows) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-60s  %s\n", "Name", "Page")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, r := range rows {
		name := r.Name
		if len(name) > 60 {
			name = name[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-60s  %s\n", name, r.Path)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(rows))
	return nil
}
