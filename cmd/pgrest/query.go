package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datrium/postgrest-go/pkg/httputil"
	"github.com/datrium/postgrest-go/pkg/postgrest"
)

var filterFlags []string
var selectFlag string
var orderFlag string
var dataFlag string
var naturalKeysFlag string

var getCmd = &cobra.Command{
	Use:   "get <table>",
	Short: "Fetch exactly one row",
	Long:  `Fetches the single row matching the given filters; fails on zero or multiple matches`,
	Args:  cobra.ExactArgs(1),
	Run:   runGet,
}

var filterCmd = &cobra.Command{
	Use:   "filter <table>",
	Short: "Fetch all rows matching the filters",
	Args:  cobra.ExactArgs(1),
	Run:   runFilter,
}

var createCmd = &cobra.Command{
	Use:   "create <table>",
	Short: "Insert a row",
	Long:  `Inserts a row from the JSON object given with --data and prints the stored representation`,
	Args:  cobra.ExactArgs(1),
	Run:   runCreate,
}

var getOrCreateCmd = &cobra.Command{
	Use:   "get-or-create <table>",
	Short: "Fetch a row by its natural keys, creating it when absent",
	Args:  cobra.ExactArgs(1),
	Run:   runGetOrCreate,
}

func init() {
	for _, cmd := range []*cobra.Command{getCmd, filterCmd} {
		cmd.Flags().StringArrayVarP(&filterFlags, "filter", "f", nil, "filter as column=op.value, repeatable")
		cmd.Flags().StringVar(&selectFlag, "select", "", "comma-separated columns to select")
	}
	filterCmd.Flags().StringVar(&orderFlag, "order", "", "order clause, e.g. created_at.desc,id")
	createCmd.Flags().StringVarP(&dataFlag, "data", "d", "", "row attributes as a JSON object")
	getOrCreateCmd.Flags().StringVarP(&dataFlag, "data", "d", "", "row attributes as a JSON object")
	getOrCreateCmd.Flags().StringVarP(&naturalKeysFlag, "natural-keys", "k", "", "comma-separated columns identifying an existing row")

	rootCmd.AddCommand(getCmd, filterCmd, createCmd, getOrCreateCmd)
}

// newClient wires config and transport into a client for table.
func newClient(table string, naturalKeys []string) *postgrest.Client {
	if cfg == nil {
		log.Fatal("Configuration not loaded")
	}

	opts := []httputil.Option{
		httputil.WithTimeout(cfg.Endpoint.Timeout),
		httputil.WithLogger(logger),
	}
	if cfg.Endpoint.Token != "" {
		opts = append(opts, httputil.WithToken(cfg.Endpoint.Token))
	}
	if cfg.Endpoint.Retry.Enabled {
		opts = append(opts, httputil.WithRetry(
			cfg.Endpoint.Retry.MaxRetries,
			cfg.Endpoint.Retry.InitialBackoff,
			cfg.Endpoint.Retry.MaxBackoff,
		))
	}

	desc := postgrest.Descriptor{
		Table:       table,
		NaturalKeys: naturalKeys,
	}

	return postgrest.New(cfg.Endpoint.BaseURL, desc, httputil.NewClient(opts...),
		postgrest.WithLogger(logger))
}

// parseFilters turns repeated column=op.value flags into a FilterSpec.
func parseFilters() postgrest.FilterSpec {
	spec := make(postgrest.FilterSpec, 0, len(filterFlags)+2)
	if selectFlag != "" {
		spec = append(spec, postgrest.Filter{Key: "select", Value: selectFlag})
	}
	for _, f := range filterFlags {
		key, value, found := strings.Cut(f, "=")
		if !found {
			log.Fatalf("invalid filter %q, want column=op.value", f)
		}
		spec = append(spec, postgrest.Filter{Key: key, Value: value})
	}
	if orderFlag != "" {
		spec = append(spec, postgrest.Filter{Key: "order", Value: orderFlag})
	}
	return spec
}

func parseData() map[string]any {
	if dataFlag == "" {
		log.Fatal("--data is required")
	}
	var attrs map[string]any
	if err := json.Unmarshal([]byte(dataFlag), &attrs); err != nil {
		log.Fatalf("invalid --data: %v", err)
	}
	return attrs
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("failed to render output: %v", err)
	}
	fmt.Println(string(out))
}

func runGet(cmd *cobra.Command, args []string) {
	client := newClient(args[0], nil)
	r, err := client.Get(cmd.Context(), parseFilters())
	if err != nil {
		log.Fatalf("get failed: %v", err)
	}
	printJSON(r.Attrs())
}

func runFilter(cmd *cobra.Command, args []string) {
	client := newClient(args[0], nil)
	resources, err := client.Filter(cmd.Context(), parseFilters())
	if err != nil {
		log.Fatalf("filter failed: %v", err)
	}

	rows := make([]map[string]any, 0, len(resources))
	for _, r := range resources {
		rows = append(rows, r.Attrs())
	}
	printJSON(rows)
}

func runCreate(cmd *cobra.Command, args []string) {
	client := newClient(args[0], nil)
	r, err := client.Create(cmd.Context(), parseData())
	if err != nil {
		log.Fatalf("create failed: %v", err)
	}
	printJSON(r.Attrs())
}

func runGetOrCreate(cmd *cobra.Command, args []string) {
	if naturalKeysFlag == "" {
		log.Fatal("--natural-keys is required")
	}
	keys := strings.Split(naturalKeysFlag, ",")

	client := newClient(args[0], keys)
	r, created, err := client.GetOrCreate(cmd.Context(), parseData())
	if err != nil {
		log.Fatalf("get-or-create failed: %v", err)
	}
	if created {
		fmt.Fprintln(os.Stderr, "created")
	}
	printJSON(r.Attrs())
}
