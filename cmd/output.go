package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/resrepo/internal/services"
)

var titleCaser = cases.Title(language.English)

// render writes v as JSON or YAML, or calls table for the table format.
func render(w io.Writer, format string, v interface{}, table func(*tabwriter.Writer)) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// header writes a heading row and its underline.
func header(w io.Writer, columns ...string) {
	names := make([]string, len(columns))
	rules := make([]string, len(columns))
	for i, c := range columns {
		names[i] = strings.ToUpper(c)
		rules[i] = strings.Repeat("-", len(c))
	}

	fmt.Fprintln(w, strings.Join(names, "\t"))
	fmt.Fprintln(w, strings.Join(rules, "\t"))
}

// kindLabel title-cases a kind name for tables, e.g. "Directory".
func kindLabel(kind string) string {
	return titleCaser.String(kind)
}

func resourceTable(resources []services.Resource, verbose bool) func(*tabwriter.Writer) {
	return func(w *tabwriter.Writer) {
		if verbose {
			header(w, "path", "kind", "location", "layers", "tags")
		} else {
			header(w, "path", "kind", "location", "tags")
		}

		for _, r := range resources {
			tags := strings.Join(r.Tags, ",")
			if verbose {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.Path, kindLabel(r.Kind), r.Location, len(r.Locations), tags)
			} else {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Path, kindLabel(r.Kind), r.Location, tags)
			}
		}

		fmt.Fprintf(w, "\nTotal: %d resources\n", len(resources))
	}
}
