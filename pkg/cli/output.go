package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/itchyny/gojq"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatYAML outputs as YAML (default for terminal)
	FormatYAML OutputFormat = "yaml"
	// FormatJSON outputs as JSON
	FormatJSON OutputFormat = "json"
	// FormatTable outputs as an aligned table when the result is a Tabler
	FormatTable OutputFormat = "table"
	// FormatRaw outputs strings and bytes verbatim
	FormatRaw OutputFormat = "raw"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatYAML, FormatJSON, FormatTable, FormatRaw:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Tabler is implemented by results that have a tabular rendering.
type Tabler interface {
	Table() (header []string, rows [][]string)
}

// OutputOptions configures output behavior
type OutputOptions struct {
	// Format is the output format (yaml, json, table, raw)
	Format OutputFormat

	// Query is an optional jq expression applied to the JSON form of the
	// result before printing.
	Query string

	// File is the output file path (empty for stdout)
	File string

	// Writer is an optional custom writer (overrides File)
	Writer io.Writer
}

// Output writes the result to the configured destination
func Output(result any, opts OutputOptions) error {
	var w io.Writer = os.Stdout
	if opts.Writer != nil {
		w = opts.Writer
	} else if opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if opts.Query != "" {
		return outputQuery(w, result, opts)
	}
	return write(w, result, opts.Format)
}

func write(w io.Writer, result any, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return outputJSON(w, result)
	case FormatYAML, "":
		return outputYAML(w, result)
	case FormatTable:
		if t, ok := result.(Tabler); ok {
			return outputTable(w, t)
		}
		return outputYAML(w, result)
	case FormatRaw:
		return outputRaw(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// outputQuery runs opts.Query over the JSON form of result and writes each
// emitted value. Strings are printed bare unless the format is JSON or YAML.
func outputQuery(w io.Writer, result any, opts OutputOptions) error {
	q, err := gojq.Parse(opts.Query)
	if err != nil {
		return fmt.Errorf("invalid query %q: %w", opts.Query, err)
	}
	input, err := toJSONValue(result)
	if err != nil {
		return err
	}

	iter := q.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := v.(error); ok {
			return fmt.Errorf("query %q: %w", opts.Query, err)
		}
		if s, ok := v.(string); ok && opts.Format != FormatJSON && opts.Format != FormatYAML {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
			continue
		}
		format := opts.Format
		if format == FormatTable || format == FormatRaw {
			format = FormatJSON
		}
		if err := write(w, v, format); err != nil {
			return err
		}
	}
}

// toJSONValue converts v into the generic map/slice form gojq expects.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return out, nil
}

func outputJSON(w io.Writer, result any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func outputYAML(w io.Writer, result any) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func outputTable(w io.Writer, t Tabler) error {
	header, rows := t.Table()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(header) > 0 {
		fmt.Fprintln(tw, strings.Join(header, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func outputRaw(w io.Writer, result any) error {
	switch v := result.(type) {
	case []byte:
		_, err := w.Write(v)
		return err
	case string:
		_, err := io.WriteString(w, v)
		return err
	default:
		return outputYAML(w, result)
	}
}
