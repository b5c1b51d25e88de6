package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gempswccg/swccg-server/internal/game/state"
)

// Columns an import file must carry. Others are optional.
var requiredColumns = []string{"id", "title", "side", "type"}

// RowError reports one rejected row of an import file.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ImportCSV reads card definitions from a CSV export with a header row.
// Recognised columns are id, title, side, type, subtype, game_text,
// abilities (separated by "|") and attributes ("name=value" pairs separated
// by ";"). Bad rows are skipped and reported; a bad header fails the import.
func ImportCSV(r io.Reader) ([]*state.Definition, []error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("reading header: %w", err)}
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, []error{fmt.Errorf("header is missing column %q", name)}
		}
	}

	var defs []*state.Definition
	var errs []error
	seen := make(map[string]int)
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, &RowError{Row: row, Err: err})
			continue
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		def := &state.Definition{
			ID:       field("id"),
			Title:    field("title"),
			Side:     strings.ToUpper(field("side")),
			Type:     field("type"),
			Subtype:  field("subtype"),
			GameText: field("game_text"),
		}
		if def.ID == "" || def.Title == "" {
			errs = append(errs, &RowError{Row: row, Err: errors.New("id and title are required")})
			continue
		}
		if first, dup := seen[def.ID]; dup {
			errs = append(errs, &RowError{Row: row, Err: fmt.Errorf("card %s already defined on row %d", def.ID, first)})
			continue
		}
		if abilities := field("abilities"); abilities != "" {
			for _, key := range strings.Split(abilities, "|") {
				if key = strings.TrimSpace(key); key != "" {
					def.Abilities = append(def.Abilities, key)
				}
			}
		}
		attrs, err := parseAttributes(field("attributes"))
		if err != nil {
			errs = append(errs, &RowError{Row: row, Err: err})
			continue
		}
		def.Attributes = attrs

		seen[def.ID] = row
		defs = append(defs, def)
	}
	return defs, errs
}

func parseAttributes(s string) (map[string]int, error) {
	if s == "" {
		return nil, nil
	}
	attrs := make(map[string]int)
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("attribute %q is not name=value", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		attrs[strings.ToLower(strings.TrimSpace(name))] = n
	}
	return attrs, nil
}

// WriteYAML writes definitions in the layout LoadDirectory reads, sorted by ID.
func WriteYAML(w io.Writer, defs []*state.Definition) error {
	sorted := append([]*state.Definition(nil), defs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cardFile{Cards: sorted}); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return enc.Close()
}
