package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrSourceMissing indicates the roster source file cannot be opened. It is
// the only fatal ingestion error; malformed individual rows are skipped.
var ErrSourceMissing = errors.New("roster source not found")

// LoadCSV reads the roster export at path. Column order does not matter and
// missing columns yield empty field values. Rows that cannot be decoded are
// skipped, not fatal.
func LoadCSV(path string) (*Attendees, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("open roster source: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV parses roster rows from r. The first record is the header row.
func ReadCSV(r io.Reader) (*Attendees, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Attendees{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	keys := make([]string, len(header))
	for i, column := range header {
		keys[i] = fieldKey(column)
	}

	attendees := &Attendees{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster row: %w", err)
		}

		row := make(map[string]string, len(keys))
		for i, value := range record {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			row[keys[i]] = strings.TrimSpace(value)
		}

		attendee, err := decodeRow(row)
		if err != nil {
			continue
		}

		attendees.Items = append(attendees.Items, attendee)
	}

	return attendees, nil
}

func decodeRow(row map[string]string) (*Attendee, error) {
	var attendee Attendee

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &attendee,
		TagName:  "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(row); err != nil {
		return nil, err
	}

	return &attendee, nil
}

// fieldKey maps the intake form's long question headers onto the short field
// names used everywhere downstream. Plain headers (api_id, name, ...) pass
// through unchanged.
func fieldKey(column string) string {
	column = strings.TrimSpace(column)
	// The form export uses typographic apostrophes in question headers.
	column = strings.ReplaceAll(column, "’", "'")

	switch strings.ToLower(column) {
	case "what is something you've always wanted to learn about but haven't started yet?":
		return "what_to_learn"
	case "if you had all the time and money in the world, what would you do?":
		return "do_with_time_and_money"
	case "if you could have an unlimited supply of one completely useless item, what would it be?":
		return "useless_item"
	case "what's the last thing you worked on that you're proud of?":
		return "proud_of"
	case "(optional) do you require any accommodations? (e.g. dietary restrictions, accessibility needs)":
		return "accommodations"
	default:
		return strings.ToLower(column)
	}
}
