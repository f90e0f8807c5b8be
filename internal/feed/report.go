package feed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// DecodeReport turns a tab-separated report into its header and one map per
// row keyed by column name. Short rows are padded with empty values; extra
// fields are dropped. The charset parameter of contentType, if any, selects
// the source encoding.
func DecodeReport(body []byte, contentType string) ([]string, []map[string]string, error) {
	reader := csv.NewReader(decoder(bytes.NewReader(body), contentType))
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, []map[string]string{}, nil
	}

	if err != nil {
		return nil, nil, fmt.Errorf("reading report header: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows := []map[string]string{}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, nil, fmt.Errorf("reading report row %d: %w", len(rows)+1, err)
		}

		row := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = ""
			}
		}

		rows = append(rows, row)
	}

	return header, rows, nil
}

func decoder(r io.Reader, contentType string) io.Reader {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return r
	}

	enc, err := htmlindex.Get(params["charset"])
	if err != nil {
		return r
	}

	return enc.NewDecoder().Reader(r)
}
