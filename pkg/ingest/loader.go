package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// RawRecord is one line of the exported medical reasoning corpus (JSONL).
// Field fallbacks mirror the dataset's two published schemas.
type RawRecord struct {
	Question   string `json:"Question"`
	ComplexCoT string `json:"Complex_CoT"`
	Reasoning  string `json:"Reasoning"`
	Response   string `json:"Response"`
	Answer     string `json:"Answer"`
}

func (r *RawRecord) reasoning() string {
	if r.ComplexCoT != "" {
		return r.ComplexCoT
	}
	return r.Reasoning
}

func (r *RawRecord) response() string {
	if r.Response != "" {
		return r.Response
	}
	return r.Answer
}

// LoadJSONL reads the corpus export line by line. limit <= 0 means all
// records.
func LoadJSONL(path string, limit int) ([]RawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer file.Close()

	var records []RawRecord
	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 256*1024)
	scanner.Buffer(buf, 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record RawRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("parse corpus line %d: %w", lineNo, err)
		}
		records = append(records, record)

		if limit > 0 && len(records) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	return records, nil
}
