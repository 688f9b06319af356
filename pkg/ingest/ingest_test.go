package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "no medical terms",
			text: "the quick brown fox",
			want: "general",
		},
		{
			name: "symptom terms in order",
			text: "Patient reports fever and headache after travel",
			want: "fever, headache",
		},
		{
			name: "diagnostic and treatment terms",
			text: "Ordered a CT scan and started medication",
			want: "ct scan, medication",
		},
		{
			name: "duplicates collapse",
			text: "fever, then more fever, persistent fever",
			want: "fever",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractKeywords(tt.text); got != tt.want {
				t.Errorf("ExtractKeywords(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractKeywordsCap(t *testing.T) {
	terms := []string{
		"fever", "pain", "headache", "nausea", "vomiting", "diarrhea", "cough",
		"fatigue", "ct scan", "mri", "x-ray", "biopsy", "surgery",
	}
	got := ExtractKeywords(strings.Join(terms, " "))
	if n := len(strings.Split(got, ", ")); n != 10 {
		t.Errorf("ExtractKeywords() returned %d keywords, want cap of 10: %q", n, got)
	}
}

func TestProcessRecord(t *testing.T) {
	record := RawRecord{
		Question:   "65yo male with chest pain",
		ComplexCoT: "Consider cardiac causes first",
		Response:   "Acute coronary syndrome",
	}

	got := ProcessRecord(record, 7)

	if got.QuestionID != "case_7" {
		t.Errorf("QuestionID = %q, want case_7", got.QuestionID)
	}
	wantText := "Case: 65yo male with chest pain\n\n" +
		"Reasoning: Consider cardiac causes first\n\n" +
		"Diagnosis: Acute coronary syndrome"
	if got.Text != wantText {
		t.Errorf("Text = %q, want %q", got.Text, wantText)
	}
	if got.FullReasoning != "Consider cardiac causes first" {
		t.Errorf("FullReasoning = %q", got.FullReasoning)
	}

	meta := got.Metadata()
	if meta["full_question"] != record.Question {
		t.Errorf("metadata full_question = %v", meta["full_question"])
	}
	if meta["medical_keywords"] == "" {
		t.Error("metadata medical_keywords is empty")
	}
}

func TestProcessRecordTruncatesLongReasoning(t *testing.T) {
	long := strings.Repeat("x", 510)
	got := ProcessRecord(RawRecord{Question: "Q", ComplexCoT: long, Response: "R"}, 0)

	wantExcerpt := "Reasoning: " + strings.Repeat("x", 500) + "..."
	if !strings.Contains(got.Text, wantExcerpt) {
		t.Errorf("Text does not contain 500-char excerpt with ellipsis")
	}
	if got.FullReasoning != long {
		t.Error("FullReasoning was truncated; metadata must keep the full text")
	}

	// short reasoning is kept verbatim, no ellipsis
	short := ProcessRecord(RawRecord{Question: "Q", ComplexCoT: "brief", Response: "R"}, 1)
	if strings.Contains(short.Text, "brief...") {
		t.Errorf("short reasoning gained an ellipsis: %q", short.Text)
	}
}

func TestRawRecordFallbacks(t *testing.T) {
	r := RawRecord{Reasoning: "fallback reasoning", Answer: "fallback answer"}
	if r.reasoning() != "fallback reasoning" {
		t.Errorf("reasoning() = %q", r.reasoning())
	}
	if r.response() != "fallback answer" {
		t.Errorf("response() = %q", r.response())
	}

	r = RawRecord{ComplexCoT: "cot", Reasoning: "alt", Response: "resp", Answer: "alt"}
	if r.reasoning() != "cot" {
		t.Errorf("reasoning() = %q, want Complex_CoT to win", r.reasoning())
	}
	if r.response() != "resp" {
		t.Errorf("response() = %q, want Response to win", r.response())
	}
}

func TestLoadJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.jsonl")

	content := `{"Question":"q1","Complex_CoT":"r1","Response":"a1"}

{"Question":"q2","Reasoning":"r2","Answer":"a2"}
{"Question":"q3","Complex_CoT":"r3","Response":"a3"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := LoadJSONL(path, 0)
	if err != nil {
		t.Fatalf("LoadJSONL() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("LoadJSONL() returned %d records, want 3 (blank lines skipped)", len(records))
	}
	if records[1].Question != "q2" || records[1].reasoning() != "r2" {
		t.Errorf("records[1] = %+v", records[1])
	}

	limited, err := LoadJSONL(path, 2)
	if err != nil {
		t.Fatalf("LoadJSONL() error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("LoadJSONL(limit=2) returned %d records", len(limited))
	}
}

func TestLoadJSONLRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadJSONL(path, 0); err == nil {
		t.Error("LoadJSONL() accepted a malformed line")
	}
}
