package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeanon/internal/logging"
)

func TestNewConsoleWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.WithComponent(logger, "pipeline")
	logger.Info("anonymized", logging.String("path", "/tmp/Main.java"), logging.Int("lines", 12))
	logger.Debug("suppressed at info level")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "INFO") || !strings.Contains(text, "[pipeline]") {
		t.Fatalf("missing header fields: %q", text)
	}
	if !strings.Contains(text, "path=/tmp/Main.java") || !strings.Contains(text, "lines=12") {
		t.Fatalf("missing attrs: %q", text)
	}
	if strings.Contains(text, "suppressed") {
		t.Fatalf("debug line should be filtered: %q", text)
	}
}

func TestNewJSONEmitsLowercaseLevels(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("could not unzip", logging.String("path", "bad.jar"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, data)
	}
	if record["level"] != "warn" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
	if record["msg"] != "could not unzip" {
		t.Fatalf("unexpected msg: %v", record["msg"])
	}
	if record["path"] != "bad.jar" {
		t.Fatalf("unexpected path attr: %v", record["path"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConsoleQuotesValuesWithSpaces(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("skip", logging.String("reason", "outside any submission"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `reason="outside any submission"`) {
		t.Fatalf("value not quoted: %q", data)
	}
}
