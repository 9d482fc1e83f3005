// Package jsonl provides append-only JSONL persistence for apply-run
// receipts.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/fixup"
)

// Compile-time interface verification.
var _ fixup.ReceiptSaver = (*ReceiptStore)(nil)
var _ fixup.ReceiptLoader = (*ReceiptStore)(nil)

// maxLineSize is the maximum size for a single JSONL line (4MB).
// This accommodates large batch receipts while preventing memory issues.
const maxLineSize = 4 * 1024 * 1024

// ReceiptStore appends Receipt records to JSONL files.
type ReceiptStore struct{}

// NewReceiptStore creates a new ReceiptStore.
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{}
}

// Save appends a Receipt to a JSONL file, creating parent directories
// if needed.
func (s *ReceiptStore) Save(path string, r fixup.Receipt) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return err
	}
	if _, err := f.WriteString("\n"); err != nil {
		return err
	}

	return nil
}

// Load reads a JSONL file and returns all Receipt records.
func (s *ReceiptStore) Load(path string) ([]fixup.Receipt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var receipts []fixup.Receipt
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var r fixup.Receipt
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		receipts = append(receipts, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return receipts, nil
}
