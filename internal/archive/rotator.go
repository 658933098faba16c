// Package archive persists the raw Riot payloads alongside the relational
// store, so matches can be re-aggregated later without refetching. Payloads
// are appended as JSONL envelopes to rotating files that move through
// hot (active) -> warm (closed) -> cold (gzipped) directories.
package archive

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// Rotation triggers
	maxPayloadsPerFile = 500
	maxFileAge         = 1 * time.Hour

	writeBufferSize = 64 * 1024
)

// Payload kinds recorded in the envelope.
const (
	KindMatch    = "match"
	KindTimeline = "timeline"
)

// Envelope wraps one raw API payload with enough identity to find it again.
type Envelope struct {
	Kind      string          `json:"kind"`
	MatchID   string          `json:"matchId"`
	PUUID     string          `json:"puuid"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Payload   json.RawMessage `json:"payload"`
}

// Writer appends payload envelopes to rotating JSONL files.
type Writer struct {
	mu sync.Mutex

	hotDir  string
	warmDir string
	coldDir string

	currentFile   *os.File
	currentWriter *bufio.Writer
	currentPath   string
	payloadCount  int
	fileOpenedAt  time.Time
}

// NewWriter creates the hot/warm/cold layout under baseDir and opens the
// first archive file.
func NewWriter(baseDir string) (*Writer, error) {
	w := &Writer{
		hotDir:  filepath.Join(baseDir, "hot"),
		warmDir: filepath.Join(baseDir, "warm"),
		coldDir: filepath.Join(baseDir, "cold"),
	}

	for _, dir := range []string{w.hotDir, w.warmDir, w.coldDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := w.rotate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends one envelope and flushes it. Rotation happens after the
// write, so an envelope is never split across files.
func (w *Writer) Write(kind, matchID, puuid string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	env := Envelope{
		Kind:      kind,
		MatchID:   matchID,
		PUUID:     puuid,
		FetchedAt: time.Now().UTC(),
		Payload:   raw,
	}
	line, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.currentWriter.Write(line); err != nil {
		return fmt.Errorf("failed to write envelope: %w", err)
	}
	if err := w.currentWriter.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := w.currentWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	w.payloadCount++
	if w.shouldRotate() {
		return w.rotate()
	}
	return nil
}

func (w *Writer) shouldRotate() bool {
	if w.currentFile == nil {
		return true
	}
	if w.payloadCount >= maxPayloadsPerFile {
		return true
	}
	if time.Since(w.fileOpenedAt) >= maxFileAge {
		return true
	}
	return false
}

// rotate closes the current file, moves it to warm, and opens a fresh one.
// Caller holds the lock.
func (w *Writer) rotate() error {
	if w.currentFile != nil {
		if err := w.currentWriter.Flush(); err != nil {
			return fmt.Errorf("failed to flush before rotation: %w", err)
		}
		if err := w.currentFile.Close(); err != nil {
			return fmt.Errorf("failed to close file: %w", err)
		}
		warmPath := filepath.Join(w.warmDir, filepath.Base(w.currentPath))
		if err := os.Rename(w.currentPath, warmPath); err != nil {
			return fmt.Errorf("failed to move to warm storage: %w", err)
		}
		log.Printf("[Archive] Moved %s to warm storage (%d payloads)", filepath.Base(w.currentPath), w.payloadCount)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	w.currentPath = filepath.Join(w.hotDir, fmt.Sprintf("raw_payloads_%s.jsonl", timestamp))

	file, err := os.Create(w.currentPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}

	w.currentFile = file
	w.currentWriter = bufio.NewWriterSize(file, writeBufferSize)
	w.payloadCount = 0
	w.fileOpenedAt = time.Now()
	return nil
}

// Close flushes and closes the current file, moving it to warm when it has
// data and deleting it when empty.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentFile == nil {
		return nil
	}
	if err := w.currentWriter.Flush(); err != nil {
		return err
	}
	if err := w.currentFile.Close(); err != nil {
		return err
	}

	if w.payloadCount > 0 {
		warmPath := filepath.Join(w.warmDir, filepath.Base(w.currentPath))
		if err := os.Rename(w.currentPath, warmPath); err != nil {
			return err
		}
	} else {
		os.Remove(w.currentPath)
	}

	w.currentFile = nil
	return nil
}

// Sweep gzips every warm file into cold storage and removes the originals.
// It keeps going past per-file failures and returns the count compressed.
func (w *Writer) Sweep() (int, error) {
	w.mu.Lock()
	warmDir, coldDir := w.warmDir, w.coldDir
	w.mu.Unlock()

	entries, err := os.ReadDir(warmDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read warm directory: %w", err)
	}

	compressed := 0
	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		warmPath := filepath.Join(warmDir, entry.Name())
		if err := compressToCold(warmPath, coldDir); err != nil {
			log.Printf("[Archive] Failed to compress %s: %v", entry.Name(), err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		compressed++
	}
	return compressed, firstErr
}

func compressToCold(warmPath, coldDir string) error {
	src, err := os.Open(warmPath)
	if err != nil {
		return err
	}
	defer src.Close()

	coldPath := filepath.Join(coldDir, filepath.Base(warmPath)+".gz")
	dst, err := os.Create(coldPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	gzWriter := gzip.NewWriter(dst)
	if _, err := io.Copy(gzWriter, src); err != nil {
		return err
	}
	if err := gzWriter.Close(); err != nil {
		return err
	}

	return os.Remove(warmPath)
}
