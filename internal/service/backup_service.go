package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"niyamtrack/internal/progress"
)

// BackupData is the portable dump of the whole key-value store. Entries
// are a flat key-to-value map, so a backup taken against one database
// dialect restores cleanly into another.
type BackupData struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Entries    map[string]string `json:"entries"`
}

// BackupService exports and restores the store
type BackupService struct {
	store progress.Store
}

// NewBackupService creates a new backup service
func NewBackupService(store progress.Store) *BackupService {
	return &BackupService{store: store}
}

// Export writes a complete backup of the store to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting store export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Store exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the store to an io.Writer (useful for HTTP responses)
func (s *BackupService) ExportToWriter(w io.Writer) error {
	keys, err := s.store.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	sort.Strings(keys)

	entries, err := s.store.MultiGet(keys)
	if err != nil {
		return fmt.Errorf("failed to read entries: %w", err)
	}

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Entries:    entries,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported %d entries", len(entries))
	return nil
}

// Import restores the store from a backup file. Existing entries with the
// same keys are overwritten; other entries are left alone.
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting store import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores the store from a backup reader (for file uploads)
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	if len(backup.Entries) > 0 {
		if err := s.store.MultiSet(backup.Entries); err != nil {
			return fmt.Errorf("failed to import entries: %w", err)
		}
	}

	log.Printf("Store import completed successfully: %d entries", len(backup.Entries))
	return nil
}
