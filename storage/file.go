package storage

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"badminton-bot/types"
)

// FileStore пишет историю и отчет в JSON файлы.
// Один процесс - один писатель; файловых блокировок нет.
type FileStore struct {
	dataDir     string
	historyFile string
	reportFile  string
}

func NewFileStore(dataDir, historyFile, reportFile string) *FileStore {
	return &FileStore{
		dataDir:     dataDir,
		historyFile: historyFile,
		reportFile:  reportFile,
	}
}

// LoadHistory читает прошлое состояние. Отсутствие файла - не ошибка
// (первый запуск), битый JSON - предупреждение и пустое состояние.
func (s *FileStore) LoadHistory() types.HistoryState {
	data, err := os.ReadFile(s.historyFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Println("📦 No history file found. Starting fresh.")
		} else {
			log.Printf("⚠️ Failed to load history file: %v. Starting fresh.", err)
		}
		return types.HistoryState{}
	}

	history, err := decodeHistory(data)
	if err != nil {
		log.Printf("⚠️ Failed to parse history file: %v. Starting fresh.", err)
		return types.HistoryState{}
	}
	return history
}

func (s *FileStore) SaveHistory(history types.HistoryState) error {
	if err := s.ensureDataDir(); err != nil {
		return err
	}
	data, err := encodeHistory(history)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.historyFile, data, 0o644); err != nil {
		return err
	}
	log.Printf("💾 Saved history to %s", s.historyFile)
	return nil
}

func (s *FileStore) SaveReport(days []types.DayAvailability) error {
	if err := s.ensureDataDir(); err != nil {
		return err
	}
	data, err := encodeReport(days)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.reportFile, data, 0o644); err != nil {
		return err
	}
	log.Printf("💾 Saved report to %s", s.reportFile)
	return nil
}

func (s *FileStore) ensureDataDir() error {
	return os.MkdirAll(filepath.Clean(s.dataDir), 0o755)
}
