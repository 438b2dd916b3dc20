// Package sweep persists pending sweeps so reconciliation can run across
// process restarts without the caller re-supplying the expected transfers.
package sweep

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

const DefaultLedgerFileName = ".decent-sweeps.json"

// Status is the lifecycle state of a recorded sweep.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Record is one tracked sweep, keyed by its correlation id.
type Record struct {
	Wallet        string    `json:"wallet"`
	JettonMaster  string    `json:"jettonMaster"`
	CorrelationID string    `json:"correlationId"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	ResolvedAt    time.Time `json:"resolvedAt,omitempty"`
}

// Ledger is a JSON-file-backed record store. Writes go through a temp file
// and rename so a crash mid-save never corrupts the ledger.
type Ledger struct {
	filePath string
	mu       sync.RWMutex
	records  map[string]*Record
}

type ledgerFile struct {
	Records map[string]*Record `json:"records"`
}

// NewLedger opens the ledger at filePath, defaulting to the home directory.
// A missing file is not an error; it is created on first save.
func NewLedger(filePath string) (*Ledger, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultLedgerFileName)
	}

	ledger := &Ledger{
		filePath: filePath,
		records:  make(map[string]*Record),
	}
	if err := ledger.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load sweep ledger: %w", err)
		}
	}
	return ledger, nil
}

func (l *Ledger) load() error {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return err
	}

	var file ledgerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal sweep ledger: %w", err)
	}

	l.records = file.Records
	if l.records == nil {
		l.records = make(map[string]*Record)
	}
	return nil
}

// save writes the ledger under the read lock the caller already dropped;
// callers mutate under the write lock first, then call save.
func (l *Ledger) save() error {
	l.mu.RLock()
	data, err := json.MarshalIndent(ledgerFile{Records: l.records}, "", "  ")
	l.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal sweep ledger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tempFile := l.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write sweep ledger: %w", err)
	}
	if err := os.Rename(tempFile, l.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Track records a newly requested sweep as pending.
func (l *Ledger) Track(wallet, jettonMaster, correlationID string) error {
	l.mu.Lock()
	if _, exists := l.records[correlationID]; exists {
		l.mu.Unlock()
		return fmt.Errorf("sweep '%s' already tracked", correlationID)
	}
	l.records[correlationID] = &Record{
		Wallet:        wallet,
		JettonMaster:  jettonMaster,
		CorrelationID: correlationID,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	l.mu.Unlock()

	return l.save()
}

// MarkResolved moves a tracked sweep to its terminal status. Resolving an
// already-resolved record is a no-op, so reconciliation passes can overlap.
func (l *Ledger) MarkResolved(correlationID string, status Status) error {
	l.mu.Lock()
	record, exists := l.records[correlationID]
	if !exists {
		l.mu.Unlock()
		return fmt.Errorf("sweep '%s' not tracked", correlationID)
	}
	if record.Status != StatusPending {
		l.mu.Unlock()
		return nil
	}
	record.Status = status
	record.ResolvedAt = time.Now().UTC()
	l.mu.Unlock()

	return l.save()
}

// Pending returns the correlation records still awaiting reconciliation,
// oldest first.
func (l *Ledger) Pending() []swap.CorrelationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pending := make([]*Record, 0)
	for _, record := range l.records {
		if record.Status == StatusPending {
			pending = append(pending, record)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	out := make([]swap.CorrelationRecord, 0, len(pending))
	for _, record := range pending {
		out = append(out, swap.CorrelationRecord{
			Wallet:        record.Wallet,
			CorrelationID: record.CorrelationID,
		})
	}
	return out
}

// Get returns the tracked record for a correlation id.
func (l *Ledger) Get(correlationID string) (*Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	record, exists := l.records[correlationID]
	if !exists {
		return nil, fmt.Errorf("sweep '%s' not tracked", correlationID)
	}
	copied := *record
	return &copied, nil
}

// Count returns the total number of tracked sweeps.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// FilePath returns the backing file path.
func (l *Ledger) FilePath() string {
	return l.filePath
}
