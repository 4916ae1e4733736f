package store

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

const inboxFile = "inbox.json"

// inboxFileData is the on-disk layout: entries keyed by bare address.
type inboxFileData struct {
	Inboxes map[string][]domain.InboxEntry `json:"inboxes"`
}

// InboxFileStore keeps the signals seen per address, and their read state,
// in a single JSON file.
type InboxFileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewInboxFileStore stores its file under dir, creating dir on first write.
func NewInboxFileStore(dir string) *InboxFileStore {
	return &InboxFileStore{path: filepath.Join(dir, inboxFile), now: time.Now}
}

// MergeSignals adds the records not yet known for addr and returns how many
// were new. Known entries keep their read flag; one first seen unconfirmed
// takes the ledger time of a later confirmed record.
func (s *InboxFileStore) MergeSignals(addr domain.Address, records []domain.MarkerRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return 0, err
	}
	key := addr.Bare()
	entries := data.Inboxes[key]

	known := make(map[string]int, len(entries))
	for i, e := range entries {
		known[e.TxID] = i
	}
	seenAt := s.now().Unix()
	added, confirmed := 0, 0
	for _, r := range records {
		if r.TxID == "" {
			continue
		}
		if i, ok := known[r.TxID]; ok {
			if entries[i].Timestamp == 0 && r.Timestamp != 0 {
				entries[i].Timestamp = r.Timestamp
				confirmed++
			}
			continue
		}
		known[r.TxID] = len(entries)
		entries = append(entries, domain.InboxEntry{MarkerRecord: r, SeenAt: seenAt})
		added++
	}
	if added == 0 && confirmed == 0 {
		return 0, nil
	}

	sortNewestFirst(entries)
	data.Inboxes[key] = entries
	return added, writeJSON(s.path, data)
}

// MarkRead flags txid as read in every inbox that holds it.
func (s *InboxFileStore) MarkRead(txid string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, entries := range data.Inboxes {
		for i := range entries {
			if entries[i].TxID == txid && !entries[i].Read {
				entries[i].Read = true
				n++
			}
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, writeJSON(s.path, data)
}

// ListInbox returns addr's entries, newest first.
func (s *InboxFileStore) ListInbox(addr domain.Address) ([]domain.InboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	entries := data.Inboxes[addr.Bare()]
	out := make([]domain.InboxEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *InboxFileStore) load() (inboxFileData, error) {
	var data inboxFileData
	if err := readJSON(s.path, &data); err != nil {
		return inboxFileData{}, err
	}
	if data.Inboxes == nil {
		data.Inboxes = make(map[string][]domain.InboxEntry)
	}
	return data, nil
}

// sortNewestFirst orders unconfirmed entries (no timestamp) first, then by
// ledger time descending.
func sortNewestFirst(entries []domain.InboxEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Timestamp, entries[j].Timestamp
		if a == 0 || b == 0 {
			return a == 0 && b != 0
		}
		return a > b
	})
}

// Compile-time assertion that InboxFileStore implements domain.InboxStore.
var _ domain.InboxStore = (*InboxFileStore)(nil)
