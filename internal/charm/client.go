// ABOUTME: Charm KV client wrapper for trackwise record storage.
// ABOUTME: Provides cloud-synced key/value primitives and integer id sequences.
package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/harperreed/trackwise/internal/storage"
)

const (
	// DBName is the Charm KV database name.
	DBName    = "trackwise"
	charmHost = "charm.2389.dev"

	GoalPrefix         = "goal:"
	ProgressPrefix     = "progress:"
	ConversationPrefix = "conversation:"
	MessagePrefix      = "message:"
	seqPrefix          = "seq:"
)

// ErrReadOnly is returned for writes while another process holds the database lock.
var ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

// kvStore is the subset of *kv.KV the client uses.
type kvStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
	IsReadOnly() bool
	Close() error
}

// Options configures Open. Empty fields use the defaults.
type Options struct {
	Host    string
	DataDir string
	DBName  string
}

// Client is a storage.Repository backed by Charm KV.
type Client struct {
	kv       kvStore
	autoSync bool
	mu       sync.RWMutex
	seqMu    sync.Mutex
}

var _ storage.Repository = (*Client)(nil)

// Configure points the Charm libraries at the configured host and data directory
// and returns the KV database name. Open calls it; commands that use kv directly must too.
func Configure(opts Options) (string, error) {
	host := opts.Host
	if host == "" {
		host = charmHost
	}
	// Set server before opening KV
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return "", err
	}
	if opts.DataDir != "" {
		if err := os.Setenv("CHARM_DATA_DIR", opts.DataDir); err != nil {
			return "", err
		}
	}

	if opts.DBName == "" {
		return DBName, nil
	}
	return opts.DBName, nil
}

// Open opens the Charm KV database and pulls remote data unless read-only.
func Open(opts Options) (*Client, error) {
	name, err := Configure(opts)
	if err != nil {
		return nil, err
	}
	db, err := kv.OpenWithDefaultsFallback(name)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	c := newClient(db)
	// Pull remote data on startup (skip in read-only mode)
	if !db.IsReadOnly() {
		_ = db.Sync()
	}
	return c, nil
}

func newClient(store kvStore) *Client {
	return &Client{kv: store, autoSync: true}
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// syncIfEnabled calls Sync if autoSync is enabled.
func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// set stores a value with the given key.
func (c *Client) set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}

	if err := c.kv.Set([]byte(key), data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// delete removes keys, syncing once afterwards.
func (c *Client) delete(keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}

	for _, key := range keys {
		if err := c.kv.Delete([]byte(key)); err != nil {
			return err
		}
	}
	c.syncIfEnabled()
	return nil
}

// get returns the value stored at key, or storage.ErrNotFound.
func (c *Client) get(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}
	want := []byte(key)
	for _, k := range keys {
		if bytes.Equal(k, want) {
			return c.kv.Get(k)
		}
	}
	return nil, storage.ErrNotFound
}

// listByPrefix returns all values with keys matching the given prefix.
func (c *Client) listByPrefix(prefix string) ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var results [][]byte
	prefixBytes := []byte(prefix)

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		if bytes.HasPrefix(key, prefixBytes) {
			val, err := c.kv.Get(key)
			if err != nil {
				return nil, err
			}
			results = append(results, val)
		}
	}

	return results, nil
}

// nextID returns the id to store a new record under. A non-zero id is kept and
// advances the sequence so later allocations never collide with it.
func (c *Client) nextID(kind string, id int64) (int64, error) {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()

	key := seqPrefix + kind
	var last int64
	data, err := c.get(key)
	switch {
	case err == nil:
		last, err = strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s sequence: %w", kind, err)
		}
	case !errors.Is(err, storage.ErrNotFound):
		return 0, err
	}

	if id == 0 {
		id = last + 1
	}
	if id > last {
		if err := c.set(key, []byte(strconv.FormatInt(id, 10))); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func recordKey(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

// getRecord loads and decodes the record stored at prefix+id.
func getRecord[T any](c *Client, prefix, kind string, id int64) (*T, error) {
	data, err := c.get(recordKey(prefix, id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s %d: %w", kind, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	rec, err := unmarshalJSON[T](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", kind, err)
	}
	return rec, nil
}

// listRecords decodes every record under prefix that keep accepts.
func listRecords[T any](c *Client, prefix string, keep func(*T) bool) ([]*T, error) {
	allData, err := c.listByPrefix(prefix)
	if err != nil {
		return nil, err
	}

	var out []*T
	for _, data := range allData {
		rec, err := unmarshalJSON[T](data)
		if err != nil {
			continue // Skip invalid entries
		}
		if keep == nil || keep(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// putRecord encodes v and stores it at prefix+id.
func (c *Client) putRecord(prefix, kind string, id int64, v any) error {
	data, err := marshalJSON(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	return c.set(recordKey(prefix, id), data)
}

// unmarshalJSON is a helper to unmarshal JSON data.
func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// marshalJSON is a helper to marshal data to JSON.
func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

// applyLimit truncates s to limit when limit is positive.
func applyLimit[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

// sortNewestFirst orders by t descending, then id descending.
func sortNewestFirst[T any](s []*T, at func(*T) (int64, int64)) {
	sort.SliceStable(s, func(i, j int) bool {
		ti, idi := at(s[i])
		tj, idj := at(s[j])
		if ti != tj {
			return ti > tj
		}
		return idi > idj
	})
}
