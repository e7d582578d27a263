// Package cache stores synthesized audio in SQLite so repeated requests for
// the same text, options and resources skip the pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/ieee0824/yomiage-go/audio"
	"github.com/ieee0824/yomiage-go/internal/logger"
)

// Key identifies one synthesis result.
type Key struct {
	Text              string
	SymbolHandling    string
	SampleRate        int
	Speed             float64
	PitchShift        float64
	Dictionary        string
	DictionaryVersion int
	Voice             string
	LabelSchema       string
}

// Hash returns the hex SHA-256 of every field. Floats hash by bit pattern.
func (k Key) Hash() string {
	h := sha256.New()
	field := func(s string) {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	field(k.Text)
	field(k.SymbolHandling)
	field(strconv.Itoa(k.SampleRate))
	field(strconv.FormatUint(math.Float64bits(k.Speed), 16))
	field(strconv.FormatUint(math.Float64bits(k.PitchShift), 16))
	field(k.Dictionary)
	field(strconv.Itoa(k.DictionaryVersion))
	field(k.Voice)
	field(k.LabelSchema)
	return hex.EncodeToString(h.Sum(nil))
}

// Store is a SQLite-backed audio cache. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("cache: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS synthesis_cache (
		cache_key TEXT PRIMARY KEY,
		sample_rate INTEGER NOT NULL,
		samples BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}

	logger.Infof("[cache] opened %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Get returns the cached buffer for key. ok is false on a miss.
func (s *Store) Get(ctx context.Context, key Key) (buf *audio.Buffer, ok bool, err error) {
	var (
		rate int
		blob []byte
	)
	err = s.db.QueryRowContext(ctx,
		"SELECT sample_rate, samples FROM synthesis_cache WHERE cache_key = ?", key.Hash(),
	).Scan(&rate, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	if len(blob)%8 != 0 {
		return nil, false, fmt.Errorf("cache get: corrupt sample blob of %d bytes", len(blob))
	}
	return audio.NewBuffer(bytesToFloat64(blob), rate), true, nil
}

// Put stores buf under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key Key, buf *audio.Buffer) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO synthesis_cache (cache_key, sample_rate, samples) VALUES (?, ?, ?)",
		key.Hash(), buf.SampleRate(), float64ToBytes(buf.Samples()),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM synthesis_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("cache len: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func float64ToBytes(data []float64) []byte {
	buf := make([]byte, len(data)*8)
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func bytesToFloat64(data []byte) []float64 {
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return out
}
