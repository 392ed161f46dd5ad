package store

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"runtime/debug"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"tfidx/internal/domain"
	"tfidx/internal/index"
)

var (
	bucketPostings = []byte("postings")
	bucketDocs     = []byte("docs")
	bucketMeta     = []byte("meta")
	keyTotalDocs   = []byte("total_docs")
	allBuckets     = [][]byte{bucketPostings, bucketDocs, bucketMeta}
)

// BoltStore persists an index snapshot in a single bbolt file.
type BoltStore struct {
	db   *bbolt.DB
	path string
}

// NewBoltStore opens or creates a writable snapshot file.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bolt db %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return errors.Wrapf(err, "failed to create bucket %s", b)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, path: path}, nil
}

// OpenBoltStore opens an existing snapshot read-only.
func OpenBoltStore(path string) (st *BoltStore, err error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(domain.ErrUnreadableSource, "%s: %v", path, err)
	}

	defer recoverCorrupt(path, &err)()
	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(domain.ErrCorruptSnapshot, "%s: %v", path, err)
	}
	return &BoltStore{db: db, path: path}, nil
}

// recoverCorrupt turns a panic raised while reading damaged pages into
// domain.ErrCorruptSnapshot. bbolt reads through a memory map, so faults on
// it are made recoverable for the duration of the call.
func recoverCorrupt(path string, err *error) func() {
	prev := debug.SetPanicOnFault(true)
	return func() {
		debug.SetPanicOnFault(prev)
		if r := recover(); r != nil {
			*err = errors.Wrapf(domain.ErrCorruptSnapshot, "%s: %v", path, r)
		}
	}
}

func (s *BoltStore) Path() string {
	return s.path
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Titles and terms are stored as bytes so corpora that are not valid UTF-8
// survive encoding/json unchanged.
type docMeta struct {
	Title   []byte      `json:"title"`
	Length  int         `json:"length"`
	Terms   []termCount `json:"terms"`
	MaxFreq int         `json:"max_freq"`
}

type termCount struct {
	Term  []byte `json:"term"`
	Count int    `json:"count"`
}

func newDocMeta(doc index.Document) docMeta {
	terms := make([]termCount, 0, len(doc.WordCount))
	for token, n := range doc.WordCount {
		terms = append(terms, termCount{Term: []byte(token), Count: n})
	}
	sort.Slice(terms, func(i, j int) bool {
		return string(terms[i].Term) < string(terms[j].Term)
	})
	return docMeta{
		Title:   []byte(doc.Title),
		Length:  doc.Length,
		Terms:   terms,
		MaxFreq: doc.MaxFreq,
	}
}

func (m docMeta) document(id int) (index.Document, error) {
	wordCount := make(map[string]int, len(m.Terms))
	for _, tc := range m.Terms {
		token := string(tc.Term)
		if _, dup := wordCount[token]; dup {
			return index.Document{}, errors.Wrapf(domain.ErrCorruptSnapshot, "document %d lists %q twice", id, token)
		}
		wordCount[token] = tc.Count
	}
	return index.Document{
		ID:        id,
		Title:     string(m.Title),
		Length:    m.Length,
		WordCount: wordCount,
		MaxFreq:   m.MaxFreq,
	}, nil
}

// Snapshot replaces the stored index with idx in one transaction, so a
// failed write never leaves a partial index behind.
func (s *BoltStore) Snapshot(idx *index.Index, info SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := clearBuckets(tx); err != nil {
			return err
		}

		postings := tx.Bucket(bucketPostings)
		for _, token := range idx.Tokens() {
			set, _ := idx.Postings(token)
			data, err := json.Marshal(set.Sorted())
			if err != nil {
				return err
			}
			if err := postings.Put([]byte(token), data); err != nil {
				return errors.Wrapf(err, "failed to store postings for %q", token)
			}
		}

		docs := tx.Bucket(bucketDocs)
		for _, doc := range idx.Docs() {
			data, err := json.Marshal(newDocMeta(doc))
			if err != nil {
				return err
			}
			if err := docs.Put(itob(doc.ID), data); err != nil {
				return errors.Wrapf(err, "failed to store document %d", doc.ID)
			}
		}

		meta := tx.Bucket(bucketMeta)
		total, err := json.Marshal(idx.TotalDocs())
		if err != nil {
			return err
		}
		if err := meta.Put(keyTotalDocs, total); err != nil {
			return err
		}
		return putSchemaInfo(meta, info)
	})
}

// Restore loads the stored index and checks its invariants. Anything that
// cannot be decoded into a valid index is reported as domain.ErrCorruptSnapshot,
// including damaged pages that make bbolt panic.
func (s *BoltStore) Restore() (idx *index.Index, info SchemaInfo, err error) {
	defer recoverCorrupt(s.path, &err)()

	err = s.db.View(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if tx.Bucket(name) == nil {
				return errors.Wrapf(domain.ErrCorruptSnapshot, "missing bucket %s", name)
			}
		}

		meta := tx.Bucket(bucketMeta)
		var err error
		info, err = getSchemaInfo(meta)
		if err != nil {
			return err
		}
		if info.Version != CurrentSchemaVersion {
			return errors.Wrapf(domain.ErrCorruptSnapshot, "schema version %d, want %d", info.Version, CurrentSchemaVersion)
		}

		var totalDocs int
		data := meta.Get(keyTotalDocs)
		if data == nil {
			return errors.Wrap(domain.ErrCorruptSnapshot, "missing document count")
		}
		if err := json.Unmarshal(data, &totalDocs); err != nil {
			return errors.Wrapf(domain.ErrCorruptSnapshot, "document count: %v", err)
		}

		postings := make(map[string]index.PostingSet)
		err = tx.Bucket(bucketPostings).ForEach(func(k, v []byte) error {
			var ids []int
			if err := json.Unmarshal(v, &ids); err != nil {
				return errors.Wrapf(domain.ErrCorruptSnapshot, "postings for %q: %v", k, err)
			}
			postings[string(k)] = index.NewPostingSet(ids...)
			return nil
		})
		if err != nil {
			return err
		}

		docs := make(map[int]index.Document)
		err = tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return errors.Wrapf(domain.ErrCorruptSnapshot, "bad document key %x", k)
			}
			var m docMeta
			if err := json.Unmarshal(v, &m); err != nil {
				return errors.Wrapf(domain.ErrCorruptSnapshot, "document %x: %v", k, err)
			}
			id := btoi(k)
			doc, err := m.document(id)
			if err != nil {
				return err
			}
			docs[id] = doc
			return nil
		})
		if err != nil {
			return err
		}

		idx = index.New(postings, docs, totalDocs)
		return idx.Validate()
	})
	if err != nil {
		return nil, SchemaInfo{}, err
	}
	return idx, info, nil
}

func clearBuckets(tx *bbolt.Tx) error {
	for _, name := range allBuckets {
		if tx.Bucket(name) != nil {
			if err := tx.DeleteBucket(name); err != nil {
				return errors.Wrapf(err, "failed to clear bucket %s", name)
			}
		}
		if _, err := tx.CreateBucket(name); err != nil {
			return errors.Wrapf(err, "failed to create bucket %s", name)
		}
	}
	return nil
}

func itob(v int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int {
	return int(binary.BigEndian.Uint64(b))
}
