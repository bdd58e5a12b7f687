package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"contentdesk/internal/model"
)

const (
	dirName        = ".contentdesk"
	sqliteFileName = "contentdesk.sqlite"
)

// Entity kinds used for NextID counters and event entity ids.
const (
	KindBrand    = "brand"
	KindService  = "service"
	KindPostType = "post_type"
	KindTask     = "task"
	KindEnquiry  = "enquiry"
)

type DB struct {
	Version        int                 `json:"version"`
	CurrentActorID string              `json:"currentActorId,omitempty"`
	NextIDs        map[string]int64    `json:"nextIds"`
	Actors         []model.Actor       `json:"actors"`
	Brands         []model.Brand       `json:"brands"`
	PostTypes      []model.PostType    `json:"postTypes"`
	Tasks          []model.ContentTask `json:"tasks"`
	Enquiries      []model.Enquiry     `json:"enquiries"`
}

type Store struct {
	Dir string
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

var ErrNilDB = errors.New("nil db")

// DiscoverDir walks up from start looking for a .contentdesk directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, dirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir prefers a project-local .contentdesk directory and falls back to the
// global config dir.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err == nil {
		if found, ok := DiscoverDir(cwd); ok {
			return found, nil
		}
	}
	return ConfigDir()
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) Load(ctx context.Context) (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.LoadSQLite(ctx)
}

func (s Store) Save(ctx context.Context, db *DB) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.SaveSQLite(ctx, db)
}

// NextID returns the next integer id for kind. Counters only move forward, so ids are
// never reused after a record is removed.
func (db *DB) NextID(kind string) int64 {
	if db.NextIDs == nil {
		db.NextIDs = map[string]int64{}
	}
	max := db.NextIDs[kind]
	switch kind {
	case KindBrand:
		for _, b := range db.Brands {
			max = maxInt64(max, b.ID)
		}
	case KindService:
		for _, b := range db.Brands {
			for _, sv := range b.Services {
				max = maxInt64(max, sv.ID)
			}
		}
	case KindPostType:
		for _, p := range db.PostTypes {
			max = maxInt64(max, p.ID)
		}
	case KindTask:
		for _, t := range db.Tasks {
			max = maxInt64(max, t.ID)
		}
	case KindEnquiry:
		for _, e := range db.Enquiries {
			max = maxInt64(max, e.ID)
		}
	}
	db.NextIDs[kind] = max + 1
	return max + 1
}

func maxInt64(a, b int64) int64 {
	if b > a {
		return b
	}
	return a
}

func (db *DB) FindActor(id string) (*model.Actor, bool) {
	for i := range db.Actors {
		if db.Actors[i].ID == id {
			return &db.Actors[i], true
		}
	}
	return nil, false
}

func (db *DB) FindBrand(id int64) (*model.Brand, bool) {
	for i := range db.Brands {
		if db.Brands[i].ID == id {
			return &db.Brands[i], true
		}
	}
	return nil, false
}

// FindBrandByName matches case-insensitively.
func (db *DB) FindBrandByName(name string) (*model.Brand, bool) {
	name = strings.TrimSpace(name)
	for i := range db.Brands {
		if strings.EqualFold(db.Brands[i].Name, name) {
			return &db.Brands[i], true
		}
	}
	return nil, false
}

func (db *DB) FindPostType(id int64) (*model.PostType, bool) {
	for i := range db.PostTypes {
		if db.PostTypes[i].ID == id {
			return &db.PostTypes[i], true
		}
	}
	return nil, false
}

func (db *DB) FindPostTypeByName(name string) (*model.PostType, bool) {
	name = strings.TrimSpace(name)
	for i := range db.PostTypes {
		if strings.EqualFold(db.PostTypes[i].Name, name) {
			return &db.PostTypes[i], true
		}
	}
	return nil, false
}

func (db *DB) FindTask(id int64) (*model.ContentTask, bool) {
	for i := range db.Tasks {
		if db.Tasks[i].ID == id {
			return &db.Tasks[i], true
		}
	}
	return nil, false
}

func (db *DB) FindEnquiry(id int64) (*model.Enquiry, bool) {
	for i := range db.Enquiries {
		if db.Enquiries[i].ID == id {
			return &db.Enquiries[i], true
		}
	}
	return nil, false
}

// ResolveBrand accepts a numeric id or a brand name.
func (db *DB) ResolveBrand(ref string) (*model.Brand, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if b, ok := db.FindBrand(n); ok {
			return b, nil
		}
	}
	if b, ok := db.FindBrandByName(ref); ok {
		return b, nil
	}
	return nil, NotFoundError{Kind: KindBrand, ID: ref}
}

// ResolvePostType accepts a numeric id or a post type name.
func (db *DB) ResolvePostType(ref string) (*model.PostType, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if p, ok := db.FindPostType(n); ok {
			return p, nil
		}
	}
	if p, ok := db.FindPostTypeByName(ref); ok {
		return p, nil
	}
	return nil, NotFoundError{Kind: KindPostType, ID: ref}
}

// ReplaceTask swaps in t by id; it reports false when no task has that id.
func (db *DB) ReplaceTask(t model.ContentTask) bool {
	for i := range db.Tasks {
		if db.Tasks[i].ID == t.ID {
			db.Tasks[i] = t
			return true
		}
	}
	return false
}

// ActiveBrands returns brands with the active flag set.
func (db *DB) ActiveBrands() []model.Brand {
	out := make([]model.Brand, 0, len(db.Brands))
	for _, b := range db.Brands {
		if b.Active {
			out = append(out, b)
		}
	}
	return out
}

// ParseID parses a numeric record id, accepting an optional "<kind>-" prefix.
func ParseID(kind, s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, kind+"-")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", kind, s)
	}
	return n, nil
}
