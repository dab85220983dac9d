package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FlatIndex is a brute-force cosine-distance index over normalized vectors.
// Entries are keyed by document ID; re-adding an existing ID replaces its
// vector, so upserts do not need a separate remove step.
type FlatIndex struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	byID       map[string]int
	mu         sync.RWMutex
}

// NewFlatIndex creates a flat index with the given dimension.
func NewFlatIndex(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &FlatIndex{
		dimensions: dimensions,
		byID:       make(map[string]int),
	}, nil
}

// Add stores vectors under the given IDs, replacing any existing entries.
func (f *FlatIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != f.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), f.dimensions)
		}
		vec := make([]float32, f.dimensions)
		copy(vec, vectors[i])
		if pos, ok := f.byID[id]; ok {
			f.vectors[pos] = vec
			continue
		}
		f.byID[id] = len(f.ids)
		f.ids = append(f.ids, id)
		f.vectors = append(f.vectors, vec)
	}
	return nil
}

// Search returns the k entries closest to query, ascending by cosine distance.
func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), f.dimensions)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if k <= 0 || len(f.ids) == 0 {
		return nil, nil
	}
	results := make([]*Result, len(f.ids))
	for i, vec := range f.vectors {
		var dot float64
		for j := 0; j < f.dimensions; j++ {
			dot += float64(query[j] * vec[j])
		}
		results[i] = &Result{ID: f.ids[i], Distance: 1 - dot}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Remove deletes vectors by ID. Unknown IDs are ignored.
func (f *FlatIndex) Remove(ctx context.Context, ids []string) error {
	removeSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		removeSet[id] = true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	newIDs := make([]string, 0, len(f.ids))
	newVectors := make([][]float32, 0, len(f.vectors))
	newByID := make(map[string]int, len(f.byID))
	for i, id := range f.ids {
		if removeSet[id] {
			continue
		}
		newByID[id] = len(newIDs)
		newIDs = append(newIDs, id)
		newVectors = append(newVectors, f.vectors[i])
	}
	f.ids = newIDs
	f.vectors = newVectors
	f.byID = newByID
	return nil
}

// Save persists the index to path. Directory is created if needed.
// Format: dimensions (4), count (4), then per entry: idLen (4), id bytes,
// vector (dimensions*4 bytes), all little-endian.
func (f *FlatIndex) Save(path string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer out.Close()
	if err := binary.Write(out, binary.LittleEndian, uint32(f.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(len(f.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range f.ids {
		idBytes := []byte(id)
		if err := binary.Write(out, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := out.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := out.Write(float32sToBytes(f.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the index from path and replaces the in-memory contents.
// Dimensions must match. A missing file is not an error; the index is left empty.
func (f *FlatIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	in, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer in.Close()
	var dim, n uint32
	if err := binary.Read(in, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != f.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", dim, f.dimensions)
	}
	if err := binary.Read(in, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = make([]string, 0, n)
	f.vectors = make([][]float32, 0, n)
	f.byID = make(map[string]int, n)
	buf := make([]byte, f.dimensions*4)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(in, binary.LittleEndian, &idLen); err != nil {
			return fmt.Errorf("read id len: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(in, idBytes); err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		if _, err := io.ReadFull(in, buf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		id := string(idBytes)
		f.byID[id] = len(f.ids)
		f.ids = append(f.ids, id)
		f.vectors = append(f.vectors, bytesToFloat32s(buf))
	}
	return nil
}

// Size returns the number of vectors in the index.
func (f *FlatIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// Close is a no-op for FlatIndex.
func (f *FlatIndex) Close() error {
	return nil
}

func float32sToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32s(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
