package fs_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swiftnote/pkg/core"
)

// TestConcurrency_ExternalVsInternal runs inserts and edits while another
// actor scribbles files into the same directory and a watcher observes.
// Every id handed out must stay unique and every note must stay readable.
func TestConcurrency_ExternalVsInternal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	repo, dir := setupRepo(t)
	require.NoError(t, repo.Initialize(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stream, err := repo.Watch(ctx, "")
	require.NoError(t, err)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			path := filepath.Join(dir, fmt.Sprintf("noise-%d.txt", rand.Intn(10)))
			_ = os.WriteFile(path, []byte(time.Now().String()), 0644)
			time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
		}
	}()

	var (
		mu  sync.Mutex
		ids = map[int64]bool{}
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				id, err := repo.Insert(context.Background(), core.Note{Title: "data", Content: "Internal Data"})
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				assert.False(t, ids[id], "id %d handed out twice", id)
				ids[id] = true
				mu.Unlock()

				err = repo.Put(context.Background(), core.Note{ID: id, Title: "data", Content: "edited"})
				assert.NoError(t, err)
				time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range stream {
		}
	}()

	wg.Wait()

	notes, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, notes, len(ids))
	for _, n := range notes {
		assert.Equal(t, "edited", n.Content)
	}
}
