package swiftnote_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/swiftnote"
	"github.com/aretw0/swiftnote/pkg/core"
)

// Example_basic creates notes through a session and reads them back newest first.
func Example_basic() {
	ctx := context.Background()

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store, err := swiftnote.New("", swiftnote.WithAdapter(swiftnote.AdapterMemory), swiftnote.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	notes := swiftnote.NewSession(store, nil)
	if err := notes.Load(ctx); err != nil {
		log.Fatal(err)
	}

	first, _ := notes.Add(ctx, swiftnote.Draft{Title: "Groceries", Content: "Milk"})
	_, _ = notes.Add(ctx, swiftnote.Draft{Title: "Todo", Content: "Call dentist"})
	_ = notes.Edit(ctx, first.ID, swiftnote.Patch{Content: core.StringPtr("Milk, eggs")})

	for _, n := range notes.Notes() {
		fmt.Printf("%d %s: %s\n", n.ID, n.Title, n.Content)
	}
	// Output:
	// 1 Groceries: Milk, eggs
	// 2 Todo: Call dentist
}

// ExampleStore_Search shows a direct store query without a session.
func ExampleStore_Search() {
	ctx := context.Background()

	store, err := swiftnote.Open(ctx, "", swiftnote.WithAdapter(swiftnote.AdapterMemory))
	if err != nil {
		log.Fatal(err)
	}

	_, _ = store.Create(ctx, swiftnote.Draft{Title: "Groceries", Content: "Milk"})
	_, _ = store.Create(ctx, swiftnote.Draft{Title: "Todo", Content: "Buy milk"})

	found, err := store.Search(ctx, "Milk")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(found), found[0].Title)
	// Output:
	// 1 Groceries
}
