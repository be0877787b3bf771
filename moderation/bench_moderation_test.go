package moderation

import (
	"direct-chat/repositories"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// Measures the startup cost of moderation with a large blacklist: seeding,
// loading it back from Badger and building the automaton.
func Test_Moderation_Benchmark(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping moderation benchmark in short mode")
	}
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()
	blacklist := repositories.NewBlacklistRepository(db)

	wordCount := 100_000

	// --- Phase 1: SEEDING ---
	startSeed := time.Now()
	wb := db.NewWriteBatch()
	for i := 0; i < wordCount; i++ {
		req.NoError(wb.Set([]byte(fmt.Sprintf("blacklist:word%d", i)), nil))
	}
	req.NoError(wb.Flush())
	t.Logf("Seeding %d words: %v", wordCount, time.Since(startSeed))

	// --- Phase 2: LOADING ---
	startLoad := time.Now()
	words, err := blacklist.Words()
	req.NoError(err)
	req.Len(words, wordCount)
	t.Logf("Loading from Badger: %v", time.Since(startLoad))

	// --- Phase 3: BUILDING AHO-CORASICK ---
	startBuild := time.Now()
	mod, err := NewModerator(words, replacementChar, log)
	req.NoError(err)
	t.Logf("Building AC Automaton: %v", time.Since(startBuild))
	t.Logf("Total startup time for moderation: %v", time.Since(startLoad))

	content, found := mod.Censor("say word42 twice")
	req.Equal("say ****** twice", content)
	req.NotEmpty(found)
}
