package database

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const observedDriver = "sqlite3_observed"

// observer backs the SQL function observe(tag): it records the tag and
// whether the executor's mutex was held while the engine evaluated it.
// When tag equals pauseOn the call blocks until release is closed.
var observer struct {
	mu      sync.Mutex
	exec    *Executor
	events  []string
	held    []bool
	pauseOn string
	paused  chan struct{}
	release chan struct{}
}

func init() {
	sql.Register(observedDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(c *sqlite3.SQLiteConn) error {
			return c.RegisterFunc("observe", observe, false)
		},
	})
}

func observe(tag string) string {
	held := !observer.exec.mu.TryLock()
	if !held {
		observer.exec.mu.Unlock()
	}

	observer.mu.Lock()
	observer.events = append(observer.events, tag)
	observer.held = append(observer.held, held)
	pause := tag == observer.pauseOn
	observer.mu.Unlock()

	if pause {
		close(observer.paused)
		<-observer.release
	}
	return tag
}

func newObservedExecutor(t *testing.T, pauseOn string) *Executor {
	t.Helper()
	exec, err := Open(context.Background(), DefaultConfig(), Dialect{Driver: DriverSQLite, DriverName: observedDriver})
	require.NoError(t, err)
	t.Cleanup(func() { _ = exec.Close() })

	observer.mu.Lock()
	observer.exec = exec
	observer.events = nil
	observer.held = nil
	observer.pauseOn = pauseOn
	observer.paused = make(chan struct{})
	observer.release = make(chan struct{})
	observer.mu.Unlock()
	return exec
}

func TestExecutor_LockHeldWhileFetching(t *testing.T) {
	exec := newObservedExecutor(t, "")

	rs, err := exec.RunQuery(context.Background(),
		"SELECT observe('row' || column1) AS tag FROM (VALUES (1), (2), (3))", nil)
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 3)

	assert.Equal(t, []string{"row1", "row2", "row3"}, observer.events)
	assert.Equal(t, []bool{true, true, true}, observer.held)
}

func TestExecutor_CallersDoNotInterleave(t *testing.T) {
	exec := newObservedExecutor(t, "a1")
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := exec.RunQuery(ctx, "SELECT observe('a' || column1) FROM (VALUES (1), (2), (3))", nil)
		assert.NoError(t, err)
	}()

	<-observer.paused
	go func() {
		defer wg.Done()
		_, err := exec.RunStatement(ctx, "SELECT observe('b')", nil)
		assert.NoError(t, err)
	}()

	// Give the second caller time to reach the executor while the first is
	// still inside its fetch loop.
	time.Sleep(50 * time.Millisecond)
	close(observer.release)
	wg.Wait()

	assert.Equal(t, []string{"a1", "a2", "a3", "b"}, observer.events)
}
