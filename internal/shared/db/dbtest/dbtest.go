// Package dbtest opens throwaway stores for package tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"userpost-service/configs"
	"userpost-service/internal/shared/db"
)

var seq atomic.Int64

// NewStore returns a store on a private in-memory sqlite database, migrated
// with models, and closes it when the test ends.
func NewStore(t testing.TB, models ...any) *db.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &configs.Config{
		DBDriver: "sqlite",
		DBPath:   fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1)),
	}
	s, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(s.Close)
	if len(models) > 0 {
		if err := s.Base.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return s
}
