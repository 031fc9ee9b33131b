package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodiesEqualIgnoresVolatileFields(t *testing.T) {
	ignore := splitFields("created_at, updated_at")
	a := []byte(`[{"id":1,"title":"Kajian","updated_at":"2025-01-01T00:00:00Z"}]`)
	b := []byte(`[{"title":"Kajian","id":1.0,"updated_at":"2025-02-02T00:00:00Z"}]`)

	assert.True(t, bodiesEqual(a, b, ignore))
	assert.False(t, bodiesEqual(a, b, nil))
	assert.False(t, bodiesEqual([]byte(`{"id":1}`), []byte(`not json`), ignore))
}

func TestComparerRunKeepsOrderAndFlagsBreakingDiffs(t *testing.T) {
	goSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/events" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer goSrv.Close()
	legacySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer legacySrv.Close()

	cmp := &comparer{client: goSrv.Client(), goBase: goSrv.URL, legacyBase: legacySrv.URL}
	results := cmp.run(context.Background(), []target{
		{Path: "/api/content/artikel", Critical: true},
		{Path: "api/events", Critical: true},
	}, 2)

	require.Len(t, results, 2)
	assert.Equal(t, "/api/content/artikel", results[0].Target.Path)
	assert.False(t, results[0].breaking())
	assert.True(t, results[1].breaking())
	assert.False(t, results[1].StatusMatch)

	var out bytes.Buffer
	printReport(&out, results)
	assert.Contains(t, out.String(), "[DIFF]  api/events")
}
