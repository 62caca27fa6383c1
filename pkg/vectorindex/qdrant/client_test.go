package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog-io/lifelog-go/pkg/vectorindex"
)

func TestCollectionInfoAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/collections/daily_summaries", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, exists, err := client.CollectionInfo(context.Background(), "daily_summaries")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCollectionInfoParsesVectorSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"config":{"params":{"vectors":{"size":768,"distance":"Cosine"}}}}}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL})
	require.NoError(t, err)

	size, exists, err := client.CollectionInfo(context.Background(), "daily_summaries")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 768, size)
}

func TestCreateCollectionSendsCosineConfig(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/collections/daily_summaries", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"result":true,"status":"ok"}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL})
	require.NoError(t, err)

	require.NoError(t, client.CreateCollection(context.Background(), "daily_summaries", 768))

	vectors, ok := body["vectors"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(768), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestUpsertSendsPoint(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/collections/daily_summaries/points", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"result":{"status":"acknowledged"},"status":"ok"}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL})
	require.NoError(t, err)

	point := &vectorindex.Point{
		ID:      vectorindex.PointID("2024-06-01"),
		Vector:  []float64{0.1, 0.2},
		Payload: map[string]interface{}{"date": "2024-06-01"},
	}
	require.NoError(t, client.Upsert(context.Background(), "daily_summaries", point))

	points, ok := body["points"].([]interface{})
	require.True(t, ok)
	require.Len(t, points, 1)
	first := points[0].(map[string]interface{})
	assert.Equal(t, "2024-06-01", first["payload"].(map[string]interface{})["date"])
}

func TestSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/collections/daily_summaries/points/search", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["with_payload"])
		assert.Equal(t, float64(5), body["limit"])

		_, _ = w.Write([]byte(`{"result":[
			{"id":14780089444035170871,"score":0.91,"payload":{"date":"2024-06-01","summary":"a day"}},
			{"id":13036798132857282503,"score":0.77,"payload":{"date":"2024-06-02","summary":"another"}}
		]}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL})
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "daily_summaries", []float64{0.1, 0.2}, 5)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, vectorindex.PointID("2024-06-01"), results[0].ID)
	assert.Equal(t, 0.91, results[0].Score)
	assert.Equal(t, "a day", results[0].Payload["summary"])
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":{"error":"wrong vector size"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL})
	require.NoError(t, err)

	err = client.Upsert(context.Background(), "daily_summaries", &vectorindex.Point{ID: 1, Vector: []float64{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong vector size")
}

func TestAPIKeyHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	_, _, err = client.CollectionInfo(context.Background(), "daily_summaries")
	require.NoError(t, err)
}
