package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperimentService_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/core/experiments", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("page_size"))
		_, _ = w.Write([]byte(`{
			"metadata":{"pagination":{"pageSize":20,"currentPage":0,"totalCount":2,"totalPages":1}},
			"result":[
				{"uri":"dev:expt/trial-a","name":"Trial A","start_date":"2026-03-01"},
				{"uri":"dev:expt/trial-b","name":"Trial B","start_date":"2026-04-01"}
			]}`))
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)
	experiments, pagination, err := c.Experiments().List(context.Background(), ListOptions{PageSize: 20})
	require.NoError(t, err)
	require.Len(t, experiments, 2)
	assert.Equal(t, "dev:expt/trial-a", experiments[0].URI)
	assert.Equal(t, "Trial B", experiments[1].Name)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestExperimentService_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/core/experiments/dev:expt%2Ftrial-a", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"metadata":{"pagination":{}},"result":{"uri":"dev:expt/trial-a","name":"Trial A","objective":"yield"}}`))
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)
	experiment, err := c.Experiments().Get(context.Background(), "dev:expt/trial-a")
	require.NoError(t, err)
	assert.Equal(t, "Trial A", experiment.Name)
	assert.Equal(t, "yield", experiment.Objective)
}

func TestExperimentService_Get_RequiresURI(t *testing.T) {
	c, err := New("http://unused.invalid")
	require.NoError(t, err)
	_, err = c.Experiments().Get(context.Background(), "")
	assert.Error(t, err)
}

func TestScientificObjectService_List_FiltersByExperiment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/core/scientific_objects", r.URL.Path)
		assert.Equal(t, "dev:expt/trial-a", r.URL.Query().Get("experiment"))
		_, _ = w.Write([]byte(`{"metadata":{"pagination":{"totalCount":1}},"result":[{"uri":"dev:so/plot-1","name":"Plot 1","rdf_type":"vocabulary:Plot"}]}`))
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)
	objects, _, err := c.ScientificObjects().List(context.Background(), ScientificObjectListOptions{Experiment: "dev:expt/trial-a"})
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "vocabulary:Plot", objects[0].Type)
}
