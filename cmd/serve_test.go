package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postProcess(t *testing.T, query, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/process"+query, strings.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)
	return rec
}

func TestServeHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServeProcessUTM(t *testing.T) {
	body := "Easting,Northing,Elevation\n407755.99,1420175.89,29.11\n407760.0,1420180.0,31.0\n"
	rec := postProcess(t, "?utm_zone=44&utm_hemisphere=N", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Descriptor struct {
			Type string `json:"type"`
		} `json:"descriptor"`
		Statistics struct {
			TotalPoints int `json:"total_points"`
		} `json:"statistics"`
		Features struct {
			Type     string            `json:"type"`
			Features []json.RawMessage `json:"features"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "utm", resp.Descriptor.Type)
	assert.Equal(t, 2, resp.Statistics.TotalPoints)
	assert.Equal(t, "FeatureCollection", resp.Features.Type)
	assert.Len(t, resp.Features.Features, 2)
}

func TestServeProcessWithoutCoordinatesOmitsFeatures(t *testing.T) {
	rec := postProcess(t, "", "Elevation\n10\n12\n")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "statistics")
	assert.NotContains(t, resp, "features")
}

func TestServeProcessBadCSV(t *testing.T) {
	rec := postProcess(t, "", "a,b\n1,2,3\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeProcessBadQuery(t *testing.T) {
	rec := postProcess(t, "?utm_zone=forty-four", "Easting,Northing\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeProcessSchemaErrorIs422(t *testing.T) {
	// utm mode without easting/northing columns is a data problem.
	rec := postProcess(t, "?coordinate_system=utm&utm_zone=44", "Elevation\n10\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServeProcessMissingZoneIs422(t *testing.T) {
	rec := postProcess(t, "?coordinate_system=utm", "Easting,Northing\n407755.99,1420175.89\n")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "zone")
}
