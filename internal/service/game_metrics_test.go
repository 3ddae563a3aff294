package service

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studyhub/internal/config"
	"studyhub/internal/game"
	"studyhub/internal/llm"
	"studyhub/internal/metrics"
)

// externalCalls reads studyhub_external_calls_total for one label pair from the default registry.
func externalCalls(t *testing.T, collaborator, outcome string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "studyhub_external_calls_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["collaborator"] == collaborator && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestGameGenerationCountsOneGeminiCall(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		body, err := json.Marshal(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content":      map[string]interface{}{"parts": []map[string]string{{"text": pairsJSON(game.PairCount)}}},
				"finishReason": "STOP",
			}},
		})
		require.NoError(t, err)
		w.Write(body)
	}))
	defer srv.Close()

	cfg := &config.AIConfig{APIKey: "test-key", BaseURL: srv.URL, TimeoutMS: 1000, RequestsPerMin: 600}
	client, err := llm.NewClient(cfg, "gemini-test", zap.NewNop(), llm.WithJSONResponses())
	require.NoError(t, err)

	svc := NewGameService(client, newMemGameCache(), newMemLeaderboard(), newMemProfileRepo(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	svc.newRNG = func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

	geminiBefore := externalCalls(t, metrics.Gemini, "ok")
	gamesBefore := externalCalls(t, metrics.Games, "ok")

	view, err := svc.Start(context.Background(), student, game.KindMatching, &StartGameInput{Topic: "cells"})
	require.NoError(t, err)
	assert.Equal(t, game.PhaseReady, view.Phase)

	assert.Equal(t, int32(1), requests.Load())
	assert.Equal(t, 1.0, externalCalls(t, metrics.Gemini, "ok")-geminiBefore)
	assert.Equal(t, 1.0, externalCalls(t, metrics.Games, "ok")-gamesBefore)
}
