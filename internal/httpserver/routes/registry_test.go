package routes

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
)

func TestGroupsRegisteredFromInit(t *testing.T) {
	assert.ElementsMatch(t, []string{"bookmarks", "ops"}, Groups())
}

func TestRegisterAllMountsEveryGroup(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := deps.Deps{
		Logger:          logger.FromZap(zap.New(core)),
		Metrics:         metrics.New("test"),
		RateLimitBurst:  5,
		RateLimitPerMin: 30,
	}

	r := chi.NewRouter()
	RegisterAll(r, d)

	mounted := map[string]bool{}
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		mounted[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	for _, want := range []string{
		"GET /",
		"POST /add",
		"GET /edit/{id}",
		"POST /edit/{id}",
		"GET /delete/{id}",
		"GET /categories",
		"GET /healthz",
		"GET /readyz",
		"GET /infra",
		"GET /metrics",
	} {
		assert.True(t, mounted[want], "route %s not mounted", want)
	}

	entries := logs.FilterMessage("route group mounted").All()
	require.Len(t, entries, len(Groups()))
	groups := make([]string, 0, len(entries))
	for _, e := range entries {
		groups = append(groups, e.ContextMap()["group"].(string))
	}
	assert.Equal(t, Groups(), groups)
}
