package hass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hactl/internal/domain"
	"hactl/internal/pkg/logger"
)

const testTokenVar = "HACTL_TEST_TOKEN"

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv(testTokenVar, "secret")
	return New(srv.URL, testTokenVar, 5*time.Second, logger.NewStd(false))
}

func TestFetchEntities(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/states", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("auth header = %q", got)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"entity_id":  "light.kitchen_main",
				"state":      "on",
				"attributes": map[string]any{"friendly_name": "Kitchen Light"},
			},
		})
	})
	mux.HandleFunc("/api/template", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"light.kitchen_main": "kitchen"}`))
	})

	c := newTestClient(t, mux)
	entities, err := c.FetchEntities(context.Background())
	if err != nil {
		t.Fatalf("FetchEntities: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}
	e := entities[0]
	if e.Domain != "light" || e.ObjectID != "kitchen_main" {
		t.Errorf("entity id split = %q/%q", e.Domain, e.ObjectID)
	}
	if e.FriendlyName != "Kitchen Light" {
		t.Errorf("friendly name = %q", e.FriendlyName)
	}
	if e.AreaID != "kitchen" {
		t.Errorf("area = %q, want kitchen", e.AreaID)
	}
}

func TestRenderTemplate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/template", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["template"] != "{{ states('light.kitchen_main') }}" {
			t.Errorf("template = %q", body["template"])
		}
		w.Write([]byte("on"))
	})

	c := newTestClient(t, mux)
	rendered, err := c.RenderTemplate(context.Background(), "{{ states('light.kitchen_main') }}")
	if err != nil {
		t.Fatalf("RenderTemplate: %v", err)
	}
	if rendered != "on" {
		t.Errorf("rendered = %q, want on", rendered)
	}
}

func TestFetchEntitiesAreaLookupDegrades(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/states", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"entity_id": "light.bedroom", "state": "off", "attributes": map[string]any{}},
		})
	})
	mux.HandleFunc("/api/template", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "template error", http.StatusBadRequest)
	})

	c := newTestClient(t, mux)
	entities, err := c.FetchEntities(context.Background())
	if err != nil {
		t.Fatalf("FetchEntities: %v", err)
	}
	if entities[0].AreaID != "" {
		t.Errorf("area = %q, want empty on template failure", entities[0].AreaID)
	}
}

func TestFetchServicesFlattens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/services", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"domain": "light",
				"services": map[string]any{
					"turn_on":  map[string]any{"description": "Turn on"},
					"turn_off": map[string]any{"description": "Turn off"},
				},
			},
		})
	})

	c := newTestClient(t, mux)
	services, err := c.FetchServices(context.Background())
	if err != nil {
		t.Fatalf("FetchServices: %v", err)
	}
	if len(services) != 2 {
		t.Fatalf("got %d services, want 2", len(services))
	}
	if services[0].FullName != "light.turn_off" || services[1].FullName != "light.turn_on" {
		t.Errorf("services = %v, want sorted by full name", services)
	}
}

func TestDispatch(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/api/services/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte("[]"))
	})

	c := newTestClient(t, mux)
	outcome, err := c.Dispatch(context.Background(), "light.kitchen_main", domain.ServiceCall{
		Domain:  "light",
		Service: "turn_on",
		Data:    map[string]any{"brightness": 128},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !outcome.Success {
		t.Errorf("outcome = %+v, want success", outcome)
	}
	if gotPath != "/api/services/light/turn_on" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["entity_id"] != "light.kitchen_main" || gotBody["brightness"] != float64(128) {
		t.Errorf("body = %v", gotBody)
	}
}

func TestDispatchServerErrorIsOutcome(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/services/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "entity unavailable", http.StatusBadRequest)
	})

	c := newTestClient(t, mux)
	outcome, err := c.Dispatch(context.Background(), "light.gone", domain.ServiceCall{Domain: "light", Service: "turn_on"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if outcome.Success || outcome.Error == "" {
		t.Errorf("outcome = %+v, want failure with error", outcome)
	}
}

func TestMissingToken(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())
	t.Setenv(testTokenVar, "")
	_, err := c.FetchEntities(context.Background())
	if err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestEntityState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/states/light.kitchen_main", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"entity_id":  "light.kitchen_main",
			"state":      "on",
			"attributes": map[string]any{"brightness": 200},
		})
	})

	c := newTestClient(t, mux)
	e, err := c.EntityState(context.Background(), "light.kitchen_main")
	if err != nil {
		t.Fatalf("EntityState: %v", err)
	}
	if e.State != "on" {
		t.Errorf("state = %q, want on", e.State)
	}
}
