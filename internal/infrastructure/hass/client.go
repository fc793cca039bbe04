// Package hass is the REST transport to a Home Assistant server. Entities,
// services, and states come from the plain REST API; areas, devices, and
// labels are not exposed there, so they are pulled through the template
// endpoint instead.
package hass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"hactl/internal/domain"
	"hactl/internal/ports"
)

// Client talks to one Home Assistant server.
type Client struct {
	baseURL     string
	tokenEnvVar string
	httpClient  *http.Client
	log         ports.Logger
}

var _ ports.Transport = (*Client)(nil)

// New builds a client for the given server. The access token is read from
// the named environment variable on every request, never stored.
func New(serverURL, tokenEnvVar string, timeout time.Duration, log ports.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(serverURL, "/"),
		tokenEnvVar: tokenEnvVar,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
	}
}

// stateObject is the wire shape of one entry in /api/states.
type stateObject struct {
	EntityID   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// FetchEntities lists every entity known to the server. Area assignments are
// filled in best effort via the template endpoint.
func (c *Client) FetchEntities(ctx context.Context) ([]domain.Entity, error) {
	var states []stateObject
	if err := c.getJSON(ctx, "/api/states", &states); err != nil {
		return nil, err
	}

	areaByEntity := c.entityAreaMap(ctx)

	entities := make([]domain.Entity, 0, len(states))
	for _, st := range states {
		entities = append(entities, toEntity(st, areaByEntity[st.EntityID]))
	}
	return entities, nil
}

// serviceObject is the wire shape of one entry in /api/services.
type serviceObject struct {
	Domain   string `json:"domain"`
	Services map[string]struct {
		Description string `json:"description"`
	} `json:"services"`
}

// FetchServices lists every callable service, flattened to domain.service.
func (c *Client) FetchServices(ctx context.Context) ([]domain.Service, error) {
	var raw []serviceObject
	if err := c.getJSON(ctx, "/api/services", &raw); err != nil {
		return nil, err
	}
	var services []domain.Service
	for _, d := range raw {
		for name, meta := range d.Services {
			services = append(services, domain.Service{
				Domain:      d.Domain,
				Service:     name,
				FullName:    d.Domain + "." + name,
				Description: meta.Description,
			})
		}
	}
	sort.Slice(services, func(i, j int) bool { return services[i].FullName < services[j].FullName })
	return services, nil
}

const areasTemplate = `[{% for a in areas() %}{"area_id": {{ a | tojson }}, "name": {{ area_name(a) | tojson }}}{% if not loop.last %},{% endif %}{% endfor %}]`

// FetchAreas lists areas via the template endpoint.
func (c *Client) FetchAreas(ctx context.Context) ([]domain.Area, error) {
	var areas []domain.Area
	if err := c.renderTemplate(ctx, areasTemplate, &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

const devicesTemplate = `[{% for d in states | map(attribute='entity_id') | map('device_id') | unique | reject('none') %}{"id": {{ d | tojson }}, "name": {{ device_attr(d, 'name') | tojson }}, "name_by_user": {{ device_attr(d, 'name_by_user') | tojson }}, "manufacturer": {{ device_attr(d, 'manufacturer') | tojson }}, "model": {{ device_attr(d, 'model') | tojson }}, "area_id": {{ area_id(d) | tojson }}}{% if not loop.last %},{% endif %}{% endfor %}]`

// FetchDevices lists devices via the template endpoint.
func (c *Client) FetchDevices(ctx context.Context) ([]domain.Device, error) {
	var raw []struct {
		ID           string  `json:"id"`
		Name         *string `json:"name"`
		NameByUser   *string `json:"name_by_user"`
		Manufacturer *string `json:"manufacturer"`
		Model        *string `json:"model"`
		AreaID       *string `json:"area_id"`
	}
	if err := c.renderTemplate(ctx, devicesTemplate, &raw); err != nil {
		return nil, err
	}
	devices := make([]domain.Device, 0, len(raw))
	for _, d := range raw {
		devices = append(devices, domain.Device{
			ID:           d.ID,
			Name:         deref(d.Name),
			NameByUser:   deref(d.NameByUser),
			Manufacturer: deref(d.Manufacturer),
			Model:        deref(d.Model),
			AreaID:       deref(d.AreaID),
		})
	}
	return devices, nil
}

const labelsTemplate = `[{% for l in labels() %}{"label_id": {{ l | tojson }}, "name": {{ label_name(l) | tojson }}}{% if not loop.last %},{% endif %}{% endfor %}]`

// FetchLabels lists labels via the template endpoint.
func (c *Client) FetchLabels(ctx context.Context) ([]domain.Label, error) {
	var labels []domain.Label
	if err := c.renderTemplate(ctx, labelsTemplate, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// Dispatch executes one service call against one entity.
func (c *Client) Dispatch(ctx context.Context, entityID string, call domain.ServiceCall) (domain.DispatchOutcome, error) {
	payload := map[string]any{"entity_id": entityID}
	for k, v := range call.Data {
		payload[k] = v
	}
	path := fmt.Sprintf("/api/services/%s/%s", call.Domain, call.Service)
	if err := c.postJSON(ctx, path, payload, nil); err != nil {
		return domain.DispatchOutcome{EntityID: entityID, Error: err.Error()}, nil
	}
	return domain.DispatchOutcome{EntityID: entityID, Success: true}, nil
}

// EntityState fetches one entity's live state, bypassing any cache.
func (c *Client) EntityState(ctx context.Context, entityID string) (domain.Entity, error) {
	var st stateObject
	if err := c.getJSON(ctx, "/api/states/"+entityID, &st); err != nil {
		return domain.Entity{}, err
	}
	return toEntity(st, ""), nil
}

// APIInfo returns the server's /api/config document.
func (c *Client) APIInfo(ctx context.Context) (map[string]any, error) {
	var info map[string]any
	if err := c.getJSON(ctx, "/api/config", &info); err != nil {
		return nil, err
	}
	return info, nil
}

const entityAreasTemplate = `{ {%- for s in states %}{{ s.entity_id | tojson }}: {{ area_id(s.entity_id) | tojson }}{% if not loop.last %},{% endif %}{%- endfor %} }`

// entityAreaMap maps entity IDs to area IDs, best effort. Template failures
// degrade to unassigned areas rather than failing the whole fetch.
func (c *Client) entityAreaMap(ctx context.Context) map[string]string {
	var raw map[string]*string
	if err := c.renderTemplate(ctx, entityAreasTemplate, &raw); err != nil {
		c.log.Debug("entity area lookup failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	out := make(map[string]string, len(raw))
	for id, area := range raw {
		if area != nil {
			out[id] = *area
		}
	}
	return out
}

func toEntity(st stateObject, areaID string) domain.Entity {
	objectID := st.EntityID
	dom := ""
	if i := strings.IndexByte(st.EntityID, '.'); i > 0 {
		dom, objectID = st.EntityID[:i], st.EntityID[i+1:]
	}
	friendly, _ := st.Attributes["friendly_name"].(string)
	return domain.Entity{
		EntityID:     st.EntityID,
		Domain:       dom,
		ObjectID:     objectID,
		State:        st.State,
		FriendlyName: friendly,
		AreaID:       areaID,
		Attributes:   st.Attributes,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RenderTemplate posts a Jinja template to /api/template and returns the raw
// rendered text.
func (c *Client) RenderTemplate(ctx context.Context, template string) (string, error) {
	var rendered json.RawMessage
	body := map[string]string{"template": template}
	if err := c.postJSON(ctx, "/api/template", body, &rendered); err != nil {
		return "", err
	}
	return string(rendered), nil
}

// renderTemplate renders a template that produces JSON and decodes it.
func (c *Client) renderTemplate(ctx context.Context, template string, out any) error {
	rendered, err := c.RenderTemplate(ctx, template)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(rendered), out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, raw, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	token := os.Getenv(c.tokenEnvVar)
	if token == "" {
		return fmt.Errorf("access token missing: set %s", c.tokenEnvVar)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// The template endpoint may return a bare rendered string; everything
	// else is JSON.
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = json.RawMessage(data)
		return nil
	}
	return json.Unmarshal(data, out)
}
