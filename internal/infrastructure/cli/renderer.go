package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"hactl/internal/application/resolve"
	"hactl/internal/domain"
)

// Renderer writes command output in the configured format. Table output is
// the human default; json and yaml are for scripting.
type Renderer struct {
	out    io.Writer
	format string
	color  bool
}

// NewRenderer builds a renderer honoring the output settings. Color "auto"
// enables ANSI only on a terminal.
func NewRenderer(out io.Writer, settings domain.OutputSettings) *Renderer {
	color := false
	switch settings.Color {
	case "always":
		color = true
	case "never":
		color = false
	default:
		if f, ok := out.(*os.File); ok {
			color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	return &Renderer{out: out, format: settings.Format, color: color}
}

// Format returns the active output format.
func (r *Renderer) Format() string { return r.format }

func (r *Renderer) structured(v any) (bool, error) {
	switch r.format {
	case "json":
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		raw, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = r.out.Write(raw)
		return true, err
	}
	return false, nil
}

func (r *Renderer) ok(s string) string {
	if r.color {
		return "\x1b[32m" + s + "\x1b[0m"
	}
	return s
}

func (r *Renderer) fail(s string) string {
	if r.color {
		return "\x1b[31m" + s + "\x1b[0m"
	}
	return s
}

// RenderResult prints one resolution outcome.
func (r *Renderer) RenderResult(res resolve.Result, dryRun bool) error {
	if done, err := r.structured(res); done {
		return err
	}

	fmt.Fprintf(r.out, "%s -> %d target(s)\n", res.Plan.Action, len(res.Plan.Steps))
	if res.Plan.FromContext {
		fmt.Fprintln(r.out, "(targets taken from previous command)")
	}
	outcomeByID := map[string]domain.DispatchOutcome{}
	for _, o := range res.Outcomes {
		outcomeByID[o.EntityID] = o
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	for _, step := range res.Plan.Steps {
		status := "planned"
		if dryRun {
			status = "dry-run"
		} else if o, ok := outcomeByID[step.EntityID]; ok {
			if o.Success {
				status = r.ok("ok")
			} else {
				status = r.fail("failed: " + o.Error)
			}
		}
		name := step.FriendlyName
		if name == "" {
			name = step.EntityID
		}
		fmt.Fprintf(w, "%s\t%s\t%s.%s\t%s (%.2f)\t%s\n",
			step.EntityID, name, step.Call.Domain, step.Call.Service,
			step.MatchKind, step.Score, status)
	}
	return w.Flush()
}

// RenderEntities prints the entity list.
func (r *Renderer) RenderEntities(entities []domain.Entity) error {
	if done, err := r.structured(entities); done {
		return err
	}
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENTITY\tNAME\tSTATE\tAREA")
	for _, e := range entities {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.EntityID, e.FriendlyName, e.State, e.AreaID)
	}
	return w.Flush()
}

// RenderServices prints the service list.
func (r *Renderer) RenderServices(services []domain.Service) error {
	if done, err := r.structured(services); done {
		return err
	}
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tDESCRIPTION")
	for _, s := range services {
		fmt.Fprintf(w, "%s\t%s\n", s.FullName, s.Description)
	}
	return w.Flush()
}

// RenderAreas prints the area list.
func (r *Renderer) RenderAreas(areas []domain.Area) error {
	if done, err := r.structured(areas); done {
		return err
	}
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AREA\tNAME")
	for _, a := range areas {
		fmt.Fprintf(w, "%s\t%s\n", a.AreaID, a.Name)
	}
	return w.Flush()
}

// RenderDevices prints the device list.
func (r *Renderer) RenderDevices(devices []domain.Device) error {
	if done, err := r.structured(devices); done {
		return err
	}
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEVICE\tNAME\tMANUFACTURER\tMODEL\tAREA")
	for _, d := range devices {
		name := d.NameByUser
		if name == "" {
			name = d.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, name, d.Manufacturer, d.Model, d.AreaID)
	}
	return w.Flush()
}

// RenderLabels prints the label list.
func (r *Renderer) RenderLabels(labels []domain.Label) error {
	if done, err := r.structured(labels); done {
		return err
	}
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tNAME\tCOLOR")
	for _, l := range labels {
		fmt.Fprintf(w, "%s\t%s\t%s\n", l.LabelID, l.Name, l.Color)
	}
	return w.Flush()
}

// RenderCacheStatus prints per-category cache freshness.
func (r *Renderer) RenderCacheStatus(statuses []domain.CategoryStatus) error {
	if done, err := r.structured(statuses); done {
		return err
	}
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tENTRIES\tFETCHED\tTTL\tSTATE\tSIZE")
	for _, st := range statuses {
		if !st.Present {
			fmt.Fprintf(w, "%s\t-\t-\t%s\tabsent\t-\n", st.Category, st.TTL)
			continue
		}
		state := r.ok("fresh")
		if st.Stale {
			state = r.fail("stale")
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			st.Category, st.Count, humanize.Time(st.FetchedAt), st.TTL, state,
			humanize.Bytes(uint64(st.SizeBytes)))
	}
	return w.Flush()
}

// RenderContext prints the stored follow-up context.
func (r *Renderer) RenderContext(rec domain.ContextRecord, state domain.ContextState) error {
	if done, err := r.structured(struct {
		State  domain.ContextState  `json:"state" yaml:"state"`
		Record domain.ContextRecord `json:"record" yaml:"record"`
	}{state, rec}); done {
		return err
	}
	if state == domain.ContextAbsent {
		fmt.Fprintln(r.out, "No previous command context.")
		return nil
	}
	fmt.Fprintf(r.out, "State: %s\n", state)
	fmt.Fprintf(r.out, "Action: %s\n", rec.Action)
	fmt.Fprintf(r.out, "Targets: %v\n", rec.EntityIDs)
	if rec.AreaID != "" {
		fmt.Fprintf(r.out, "Area: %s\n", rec.AreaID)
	}
	fmt.Fprintf(r.out, "Recorded: %s\n", humanize.Time(rec.UpdatedAt))
	return nil
}

// RenderHistory prints resolution log entries.
func (r *Renderer) RenderHistory(entries []domain.HistoryEntry) error {
	if done, err := r.structured(entries); done {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "No resolutions recorded yet.")
		return nil
	}
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tUTTERANCE\tINTERPRETATION\tMATCH\tRESULT")
	for _, e := range entries {
		result := r.ok("ok")
		if !e.Success {
			result = r.fail(e.Error)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(e.Timestamp), e.Utterance, e.Interpretation, e.MatchKind, result)
	}
	return w.Flush()
}

// RenderStats prints aggregate accuracy statistics.
func (r *Renderer) RenderStats(stats domain.AccuracyStats) error {
	if done, err := r.structured(stats); done {
		return err
	}
	fmt.Fprintf(r.out, "Total resolutions: %d\n", stats.Total)
	fmt.Fprintf(r.out, "Success rate: %.1f%%\n", stats.SuccessRate())
	fmt.Fprintf(r.out, "Exact: %d  Alias: %d  Fuzzy: %d  Ambiguous: %d  Failed: %d\n",
		stats.ExactMatches, stats.AliasMatches, stats.FuzzyMatches, stats.Ambiguous, stats.Failures)
	if top := stats.TopEntities(5); len(top) > 0 {
		fmt.Fprintln(r.out, "Most used:")
		for _, id := range top {
			fmt.Fprintf(r.out, "  %s (%d)\n", id, stats.EntityUseCount[id])
		}
	}
	return nil
}

// RenderInfo prints the hub's API information document.
func (r *Renderer) RenderInfo(info map[string]any) error {
	if done, err := r.structured(info); done {
		return err
	}
	for _, key := range []string{"version", "location_name", "time_zone", "state"} {
		if v, ok := info[key]; ok {
			fmt.Fprintf(r.out, "%s: %v\n", key, v)
		}
	}
	return nil
}
