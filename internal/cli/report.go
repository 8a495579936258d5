package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/toyz/weave/internal/interception"
	"github.com/toyz/weave/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ComponentOutcome is the result of initializing one component
type ComponentOutcome struct {
	Identity   models.TypeIdentity         `json:"identity"`
	Location   string                      `json:"location,omitempty"`
	Registered bool                        `json:"registered"`
	Code       string                      `json:"code,omitempty"`
	Error      string                      `json:"error,omitempty"`
	Snapshot   *interception.ModelSnapshot `json:"model,omitempty"`
}

// Failed reports whether initialization failed
func (o ComponentOutcome) Failed() bool {
	return o.Error != ""
}

// Report summarizes one deployment run
type Report struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	Duration   time.Duration      `json:"-"`
	Packages   int                `json:"packages"`
	Components []ComponentOutcome `json:"components"`
}

// Registered returns the number of components whose model was registered
func (r *Report) Registered() int {
	n := 0
	for _, c := range r.Components {
		if c.Registered {
			n++
		}
	}
	return n
}

// Failed returns the number of components that failed to initialize
func (r *Report) Failed() int {
	n := 0
	for _, c := range r.Components {
		if c.Failed() {
			n++
		}
	}
	return n
}

// WriteJSON encodes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	type alias Report
	payload := struct {
		*alias
		DurationMS int64 `json:"duration_ms"`
	}{alias: (*alias)(r), DurationMS: r.Duration.Milliseconds()}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// WriteText writes a human readable report listing every chain of every registered model
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d registered, %d failed, %d components in %d packages (%s)\n",
		r.RunID, r.Registered(), r.Failed(), len(r.Components), r.Packages, r.Duration.Round(time.Millisecond))

	for _, c := range r.Components {
		switch {
		case c.Failed():
			fmt.Fprintf(&b, "  FAIL %s [%s] %s\n", c.Identity, c.Code, c.Error)
		case c.Registered:
			fmt.Fprintf(&b, "  OK   %s\n", c.Identity)
			writeSnapshot(&b, c.Snapshot)
		default:
			fmt.Fprintf(&b, "  SKIP %s (no interception)\n", c.Identity)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSnapshot(b *strings.Builder, s *interception.ModelSnapshot) {
	if s == nil {
		return
	}
	for _, t := range models.AllInterceptionTypes() {
		if chain, ok := s.Class[t]; ok {
			fmt.Fprintf(b, "         %s: %s\n", t, joinIdentities(chain))
		}
	}

	methods := make([]string, 0, len(s.Methods))
	for method := range s.Methods {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	for _, method := range methods {
		for _, t := range models.AllInterceptionTypes() {
			if chain, ok := s.Methods[method][t]; ok {
				fmt.Fprintf(b, "         %s %s: %s\n", method, t, joinIdentities(chain))
			}
		}
	}

	if len(s.IgnoringGlobal) > 0 {
		fmt.Fprintf(b, "         ignoring class interceptors: %s\n", strings.Join(s.IgnoringGlobal, ", "))
	}
	if len(s.TargetClass) > 0 {
		types := make([]string, len(s.TargetClass))
		for i, t := range s.TargetClass {
			types[i] = t.String()
		}
		fmt.Fprintf(b, "         self interception: %s\n", strings.Join(types, ", "))
	}
}

func joinIdentities(ids []models.TypeIdentity) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
