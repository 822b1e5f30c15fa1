package observability

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertSpec struct {
	Groups []alertGroup `yaml:"groups"`
}

func loadAlertRules(t *testing.T) alertSpec {
	t.Helper()
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "journals.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read alert file: %v", err)
	}

	var spec alertSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("failed to unmarshal alert file: %v", err)
	}
	return spec
}

func TestJournalAlertRules(t *testing.T) {
	spec := loadAlertRules(t)

	if len(spec.Groups) == 0 {
		t.Fatal("expected at least one alert group")
	}

	var journalGroup *alertGroup
	for i := range spec.Groups {
		if spec.Groups[i].Name == "journals" {
			journalGroup = &spec.Groups[i]
			break
		}
	}
	if journalGroup == nil {
		t.Fatal("journals alert group missing")
	}

	expected := map[string]struct {
		severity string
		runbook  string
	}{
		"HighErrorRate":        {severity: "critical", runbook: "docs/runbook-journals.md#high-error-rate"},
		"HighLatency":          {severity: "warning", runbook: "docs/runbook-journals.md#high-latency"},
		"UnbalancedLedger":     {severity: "critical", runbook: "docs/runbook-journals.md#unbalanced-ledger"},
		"JournalConflictSpike": {severity: "warning", runbook: "docs/runbook-journals.md#conflict-spike"},
	}

	if len(journalGroup.Rules) != len(expected) {
		t.Fatalf("expected %d rules, got %d", len(expected), len(journalGroup.Rules))
	}

	for _, rule := range journalGroup.Rules {
		want, ok := expected[rule.Alert]
		if !ok {
			t.Fatalf("unexpected rule %q", rule.Alert)
		}
		if rule.Labels["severity"] != want.severity {
			t.Fatalf("rule %s severity mismatch: %s", rule.Alert, rule.Labels["severity"])
		}
		if rule.Annotations["runbook"] != want.runbook {
			t.Fatalf("rule %s runbook mismatch: %s", rule.Alert, rule.Annotations["runbook"])
		}
		if rule.Annotations["summary"] == "" || rule.Annotations["description"] == "" {
			t.Fatalf("rule %s must include summary and description annotations", rule.Alert)
		}
		if rule.Expr == "" {
			t.Fatalf("rule %s must define an expression", rule.Alert)
		}
		if rule.For == "" {
			t.Fatalf("rule %s must define a hold duration", rule.Alert)
		}
	}
}

var metricName = regexp.MustCompile(`odyssey_[a-z_]+`)

// Alert expressions must only query series this service exports, and every
// runbook link must land on a heading of the runbook.
func TestAlertRulesReferenceExportedMetricsAndRunbook(t *testing.T) {
	exported := map[string]bool{
		"odyssey_http_requests_total":                  true,
		"odyssey_http_request_duration_seconds_bucket": true,
		"odyssey_journal_transitions_total":            true,
		"odyssey_gl_unbalanced_entries_total":          true,
		"odyssey_jobs_total":                           true,
		"odyssey_jobs_failures_total":                  true,
	}

	runbook, err := os.ReadFile(filepath.Join("..", "..", "docs", "runbook-journals.md"))
	if err != nil {
		t.Fatalf("failed to read runbook: %v", err)
	}
	anchors := map[string]bool{}
	for _, line := range strings.Split(string(runbook), "\n") {
		if heading, ok := strings.CutPrefix(line, "## "); ok {
			anchors[strings.ReplaceAll(strings.ToLower(strings.TrimSpace(heading)), " ", "-")] = true
		}
	}

	for _, group := range loadAlertRules(t).Groups {
		for _, rule := range group.Rules {
			for _, name := range metricName.FindAllString(rule.Expr, -1) {
				if !exported[name] {
					t.Errorf("rule %s queries unknown metric %s", rule.Alert, name)
				}
			}
			_, anchor, ok := strings.Cut(rule.Annotations["runbook"], "#")
			if !ok || !anchors[anchor] {
				t.Errorf("rule %s links to missing runbook section %q", rule.Alert, anchor)
			}
		}
	}
}
