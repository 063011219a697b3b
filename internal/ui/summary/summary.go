// Package summary renders provisioning results, teardown reports and query
// answers for the terminal. Output is styled with lipgloss when writing to an
// interactive terminal and plain otherwise.
package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/orchestration"
	"github.com/imamik/kbstack/internal/provisioning/destroy"
	"github.com/imamik/kbstack/internal/query"
)

// Printer writes human-readable summaries.
type Printer struct {
	w io.Writer
	p palette
}

// New creates a printer. styled enables colors and bold text.
func New(w io.Writer, styled bool) *Printer {
	return &Printer{w: w, p: newPalette(styled)}
}

// Result prints the identifiers of a provisioning run.
func (pr *Printer) Result(r *orchestration.Result) {
	var b strings.Builder

	if r.Error == "" {
		fmt.Fprintf(&b, "%s %s\n", pr.p.ready(checkMark), pr.p.title("Knowledge base stack ready"))
	} else {
		fmt.Fprintf(&b, "%s %s\n", pr.p.failed(crossMark), pr.p.title("Provisioning failed"))
		fmt.Fprintf(&b, "  %s\n", pr.p.failed(r.Error))
	}
	fmt.Fprintf(&b, "  %s\n", pr.p.dim(fmt.Sprintf("%s-%s in %s (account %s)", r.Prefix, r.Suffix, r.Region, r.AccountID)))

	rows := [][2]string{
		{"Bucket", r.BucketName},
		{"Execution role", r.RoleARN},
		{"Collection", joinNonEmpty(r.CollectionName, r.CollectionID)},
		{"Endpoint", r.CollectionEndpoint},
		{"Index", r.IndexName},
		{"Knowledge base", joinNonEmpty(r.KnowledgeBaseName, r.KnowledgeBaseID)},
		{"Data source", r.DataSourceID},
		{"Ingestion job", r.IngestionJobID},
		{"Generation model", r.GenerationModel},
	}
	pr.section(&b, "Resources")
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "  %-18s %s\n", row[0], row[1])
	}

	if r.IngestionJobID != "" {
		pr.section(&b, "Ingestion")
		fmt.Fprintf(&b, "  %s\n", r.Ingestion.String())
		if r.Ingestion.Failed > 0 {
			fmt.Fprintf(&b, "  %s %s\n", pr.p.warning(warnMark), pr.p.warning(fmt.Sprintf("%d documents failed to index", r.Ingestion.Failed)))
		}
	}

	if r.Error != "" && len(r.Resources) > 0 {
		pr.section(&b, "Left behind")
		for _, res := range r.Resources {
			fmt.Fprintf(&b, "  %-24s %s\n", res.Kind, res.Name)
		}
		fmt.Fprintf(&b, "  %s\n", pr.p.dim("run 'kbstack destroy' to remove them"))
	}

	_, _ = io.WriteString(pr.w, b.String())
}

// Report prints the outcome of a teardown.
func (pr *Printer) Report(r *destroy.Report) {
	var b strings.Builder

	if len(r.Errors) == 0 {
		fmt.Fprintf(&b, "%s %s\n", pr.p.ready(checkMark), pr.p.title(fmt.Sprintf("Deleted %d resources", len(r.Deleted))))
	} else {
		fmt.Fprintf(&b, "%s %s\n", pr.p.failed(crossMark), pr.p.title(fmt.Sprintf("Deleted %d resources, %d left behind", len(r.Deleted), len(r.Errors))))
	}
	for _, res := range r.Deleted {
		fmt.Fprintf(&b, "  %s %-24s %s\n", pr.p.ready(checkMark), res.Kind, res.Name)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  %s %-24s %s: %s\n", pr.p.failed(crossMark), e.Resource.Kind, e.Resource.Name, pr.p.failed(e.Err.Error()))
	}

	_, _ = io.WriteString(pr.w, b.String())
}

// Answer prints a generated answer and its sources.
func (pr *Printer) Answer(a *query.Answer) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", a.Text)
	pr.section(&b, "Sources")
	if len(a.Citations) == 0 {
		fmt.Fprintf(&b, "  %s\n", pr.p.dim("none"))
	}
	for _, uri := range a.Citations {
		fmt.Fprintf(&b, "  %s\n", uri)
	}

	_, _ = io.WriteString(pr.w, b.String())
}

// Models prints the embedding model table.
func (pr *Printer) Models(models []config.EmbeddingModel) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", pr.p.section(fmt.Sprintf("%-32s %-8s %-9s %s", "MODEL", "PROVIDER", "DEFAULT", "DIMENSIONS")))
	for _, m := range models {
		dims := make([]string, len(m.Dimensions))
		for i, d := range m.Dimensions {
			dims[i] = fmt.Sprint(d)
		}
		fmt.Fprintf(&b, "%-32s %-8s %-9d %s\n", m.ID, m.Provider, m.DefaultDimension, strings.Join(dims, ", "))
	}

	_, _ = io.WriteString(pr.w, b.String())
}

func (pr *Printer) section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n", pr.p.section(title))
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " (" + b + ")"
	}
}
