// Package report renders the aggregated analysis report as plain text or
// YAML.
package report

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/camera-coverage/internal/analysis"
	"github.com/sells-group/camera-coverage/internal/spatial"
)

// Title heads the text report.
const Title = "NYC TRANSIT CAMERA NETWORK - SPATIAL ANALYSIS REPORT"

// Report is the aggregated result of one analysis run. Sections whose
// engine did not run are nil.
type Report struct {
	GeneratedAt time.Time                `yaml:"generated_at"`
	Source      string                   `yaml:"source,omitempty"`
	Dataset     analysis.Summary         `yaml:"dataset"`
	Neighbors   *spatial.NeighborSummary `yaml:"neighbors,omitempty"`
	Clusters    *Clusters                `yaml:"clusters,omitempty"`
	Coverage    *Coverage                `yaml:"coverage,omitempty"`
}

// Clusters is the cluster section.
type Clusters struct {
	EpsilonM   float64                  `yaml:"epsilon_m"`
	MinSamples int                      `yaml:"min_samples"`
	Count      int                      `yaml:"count"`
	Clustered  int                      `yaml:"clustered"`
	Noise      int                      `yaml:"noise"`
	Clusters   []spatial.ClusterSummary `yaml:"clusters"`
}

// NewClusters summarizes cluster assignments.
func NewClusters(a []spatial.Assignment, epsilonM float64, minSamples int) *Clusters {
	sums := spatial.Summaries(a)
	noise := spatial.NoiseCount(a)
	return &Clusters{
		EpsilonM:   epsilonM,
		MinSamples: minSamples,
		Count:      len(sums),
		Clustered:  len(a) - noise,
		Noise:      noise,
		Clusters:   sums,
	}
}

// Coverage is the coverage and gap section.
type Coverage struct {
	RadiusM          float64 `yaml:"radius_m"`
	AreaM2           float64 `yaml:"area_m2"`
	TheoreticalM2    float64 `yaml:"theoretical_m2"`
	Components       int     `yaml:"components"`
	AreaOfInterestM2 float64 `yaml:"area_of_interest_m2"`
	CoveredPercent   float64 `yaml:"covered_percent"`
	MinGapAreaM2     float64 `yaml:"min_gap_area_m2"`
	Gaps             int     `yaml:"gaps"`
	GapAreaM2        float64 `yaml:"gap_area_m2"`
	LargestGapM2     float64 `yaml:"largest_gap_m2"`
	DiscardedGaps    int     `yaml:"discarded_gaps"`
}

// NewCoverage summarizes a coverage region and its gaps. aoiM2 is the
// area of the region the gaps were measured against.
func NewCoverage(r *spatial.CoverageRegion, kept, discarded []spatial.Gap, aoiM2, minGapM2 float64) *Coverage {
	c := &Coverage{
		RadiusM:          r.RadiusM,
		AreaM2:           r.AreaM2,
		TheoreticalM2:    float64(r.Disks) * spatial.Disk(0, 0, r.RadiusM).Area(),
		Components:       r.Components(),
		AreaOfInterestM2: aoiM2,
		MinGapAreaM2:     minGapM2,
		Gaps:             len(kept),
		GapAreaM2:        spatial.TotalArea(kept),
		DiscardedGaps:    len(discarded),
	}
	if len(kept) > 0 {
		c.LargestGapM2 = kept[0].AreaM2
	}
	if aoiM2 > 0 {
		uncovered := spatial.TotalArea(kept) + spatial.TotalArea(discarded)
		c.CoveredPercent = (aoiM2 - uncovered) / aoiM2 * 100
	}
	return c
}

// WriteYAML encodes r as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "report: close yaml encoder")
	}
	return nil
}

// WriteText renders r as a sectioned plain-text report.
func WriteText(w io.Writer, r *Report) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	rule := strings.Repeat("=", 70)
	sub := strings.Repeat("-", 70)

	section := func(n int, name string) {
		p.Fprintf(&b, "\n\n%d. %s\n%s\n", n, name, sub)
	}

	p.Fprintf(&b, "%s\n%s\n%s\n", rule, Title, rule)
	p.Fprintf(&b, "\nGenerated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	if r.Source != "" {
		p.Fprintf(&b, "Source: %s\n", r.Source)
	}

	d := r.Dataset
	section(1, "DATASET OVERVIEW")
	p.Fprintf(&b, "Total Cameras: %d\n", d.Total)
	if d.Total > 0 {
		p.Fprintf(&b, "Date Range: %s to %s\n", d.Timeline.Earliest.Format("2006-01-02"), d.Timeline.Latest.Format("2006-01-02"))
	}
	b.WriteString("\nStatus Distribution:\n")
	for _, s := range d.Status {
		p.Fprintf(&b, " %s: %d (%.1f%%)\n", s.Label, s.Count, s.Percent)
	}
	p.Fprintf(&b, "Operational Rate: %.1f%%\n", d.OperationalRate)

	section(2, "SPATIAL DISTRIBUTION")
	b.WriteString("Geographic Extent:\n")
	p.Fprintf(&b, " Latitude: %.4f° to %.4f°\n", d.Extent.MinLat, d.Extent.MaxLat)
	p.Fprintf(&b, " Longitude: %.4f° to %.4f°\n", d.Extent.MinLon, d.Extent.MaxLon)
	p.Fprintf(&b, " Center: (%.4f°, %.4f°)\n", d.CenterLat, d.CenterLon)
	b.WriteString("\nCameras by Borough:\n")
	for _, c := range d.Boroughs {
		p.Fprintf(&b, " %-15s %3d (%5.1f%%)\n", c.Label, c.Count, c.Percent)
	}

	n := 3
	if nb := r.Neighbors; nb != nil {
		section(n, "NEAREST NEIGHBOR ANALYSIS")
		b.WriteString("Statistics (distance to nearest camera):\n")
		p.Fprintf(&b, " Minimum: %.0f meters\n", nb.Min)
		p.Fprintf(&b, " Maximum: %.0f meters\n", nb.Max)
		p.Fprintf(&b, " Mean: %.0f meters\n", nb.Mean)
		p.Fprintf(&b, " Median: %.0f meters\n", nb.Median)
		p.Fprintf(&b, " Std Dev: %.0f meters\n", nb.Std)
		p.Fprintf(&b, "\nIsolated Cameras (>1km from nearest): %d\n", nb.Isolated)
		p.Fprintf(&b, "Closely Spaced Cameras (<200m from nearest): %d\n", nb.Clustered)
		n++
	}

	if c := r.Clusters; c != nil {
		section(n, "CLUSTER ANALYSIS")
		p.Fprintf(&b, "Parameters: epsilon %.0f m, min samples %d\n", c.EpsilonM, c.MinSamples)
		p.Fprintf(&b, "Clusters Detected: %d\n", c.Count)
		p.Fprintf(&b, "Cameras in Clusters: %d\n", c.Clustered)
		p.Fprintf(&b, "Isolated Cameras: %d\n", c.Noise)
		for _, s := range c.Clusters {
			p.Fprintf(&b, " Cluster %d: %d cameras\n", s.Label, s.Size)
		}
		n++
	}

	if c := r.Coverage; c != nil {
		section(n, "COVERAGE ANALYSIS")
		p.Fprintf(&b, "Coverage Radius: %.0f meters\n", c.RadiusM)
		p.Fprintf(&b, "Theoretical Total Coverage: %.0f m²\n", c.TheoreticalM2)
		p.Fprintf(&b, "Actual Coverage (overlaps merged): %.0f m² in %d zones\n", c.AreaM2, c.Components)
		p.Fprintf(&b, "Area of Interest: %.0f m² (%.1f%% covered)\n", c.AreaOfInterestM2, c.CoveredPercent)
		p.Fprintf(&b, "Coverage Gaps (>= %.0f m²): %d totalling %.0f m²\n", c.MinGapAreaM2, c.Gaps, c.GapAreaM2)
		if c.Gaps > 0 {
			p.Fprintf(&b, "Largest Gap: %.0f m²\n", c.LargestGapM2)
		}
		if c.DiscardedGaps > 0 {
			p.Fprintf(&b, "Small Gaps Ignored: %d\n", c.DiscardedGaps)
		}
		n++
	}

	section(n, "RECOMMENDATIONS")
	for _, rec := range Recommendations(r) {
		p.Fprintf(&b, "• %s\n", rec)
	}

	p.Fprintf(&b, "\n\n%s\nEND OF REPORT\n%s\n", rule, rule)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "report: write text")
	}
	return nil
}

// Recommendations lists follow-ups triggered by the report's findings.
func Recommendations(r *Report) []string {
	var out []string
	if r.Neighbors != nil && r.Neighbors.Isolated > 0 {
		out = append(out, "Review isolated cameras for strategic importance")
	}
	if r.Coverage != nil && r.Coverage.Gaps > 0 {
		out = append(out, "Consider additional cameras in identified gap areas")
	}
	if r.Clusters != nil && r.Clusters.Count > 0 {
		out = append(out, "Clusters may indicate high-traffic zones requiring monitoring")
	}
	for _, s := range r.Dataset.Status {
		if s.Label != "Active" && s.Count > 0 {
			out = append(out, "Regular maintenance needed for offline/maintenance cameras")
			break
		}
	}
	if len(out) == 0 {
		out = append(out, "No action required")
	}
	return out
}
