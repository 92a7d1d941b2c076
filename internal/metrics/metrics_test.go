package metrics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/hostgraph/internal/property"
)

type fixedStats property.Stats

func (f fixedStats) Stats() property.Stats { return property.Stats(f) }

// flatten renders gathered families as name{label=value,...} -> value.
func flatten(t *testing.T, families []*dto.MetricFamily) map[string]float64 {
	t.Helper()
	out := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out[key] = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				out[key] = m.GetGauge().GetValue()
			default:
				t.Fatalf("unexpected metric type %v for %s", mf.GetType(), key)
			}
		}
	}
	return out
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector("hostgraph", fixedStats{
		Discoveries:     3,
		PositiveHits:    10,
		NegativeHits:    4,
		ContainerReads:  7,
		Absences:        5,
		Failures:        1,
		PositiveEntries: 2,
		NegativeEntries: 1,
	}))

	families, err := reg.Gather()
	require.NoError(t, err)

	want := map[string]float64{
		"hostgraph_property_lookups_total{result=positive_hit}": 10,
		"hostgraph_property_lookups_total{result=negative_hit}": 4,
		"hostgraph_property_lookups_total{result=container}":    7,
		"hostgraph_property_discoveries_total":                  3,
		"hostgraph_property_absences_total":                     5,
		"hostgraph_property_failures_total":                     1,
		"hostgraph_property_cache_entries{cache=positive}":      2,
		"hostgraph_property_cache_entries{cache=negative}":      1,
	}
	if diff := cmp.Diff(want, flatten(t, families)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectorReadsLiveResolver(t *testing.T) {
	r := property.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector("", r))

	type item struct{ Name string }
	_, _, _ = r.Resolve("name", item{Name: "a"}, nil)
	_, _, _ = r.Resolve("name", item{Name: "b"}, nil)
	_, _, _ = r.Resolve("missing", item{}, nil)

	families, err := reg.Gather()
	require.NoError(t, err)
	got := flatten(t, families)
	require.Equal(t, float64(2), got["property_discoveries_total"])
	require.Equal(t, float64(1), got["property_lookups_total{result=positive_hit}"])
	require.Equal(t, float64(1), got["property_cache_entries{cache=negative}"])
}
