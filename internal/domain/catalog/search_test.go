package catalog

import (
	"strings"
	"testing"
)

func names(pests []Pest) []string {
	out := make([]string, len(pests))
	for i, p := range pests {
		out[i] = p.Name
	}
	return out
}

func sample() []Pest {
	return []Pest{
		{Slug: "ants", Name: "Ants", Description: "Trail foragers"},
		{Slug: "aphid", Name: "Aphid", Description: "Plant lice"},
		{Slug: "termite", Name: "Termite", Description: "Wood eaters"},
	}
}

func TestFilterBlankQueryReturnsListUnchanged(t *testing.T) {
	list := sample()
	for _, q := range []string{"", " ", "\t\n"} {
		got := Filter(list, q)
		if strings.Join(names(got), ",") != "Ants,Aphid,Termite" {
			t.Fatalf("query %q: unexpected %v", q, names(got))
		}
	}
}

func TestFilterMatchesNameOrDescriptionIgnoringCase(t *testing.T) {
	list := sample()
	for _, q := range []string{"ap", "WOOD", "s", "xyz", "ant", "er"} {
		got := Filter(list, q)
		in := make(map[string]bool)
		for _, p := range got {
			in[p.Slug] = true
		}
		needle := strings.ToLower(q)
		for _, p := range list {
			matches := strings.Contains(strings.ToLower(p.Name), needle) ||
				strings.Contains(strings.ToLower(p.Description), needle)
			if matches != in[p.Slug] {
				t.Fatalf("query %q: pest %s matches=%v returned=%v", q, p.Name, matches, in[p.Slug])
			}
		}
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	got := Filter(sample(), "o")
	if strings.Join(names(got), ",") != "Ants,Termite" {
		t.Fatalf("unexpected order %v", names(got))
	}
}

func TestScenarioFilterAndRecommendAp(t *testing.T) {
	list := sample()
	if got := names(Filter(list, "ap")); len(got) != 1 || got[0] != "Aphid" {
		t.Fatalf("filter: unexpected %v", got)
	}
	if got := names(Recommend(list, "ap")); len(got) != 1 || got[0] != "Aphid" {
		t.Fatalf("recommend: unexpected %v", got)
	}
}

func TestRecommendNeedsMoreThanOneCharacter(t *testing.T) {
	list := sample()
	for _, q := range []string{"", "a", "  a  ", "   "} {
		got := Recommend(list, q)
		if got == nil || len(got) != 0 {
			t.Fatalf("query %q: expected empty slice, got %v", q, names(got))
		}
	}
	if got := Recommend(list, " an "); len(got) != 1 || got[0].Name != "Ants" {
		t.Fatalf("expected trimmed query to match Ants, got %v", names(got))
	}
}

func TestRecommendCapsAtFive(t *testing.T) {
	var list []Pest
	for _, n := range []string{"Bee A", "Bee B", "Bee C", "Bee D", "Bee E", "Bee F", "Bee G"} {
		list = append(list, Pest{Slug: strings.ToLower(strings.ReplaceAll(n, " ", "-")), Name: n})
	}
	got := Recommend(list, "bee")
	if len(got) != MaxRecommendations {
		t.Fatalf("expected %d, got %d", MaxRecommendations, len(got))
	}
	if got[0].Name != "Bee A" || got[4].Name != "Bee E" {
		t.Fatalf("expected first five in list order, got %v", names(got))
	}
}

func TestRecommendIgnoresDescription(t *testing.T) {
	if got := Recommend(sample(), "wood"); len(got) != 0 {
		t.Fatalf("expected no name match, got %v", names(got))
	}
}
