package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

// fakeCatalog mimics Scryfall: exact is case-insensitive, fuzzy maps loose
// spellings to canonical names, and every call is recorded.
type fakeCatalog struct {
	mu        sync.Mutex
	cards     map[string]models.Card
	fuzzy     map[string]string
	printings map[string][]models.Card
	exactErr  error
	fuzzyErr  error
	printErr  error
	calls     []string
}

func newFakeCatalog() *fakeCatalog {
	f := &fakeCatalog{
		cards: map[string]models.Card{},
		fuzzy: map[string]string{
			"commanders plate": "Commander's Plate",
			"lightnin bolt":    "Lightning Bolt",
			"sol rng":          "Sol Ring",
		},
		printings: map[string][]models.Card{},
	}
	for _, c := range []models.Card{
		{Name: "Sol Ring", SetCode: "cmr", SetName: "Commander Legends", TypeLine: "Artifact", ReleasedAt: "2020-11-20", PriceUSD: 1.5},
		{Name: "Lightning Bolt", SetCode: "2xm", SetName: "Double Masters", TypeLine: "Instant", ReleasedAt: "2020-08-07", PriceUSD: 2},
		{Name: "Commander's Plate", SetCode: "cmr", SetName: "Commander Legends", TypeLine: "Artifact — Equipment", ReleasedAt: "2020-11-20"},
	} {
		f.cards[strings.ToLower(c.Name)] = c
	}

	f.printings["Sol Ring"] = []models.Card{
		{ID: "sol-eoc", Name: "Sol Ring", SetCode: "eoc", SetName: "Edge of Eternities Commander", ReleasedAt: "2025-08-01"},
		{ID: "sol-cmr", Name: "Sol Ring", SetCode: "cmr", SetName: "Commander Legends", ReleasedAt: "2020-11-20", PriceUSD: 1.5},
		{ID: "sol-c21", Name: "Sol Ring", SetCode: "c21", SetName: "Commander 2021", ReleasedAt: "2021-04-23", PriceUSD: 1.1},
		{ID: "sol-lea", Name: "Sol Ring", SetCode: "lea", SetName: "Limited Edition Alpha", ReleasedAt: "1993-08-05", PriceUSD: 3000},
	}
	f.printings["Lightning Bolt"] = []models.Card{
		{ID: "bolt-2xm", Name: "Lightning Bolt", SetCode: "2xm", SetName: "Double Masters", ReleasedAt: "2020-08-07", PriceUSD: 2},
		{ID: "bolt-sta", Name: "Lightning Bolt", SetCode: "sta", SetName: "Strixhaven Mystical Archive", ReleasedAt: "2021-04-23", PriceUSD: 3},
		{ID: "bolt-m10", Name: "Lightning Bolt", SetCode: "m10", SetName: "Magic 2010", ReleasedAt: "2009-07-17", PriceUSD: 4},
		{ID: "bolt-m10-foil", Name: "Lightning Bolt", SetCode: "m10", SetName: "Magic 2010", ReleasedAt: "2009-07-17"},
	}
	return f
}

func (f *fakeCatalog) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeCatalog) ExactCard(_ context.Context, name string) (*models.Card, error) {
	f.record("exact:" + name)
	if f.exactErr != nil {
		return nil, f.exactErr
	}
	if c, ok := f.cards[strings.ToLower(name)]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeCatalog) FuzzyCard(_ context.Context, name string) (*models.Card, error) {
	f.record("fuzzy:" + name)
	if f.fuzzyErr != nil {
		return nil, f.fuzzyErr
	}
	if canonical, ok := f.fuzzy[strings.ToLower(name)]; ok {
		c := f.cards[strings.ToLower(canonical)]
		return &c, nil
	}
	return nil, nil
}

func (f *fakeCatalog) CardPrintings(_ context.Context, name string) ([]models.Card, error) {
	f.record("printings:" + name)
	if f.printErr != nil {
		return nil, f.printErr
	}
	return f.printings[name], nil
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestResolve_ExactNamesKeepCanonicalName(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	for _, name := range []string{"Sol Ring", "Lightning Bolt", "Commander's Plate"} {
		res := r.Resolve(context.Background(), name)
		if res.Kind != KindFound {
			t.Fatalf("Resolve(%q) kind = %s, want found", name, res.Kind)
		}
		if res.Card.Name != name {
			t.Errorf("Resolve(%q) canonical name = %q", name, res.Card.Name)
		}
		if res.CanonicalName != name {
			t.Errorf("Resolve(%q) CanonicalName = %q", name, res.CanonicalName)
		}
	}

	// Exact hits never fall through to fuzzy.
	if got := catalog.callCount(); got != 3 {
		t.Errorf("expected 3 catalog calls, got %d: %v", got, catalog.calls)
	}
}

func TestResolve_CardNamesContainingFrom(t *testing.T) {
	catalog := newFakeCatalog()
	names := []string{"Pull from Tomorrow", "Pull from Eternity", "Howl from Beyond"}
	for _, name := range names {
		catalog.cards[strings.ToLower(name)] = models.Card{Name: name, SetCode: "akh", SetName: "Amonkhet"}
	}
	r := NewResolver(catalog, DefaultPolicy(), nil)

	for _, name := range names {
		res := r.Resolve(context.Background(), name)
		if res.Kind != KindFound || res.CanonicalName != name {
			t.Errorf("Resolve(%q) = %s %q, want found", name, res.Kind, res.CanonicalName)
		}
		if res.Request.HasSet() {
			t.Errorf("Resolve(%q) split off set %q", name, res.Request.SetIdentifier)
		}
	}
	want := []string{"exact:Pull from Tomorrow", "exact:Pull from Eternity", "exact:Howl from Beyond"}
	if fmt.Sprint(catalog.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", catalog.calls, want)
	}

	catalog.printings["Pull from Tomorrow"] = []models.Card{
		{ID: "pft-akh", Name: "Pull from Tomorrow", SetCode: "akh", SetName: "Amonkhet", ReleasedAt: "2017-04-28", PriceUSD: 0.5},
		{ID: "pft-2x2", Name: "Pull from Tomorrow", SetCode: "2x2", SetName: "Double Masters 2022", ReleasedAt: "2022-07-08", PriceUSD: 0.4},
	}
	res := r.Resolve(context.Background(), "Pull from Tomorrow from amonkhet")
	if res.Kind != KindFound || res.Card.ID != "pft-akh" {
		t.Errorf("expected the Amonkhet printing, got %s %+v", res.Kind, res.Card)
	}
}

func TestResolve_FuzzyRecoversMissingApostrophe(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	res := r.Resolve(context.Background(), "commanders plate")
	if res.Kind != KindFound {
		t.Fatalf("kind = %s, want found", res.Kind)
	}
	if res.Card.Name != "Commander's Plate" {
		t.Errorf("expected canonical name \"Commander's Plate\", got %q", res.Card.Name)
	}
	if res.LookupKey != "commanders plate" {
		t.Errorf("LookupKey = %q", res.LookupKey)
	}

	want := []string{"exact:commanders plate", "fuzzy:commanders plate"}
	if fmt.Sprint(catalog.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", catalog.calls, want)
	}
}

func TestResolve_QuestionPhrasing(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	res := r.Resolve(context.Background(), "how does commanders plate work?")
	if res.Kind != KindFound || res.Card.Name != "Commander's Plate" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestResolve_NotFound(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	res := r.Resolve(context.Background(), "Fake Card Name Xyz123")
	if res.Kind != KindNotFound {
		t.Fatalf("kind = %s, want not_found", res.Kind)
	}
	if res.Card != nil || res.Err != nil {
		t.Errorf("not found result should carry no card or error: %+v", res)
	}
	if got := catalog.callCount(); got != 2 {
		t.Errorf("expected exactly 2 catalog calls, got %d", got)
	}
}

func TestResolve_InvalidInput(t *testing.T) {
	tests := []string{"", "   ", "how does", "can you explain", "what is it works?"}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			catalog := newFakeCatalog()
			r := NewResolver(catalog, DefaultPolicy(), nil)

			res := r.Resolve(context.Background(), in)
			if in == "what is it works?" {
				// "it" survives normalization and is a real lookup.
				if res.Kind != KindNotFound {
					t.Errorf("kind = %s, want not_found", res.Kind)
				}
				return
			}
			if res.Kind != KindInvalidInput {
				t.Errorf("kind = %s, want invalid_input", res.Kind)
			}
			if catalog.callCount() != 0 {
				t.Errorf("invalid input should not reach the catalog, got %v", catalog.calls)
			}
		})
	}
}

func TestResolve_ServiceUnavailable(t *testing.T) {
	errBoom := errors.New("dial tcp: connection refused")

	t.Run("exact lookup fails", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.exactErr = errBoom
		r := NewResolver(catalog, DefaultPolicy(), nil)

		res := r.Resolve(context.Background(), "Sol Ring")
		if res.Kind != KindServiceUnavailable {
			t.Fatalf("kind = %s, want service_unavailable", res.Kind)
		}
		if !errors.Is(res.Err, errBoom) {
			t.Errorf("expected wrapped transport error, got %v", res.Err)
		}
		// No retry and no fuzzy attempt after a failure.
		if got := catalog.callCount(); got != 1 {
			t.Errorf("expected 1 catalog call, got %d", got)
		}
	})

	t.Run("fuzzy lookup fails", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.fuzzyErr = errBoom
		r := NewResolver(catalog, DefaultPolicy(), nil)

		res := r.Resolve(context.Background(), "commanders plate")
		if res.Kind != KindServiceUnavailable {
			t.Fatalf("kind = %s, want service_unavailable", res.Kind)
		}
	})

	t.Run("printings lookup fails", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.printErr = errBoom
		r := NewResolver(catalog, DefaultPolicy(), nil)

		res := r.Resolve(context.Background(), "Sol Ring from cmr")
		if res.Kind != KindServiceUnavailable {
			t.Fatalf("kind = %s, want service_unavailable", res.Kind)
		}
	})
}

func TestResolve_Overrides(t *testing.T) {
	catalog := newFakeCatalog()
	policy := DefaultPolicy()
	policy.Overrides = map[string]string{"Bolt": "Lightning Bolt"}
	r := NewResolver(catalog, policy, nil)

	res := r.Resolve(context.Background(), "what is bolt")
	if res.Kind != KindFound || res.Card.Name != "Lightning Bolt" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if catalog.calls[0] != "exact:Lightning Bolt" {
		t.Errorf("expected override to drive the exact lookup, got %v", catalog.calls)
	}
}

func TestResolve_InjectedOverridesWin(t *testing.T) {
	catalog := newFakeCatalog()
	policy := DefaultPolicy()
	policy.Overrides = map[string]string{"ring": "Lightning Bolt"}
	r := NewResolver(catalog, policy, MapOverrides{"ring": "Sol Ring"})

	res := r.Resolve(context.Background(), "ring")
	if res.Kind != KindFound || res.Card.Name != "Sol Ring" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestResolve_SetByPartialName(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	res := r.Resolve(context.Background(), "Sol Ring from edge of eternities")
	if res.Request.CardName != "Sol Ring" || res.Request.SetIdentifier != "edge of eternities" {
		t.Fatalf("unexpected parse: %+v", res.Request)
	}
	if res.Kind != KindFound {
		t.Fatalf("kind = %s, want found", res.Kind)
	}
	if res.Card.SetCode != "eoc" {
		t.Errorf("expected Edge of Eternities printing, got %s (%s)", res.Card.SetName, res.Card.SetCode)
	}

	want := []string{"exact:Sol Ring", "printings:Sol Ring"}
	if fmt.Sprint(catalog.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", catalog.calls, want)
	}
}

func TestResolve_SetNotPrintedListsAlternatives(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	res := r.Resolve(context.Background(), "Lightning Bolt from m21")
	if res.Kind != KindAmbiguousSet {
		t.Fatalf("kind = %s, want ambiguous_set", res.Kind)
	}
	if res.CanonicalName != "Lightning Bolt" {
		t.Errorf("CanonicalName = %q", res.CanonicalName)
	}
	if res.Card != nil {
		t.Errorf("ambiguous result should not pin a card")
	}

	var codes []string
	for _, c := range res.Candidates {
		codes = append(codes, c.SetCode)
	}
	// One entry per set, newest first.
	if strings.Join(codes, ",") != "sta,2xm,m10" {
		t.Errorf("candidates = %v, want [sta 2xm m10]", codes)
	}
}

func TestResolve_SetCodeAndTrailingQuestion(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	res := r.Resolve(context.Background(), "how does Lightning Bolt from the Magic 2010 set work?")
	if res.Kind != KindFound {
		t.Fatalf("kind = %s, want found", res.Kind)
	}
	// Both m10 printings match; the priced one wins.
	if res.Card.ID != "bolt-m10" {
		t.Errorf("expected priced m10 printing, got %s", res.Card.ID)
	}
}

func TestResolve_SubstringTieBreakPrefersNewestPriced(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	// "commander" matches eoc (unpriced), cmr and c21.
	res := r.Resolve(context.Background(), "Sol Ring from commander")
	if res.Kind != KindFound {
		t.Fatalf("kind = %s, want found", res.Kind)
	}
	if res.Card.ID != "sol-c21" {
		t.Errorf("expected newest priced printing sol-c21, got %s", res.Card.ID)
	}
}

func TestResolve_NoSetSkipsPrintings(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	res := r.Resolve(context.Background(), "Sol Ring")
	if res.Kind != KindFound {
		t.Fatalf("kind = %s", res.Kind)
	}
	for _, call := range catalog.calls {
		if strings.HasPrefix(call, "printings:") {
			t.Errorf("printings should not be fetched without a set: %v", catalog.calls)
		}
	}
}

func TestDisambiguate_EmptyPrintingsFallsBackToCard(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	card := models.Card{Name: "Commander's Plate", SetCode: "cmr", SetName: "Commander Legends", ReleasedAt: "2020-11-20"}
	req := LookupRequest{RawText: "Commander's Plate from xyz", CardName: "Commander's Plate", SetIdentifier: "xyz"}

	res := r.Disambiguate(context.Background(), req, card)
	if res.Kind != KindAmbiguousSet {
		t.Fatalf("kind = %s, want ambiguous_set", res.Kind)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].SetCode != "cmr" {
		t.Errorf("expected the resolved card's own set, got %+v", res.Candidates)
	}

	req.SetIdentifier = "legends"
	res = r.Disambiguate(context.Background(), req, card)
	if res.Kind != KindFound || res.Card.SetCode != "cmr" {
		t.Errorf("expected found cmr, got %+v", res)
	}
}

func TestResolve_ConcurrentRequestsAreIndependent(t *testing.T) {
	catalog := newFakeCatalog()
	r := NewResolver(catalog, DefaultPolicy(), nil)

	inputs := map[string]Kind{
		"Sol Ring":                KindFound,
		"commanders plate":        KindFound,
		"Lightning Bolt from m21": KindAmbiguousSet,
		"Fake Card Name Xyz123":   KindNotFound,
		"explain":                 KindInvalidInput,
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for in, want := range inputs {
			wg.Add(1)
			go func(in string, want Kind) {
				defer wg.Done()
				if got := r.Resolve(context.Background(), in).Kind; got != want {
					t.Errorf("Resolve(%q) = %s, want %s", in, got, want)
				}
			}(in, want)
		}
	}
	wg.Wait()
}
