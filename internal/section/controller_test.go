package section

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeView struct {
	mu       sync.Mutex
	sizes    map[string]int
	extents  map[string]int
	expanded map[string]string
	measured int
}

func newFakeView(sizes map[string]int) *fakeView {
	return &fakeView{
		sizes:    sizes,
		extents:  map[string]int{},
		expanded: map[string]string{},
	}
}

func (v *fakeView) NaturalSize(id string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.measured++
	return v.sizes[id]
}

func (v *fakeView) SetMaxExtent(id string, px int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.extents[id] = px
}

func (v *fakeView) SetExpanded(id string, expanded bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if expanded {
		v.expanded[id] = "true"
	} else {
		v.expanded[id] = "false"
	}
}

func (v *fakeView) setSize(id string, px int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sizes[id] = px
}

type manualScheduler struct {
	delays  []time.Duration
	pending []func()
}

func (s *manualScheduler) After(d time.Duration, fn func()) {
	s.delays = append(s.delays, d)
	s.pending = append(s.pending, fn)
}

func (s *manualScheduler) runAll() {
	fns := s.pending
	s.pending = nil
	for _, fn := range fns {
		fn()
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func resumePairs() []Pair {
	return []Pair{
		{ID: "profile", HeaderID: "profile-header", ContentID: "profile-content"},
		{ID: "experience", HeaderID: "experience-header", ContentID: "experience-content"},
		{ID: "skills", HeaderID: "skills-header", ContentID: "skills-content"},
	}
}

func newTestController(t *testing.T, policy Policy) (*Controller, *fakeView, *manualScheduler) {
	t.Helper()
	view := newFakeView(map[string]int{"profile": 120, "experience": 340, "skills": 200})
	sched := &manualScheduler{}
	c := New(resumePairs(), policy, view, WithScheduler(sched), WithLogger(quietLogger()))
	return c, view, sched
}

func TestNewStartsClosed(t *testing.T) {
	c, view, _ := newTestController(t, Exclusive)

	for _, id := range []string{"profile", "experience", "skills"} {
		assert.False(t, c.IsOpen(id))
		assert.Equal(t, "false", view.expanded[id])
		assert.Equal(t, 0, view.extents[id])
	}
	assert.Empty(t, c.OpenIDs())
}

func TestOpenAndCloseMirrorState(t *testing.T) {
	for _, policy := range []Policy{Independent, Exclusive} {
		t.Run(policy.String(), func(t *testing.T) {
			c, view, _ := newTestController(t, policy)

			for _, id := range []string{"profile", "experience", "skills"} {
				require.True(t, c.Open(id))
				assert.True(t, c.IsOpen(id))
				assert.Equal(t, "true", c.Expanded(id))
				assert.Equal(t, "true", view.expanded[id])
				assert.Equal(t, view.sizes[id], view.extents[id])

				require.True(t, c.Close(id))
				assert.False(t, c.IsOpen(id))
				assert.Equal(t, "false", view.expanded[id])
				assert.Equal(t, 0, view.extents[id])
			}
		})
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	c, view, _ := newTestController(t, Exclusive)

	assert.True(t, c.Open("experience"))
	once := c.Snapshot()
	measured := view.measured

	assert.False(t, c.Open("experience"))
	assert.Equal(t, once, c.Snapshot())
	assert.Equal(t, measured, view.measured, "second open must not touch the view")
}

func TestCloseWhenClosedIsNoop(t *testing.T) {
	c, _, _ := newTestController(t, Independent)

	assert.False(t, c.Close("skills"))
	assert.False(t, c.IsOpen("skills"))
}

func TestExclusivePolicyClosesOthers(t *testing.T) {
	c, view, _ := newTestController(t, Exclusive)

	ids := []string{"profile", "experience", "skills"}
	for _, a := range ids {
		require.True(t, c.Open(a))
		for _, b := range ids {
			if b == a {
				continue
			}
			assert.False(t, c.IsOpen(b), "opening %s must close %s", a, b)
			assert.Equal(t, "false", view.expanded[b])
		}
		assert.Equal(t, []string{a}, c.OpenIDs())
	}
}

func TestIndependentPolicyKeepsOthers(t *testing.T) {
	c, _, _ := newTestController(t, Independent)

	c.Open("profile")
	c.Open("skills")

	assert.Equal(t, []string{"profile", "skills"}, c.OpenIDs())
}

func TestToggleTwiceRestores(t *testing.T) {
	for _, policy := range []Policy{Independent, Exclusive} {
		t.Run(policy.String(), func(t *testing.T) {
			c, _, _ := newTestController(t, policy)
			c.Open("profile")

			for _, id := range []string{"profile", "skills"} {
				before := c.IsOpen(id)
				c.Toggle(id)
				c.Toggle(id)
				assert.Equal(t, before, c.IsOpen(id), id)
			}
		})
	}
}

func TestToggleSwitchesExclusiveSection(t *testing.T) {
	c, view, _ := newTestController(t, Exclusive)
	require.True(t, c.Open("profile"))

	assert.True(t, c.Toggle("skills"))

	assert.False(t, c.IsOpen("profile"))
	assert.True(t, c.IsOpen("skills"))
	assert.Equal(t, "false", view.expanded["profile"])
	assert.Equal(t, "true", view.expanded["skills"])
}

func TestOpenUnknownSectionChangesNothing(t *testing.T) {
	c, _, _ := newTestController(t, Exclusive)
	c.Open("profile")
	before := c.Snapshot()

	assert.NotPanics(t, func() {
		assert.False(t, c.Open("nonexistent-id"))
		assert.False(t, c.Close("nonexistent-id"))
		assert.False(t, c.Toggle("nonexistent-id"))
		assert.False(t, c.Reveal("nonexistent-id"))
	})
	assert.Equal(t, before, c.Snapshot())
}

func TestCloseAll(t *testing.T) {
	c, view, _ := newTestController(t, Independent)
	c.Open("profile")
	c.Open("experience")
	c.Open("skills")

	assert.Equal(t, 3, c.CloseAll())

	assert.Empty(t, c.OpenIDs())
	for _, id := range []string{"profile", "experience", "skills"} {
		assert.Equal(t, "false", view.expanded[id])
		assert.Equal(t, 0, view.extents[id])
	}
	assert.Equal(t, 0, c.CloseAll())
}

func TestMissingContentIsIgnored(t *testing.T) {
	view := newFakeView(map[string]int{"profile": 100, "orphan": 50})
	c := New([]Pair{
		{ID: "profile", HeaderID: "profile-header", ContentID: "profile-content"},
		{ID: "orphan", HeaderID: "orphan-header"},
	}, Independent, view, WithLogger(quietLogger()))

	assert.NotPanics(t, func() {
		assert.False(t, c.Open("orphan"))
		assert.False(t, c.Toggle("orphan"))
		assert.False(t, c.Close("orphan"))
	})
	assert.False(t, c.IsOpen("orphan"))
	_, touched := view.expanded["orphan"]
	assert.False(t, touched)

	id, ok := c.SectionForHeader("orphan-header")
	require.True(t, ok)
	assert.Equal(t, "orphan", id)
}

func TestNewSkipsDuplicatesAndDefaultsHeader(t *testing.T) {
	view := newFakeView(map[string]int{})
	c := New([]Pair{
		{ID: "profile", ContentID: "profile-content"},
		{ID: "profile", HeaderID: "other", ContentID: "other-content"},
		{HeaderID: "nameless", ContentID: "x"},
	}, Exclusive, view, WithLogger(quietLogger()))

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "profile-header", snap[0].HeaderID)

	_, ok := c.SectionForHeader("other")
	assert.False(t, ok)
}

func TestZeroSizeIsRemeasured(t *testing.T) {
	c, view, sched := newTestController(t, Exclusive)
	view.setSize("skills", 0)

	require.True(t, c.Open("skills"))
	assert.Equal(t, 0, view.extents["skills"])
	require.Len(t, sched.pending, 1)
	assert.Equal(t, DefaultRemeasureDelay, sched.delays[0])

	view.setSize("skills", 180)
	sched.runAll()

	assert.Equal(t, 180, view.extents["skills"])
	assert.True(t, c.IsOpen("skills"))
}

func TestRemeasureSkipsClosedSection(t *testing.T) {
	c, view, sched := newTestController(t, Exclusive)
	view.setSize("skills", 0)

	c.Open("skills")
	c.Open("profile")
	view.setSize("skills", 180)
	sched.runAll()

	assert.False(t, c.IsOpen("skills"))
	assert.Equal(t, 0, view.extents["skills"])
	assert.Equal(t, "false", view.expanded["skills"])
}

func TestOpenMeasuresAtCallTime(t *testing.T) {
	c, view, _ := newTestController(t, Independent)

	c.Open("profile")
	c.Close("profile")
	view.setSize("profile", 999)
	c.Open("profile")

	assert.Equal(t, 999, view.extents["profile"])
}

func TestRemeasureAfterResize(t *testing.T) {
	c, view, _ := newTestController(t, Independent)
	c.Open("profile")
	c.Open("skills")

	view.setSize("profile", 80)
	view.setSize("experience", 1000)

	assert.Equal(t, 1, c.Remeasure())
	assert.Equal(t, 80, view.extents["profile"])
	assert.Equal(t, 0, view.extents["experience"])
}

func TestReveal(t *testing.T) {
	c, _, _ := newTestController(t, Independent)
	c.Open("profile")
	c.Open("experience")

	assert.True(t, c.Reveal("skills"))
	assert.Equal(t, []string{"skills"}, c.OpenIDs())

	assert.False(t, c.Reveal("skills"))
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "exclusive", want: Exclusive},
		{in: " Single ", want: Exclusive},
		{in: "independent", want: Independent},
		{in: "multi", want: Independent},
		{in: "sometimes", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSkipsSharedHeader(t *testing.T) {
	view := newFakeView(map[string]int{"profile": 120, "skills": 200})
	c := New([]Pair{
		{ID: "profile", HeaderID: "top-header", ContentID: "profile-content"},
		{ID: "skills", HeaderID: "top-header", ContentID: "skills-content"},
	}, Exclusive, view, WithLogger(quietLogger()))

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "profile", snap[0].ID)

	id, ok := c.SectionForHeader("top-header")
	require.True(t, ok)
	assert.Equal(t, "profile", id, "first registration wins")

	assert.False(t, c.Open("skills"))
	assert.False(t, c.IsOpen("skills"))
}
