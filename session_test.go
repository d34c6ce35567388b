package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sramirezortega/cv/internal/locale"
	"github.com/sramirezortega/cv/internal/logging"
	"github.com/sramirezortega/cv/internal/resume"
	"github.com/sramirezortega/cv/internal/section"
)

func newTestSessions(t *testing.T) (*sessionStore, *time.Time) {
	t.Helper()
	library, err := resume.LoadEmbedded()
	require.NoError(t, err)

	cfg := Config{
		SessionTTL:     time.Minute,
		SectionPolicy:  section.Exclusive,
		InitialSection: "profile",
		RemeasureDelay: time.Millisecond,
	}
	store := newSessionStore(cfg, library, logging.NewNopLogger())
	clock := time.Date(2025, 9, 8, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	return store, &clock
}

func TestSessionStartOpensInitialSection(t *testing.T) {
	sessions, _ := newTestSessions(t)

	sess := sessions.start("", locale.English)

	_, err := uuid.Parse(sess.id)
	assert.NoError(t, err)
	assert.Equal(t, []string{"profile"}, sess.controller.OpenIDs())
	assert.True(t, sess.view.isExpanded("profile"))
	assert.Positive(t, sess.view.extent("profile"))
	assert.Zero(t, sess.view.extent("skills"))
	assert.Equal(t, 1, sessions.len())
}

func TestSessionStartKeepsValidID(t *testing.T) {
	sessions, _ := newTestSessions(t)
	id := uuid.NewString()

	first := sessions.start(id, locale.Spanish)
	first.controller.Open("skills")
	second := sessions.start(id, locale.Spanish)

	assert.Equal(t, id, second.id)
	assert.Equal(t, []string{"profile"}, second.controller.OpenIDs(), "a reload starts from the initial state")
	assert.Equal(t, 1, sessions.len())
}

func TestSessionExpiry(t *testing.T) {
	sessions, clock := newTestSessions(t)
	a := sessions.start("", locale.Spanish)
	sessions.start("", locale.English)

	*clock = clock.Add(30 * time.Second)
	_, ok := sessions.get(a.id)
	require.True(t, ok, "get refreshes last seen")

	*clock = clock.Add(45 * time.Second)
	assert.Equal(t, 1, sessions.sweep())
	_, ok = sessions.get(a.id)
	assert.True(t, ok)

	*clock = clock.Add(2 * time.Minute)
	_, ok = sessions.get(a.id)
	assert.False(t, ok)
	assert.Equal(t, 0, sessions.len())
}

func TestVisitorLimiter(t *testing.T) {
	clock := time.Date(2025, 9, 8, 12, 0, 0, 0, time.UTC)
	l := newVisitorLimiter(1, 2, time.Minute)
	l.now = func() time.Time { return clock }

	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"), "buckets are per visitor")

	clock = clock.Add(time.Second)
	assert.True(t, l.allow("a"))

	clock = clock.Add(2 * time.Minute)
	l.prune()
	assert.Empty(t, l.visitors)
}

func TestVisitorLimiterUnlimited(t *testing.T) {
	l := newVisitorLimiter(0, 0, time.Minute)
	for range 100 {
		require.True(t, l.allow("a"))
	}
}

func TestPageViewPrefersReportedHeights(t *testing.T) {
	library, err := resume.LoadEmbedded()
	require.NoError(t, err)
	v := newPageView(library.For(locale.Spanish))

	estimate := v.NaturalSize("skills")
	assert.Positive(t, estimate)

	v.report(map[string]int{"skills": 640, "ghost": 10, "profile": -3})
	assert.Equal(t, 640, v.NaturalSize("skills"))
	assert.NotContains(t, v.reported, "ghost")
	assert.NotContains(t, v.reported, "profile")

	v.report(map[string]int{"skills": 0})
	assert.Equal(t, estimate, v.NaturalSize("skills"))
}

func TestParseHeights(t *testing.T) {
	assert.Equal(t, map[string]int{"profile": 300}, parseHeights(` {"profile": 300} `))
	assert.Nil(t, parseHeights(""))
	assert.Nil(t, parseHeights("not json"))
}

func TestSessionStoreEvictsLeastRecentlySeenAtCapacity(t *testing.T) {
	sessions, clock := newTestSessions(t)
	sessions.max = 2

	a := sessions.start("", locale.Spanish)
	*clock = clock.Add(time.Second)
	b := sessions.start("", locale.Spanish)
	*clock = clock.Add(time.Second)
	_, ok := sessions.get(a.id)
	require.True(t, ok)

	*clock = clock.Add(time.Second)
	c := sessions.start("", locale.English)

	assert.Equal(t, 2, sessions.len())
	_, ok = sessions.get(b.id)
	assert.False(t, ok, "b was idle the longest")
	_, ok = sessions.get(a.id)
	assert.True(t, ok)
	_, ok = sessions.get(c.id)
	assert.True(t, ok)

	sessions.start(c.id, locale.English)
	assert.Equal(t, 2, sessions.len(), "restarting a known id does not evict")
}
