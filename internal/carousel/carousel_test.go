package carousel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock avance à la demande, pour tester le verrou sans dormir.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCarousel(count, pageSize int, opts ...Option) (*Carousel, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	opts = append(opts, WithClock(clock.now), WithSettle(500*time.Millisecond))
	return New(count, pageSize, opts...), clock
}

func TestNextWrapsAround(t *testing.T) {
	c, clock := newTestCarousel(3, 1, WithLoop())

	require.NoError(t, c.Next())
	assert.Equal(t, 1, c.Index())

	clock.advance(time.Second)
	require.NoError(t, c.Next())
	assert.Equal(t, 2, c.Index())

	clock.advance(time.Second)
	require.NoError(t, c.Next())
	assert.Equal(t, 0, c.Index(), "après le dernier élément on revient au premier")
}

func TestPreviousWrapsToEnd(t *testing.T) {
	c, _ := newTestCarousel(5, 1, WithLoop())

	require.NoError(t, c.Previous())
	assert.Equal(t, 4, c.Index())
}

func TestFiniteClampAtEdges(t *testing.T) {
	c, clock := newTestCarousel(5, 2)

	// reculer depuis le début reste au début
	require.NoError(t, c.Previous())
	assert.Equal(t, 0, c.Index())

	// avancer au-delà de la fin est borné pour garder la fenêtre pleine
	for i := 0; i < 10; i++ {
		clock.advance(time.Second)
		require.NoError(t, c.Next())
	}
	assert.Equal(t, 3, c.Index())
}

func TestTransitionLock(t *testing.T) {
	c, clock := newTestCarousel(4, 1, WithLoop())

	require.NoError(t, c.Next())
	assert.True(t, c.Busy())

	// seconde transition avant la fin du settle : refusée
	assert.ErrorIs(t, c.Next(), ErrTransitionInProgress)
	assert.Equal(t, 1, c.Index())

	// après le settle, le verrou est relâché
	clock.advance(600 * time.Millisecond)
	assert.False(t, c.Busy())
	require.NoError(t, c.Next())
	assert.Equal(t, 2, c.Index())
}

func TestJumpTo(t *testing.T) {
	c, _ := newTestCarousel(6, 2, WithLoop())

	require.NoError(t, c.JumpTo(4))
	assert.Equal(t, 4, c.Index())

	assert.ErrorIs(t, c.JumpTo(6), ErrIndexOutOfRange)
	assert.ErrorIs(t, c.JumpTo(-1), ErrIndexOutOfRange)
}

func TestWindowWrapsOverEnd(t *testing.T) {
	c, _ := newTestCarousel(5, 3, WithLoop())

	require.NoError(t, c.JumpTo(4))
	// la fenêtre enjambe la fin : 4, 0, 1 — sans dupliquer la séquence
	assert.Equal(t, []int{4, 0, 1}, c.Window())
}

func TestWindowTruncatedWithoutLoop(t *testing.T) {
	c, clock := newTestCarousel(4, 3)

	require.NoError(t, c.Next())
	clock.advance(time.Second)
	assert.Equal(t, []int{1, 2, 3}, c.Window())
}

func TestEmptyCarousel(t *testing.T) {
	c, _ := newTestCarousel(0, 4, WithLoop())

	require.NoError(t, c.Next())
	assert.Empty(t, c.Window())
}

func TestWindowSmallerThanPageSize(t *testing.T) {
	c, _ := newTestCarousel(2, 4)
	assert.Equal(t, []int{0, 1}, c.Window())
}

func TestPageBounds(t *testing.T) {
	from, to := PageBounds(10, 1, 4)
	assert.Equal(t, 0, from)
	assert.Equal(t, 4, to)

	from, to = PageBounds(10, 3, 4)
	assert.Equal(t, 8, from)
	assert.Equal(t, 10, to)

	// page au-delà de la fin : tranche vide
	from, to = PageBounds(10, 9, 4)
	assert.Equal(t, from, to)
}
