// Package carousel fournit l'état de pagination des sections produits et des
// bannières : une fenêtre de taille fixe sur une séquence ordonnée, avec
// bouclage circulaire par arithmétique modulaire et un verrou de transition
// temporisé qui empêche deux transitions de se chevaucher.
package carousel

import (
	"errors"
	"time"
)

var (
	// ErrTransitionInProgress : une transition est déjà en cours, la nouvelle est refusée
	ErrTransitionInProgress = errors.New("transition déjà en cours")
	// ErrIndexOutOfRange : JumpTo en dehors de la séquence
	ErrIndexOutOfRange = errors.New("index hors séquence")
)

const DefaultSettle = 500 * time.Millisecond

// Carousel fait défiler une séquence de n éléments, pageSize visibles à la fois.
// Le bouclage est un simple modulo sur l'index réel : pas de séquence dupliquée,
// pas de saut de ré-ancrage.
type Carousel struct {
	count    int
	pageSize int
	index    int

	loop   bool
	settle time.Duration
	now    func() time.Time

	lockedUntil time.Time
}

type Option func(*Carousel)

// WithLoop active le défilement infini (bouclage circulaire).
func WithLoop() Option {
	return func(c *Carousel) { c.loop = true }
}

// WithSettle fixe la durée pendant laquelle le verrou de transition est tenu.
func WithSettle(d time.Duration) Option {
	return func(c *Carousel) { c.settle = d }
}

// WithClock remplace l'horloge, pour les tests.
func WithClock(now func() time.Time) Option {
	return func(c *Carousel) { c.now = now }
}

func New(count, pageSize int, opts ...Option) *Carousel {
	if pageSize < 1 {
		pageSize = 1
	}
	c := &Carousel{
		count:    count,
		pageSize: pageSize,
		settle:   DefaultSettle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Busy indique si le verrou de transition est encore tenu.
func (c *Carousel) Busy() bool {
	return c.now().Before(c.lockedUntil)
}

// Index renvoie l'index courant (premier élément visible).
func (c *Carousel) Index() int {
	return c.index
}

// Next avance d'un élément. Sans bouclage, l'index est borné pour que la
// fenêtre reste dans la séquence.
func (c *Carousel) Next() error {
	return c.transition(c.index + 1)
}

// Previous recule d'un élément.
func (c *Carousel) Previous() error {
	return c.transition(c.index - 1)
}

// JumpTo saute directement à un index de la séquence.
func (c *Carousel) JumpTo(index int) error {
	if index < 0 || index >= c.count {
		return ErrIndexOutOfRange
	}
	return c.transition(index)
}

func (c *Carousel) transition(target int) error {
	if c.count == 0 {
		return nil
	}
	if c.Busy() {
		return ErrTransitionInProgress
	}

	if c.loop {
		// modulo positif : -1 devient count-1
		target = ((target % c.count) + c.count) % c.count
	} else {
		max := c.count - c.pageSize
		if max < 0 {
			max = 0
		}
		if target < 0 {
			target = 0
		}
		if target > max {
			target = max
		}
	}

	c.index = target
	c.lockedUntil = c.now().Add(c.settle)
	return nil
}

// Window renvoie les index des éléments visibles à partir de l'index courant.
// En mode bouclé la fenêtre enjambe la fin de séquence ; sinon elle est
// tronquée à la fin.
func (c *Carousel) Window() []int {
	if c.count == 0 {
		return nil
	}

	size := c.pageSize
	if !c.loop && c.index+size > c.count {
		size = c.count - c.index
	}
	if size > c.count {
		size = c.count
	}

	window := make([]int, 0, size)
	for i := 0; i < size; i++ {
		window = append(window, (c.index+i)%c.count)
	}
	return window
}

// PageBounds calcule la tranche [from, to) d'une pagination classique par
// pages, partagée avec le listing produits.
func PageBounds(count, page, perPage int) (from, to int) {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	from = (page - 1) * perPage
	if from > count {
		from = count
	}
	to = from + perPage
	if to > count {
		to = count
	}
	return from, to
}
