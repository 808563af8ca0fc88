// Package clock abstrae la hora actual para que las reglas con ventanas de tiempo sean testeables.
package clock

import (
	"sync"
	"time"
)

// Clock fuente de la hora actual.
type Clock interface {
	Now() time.Time
}

// Real usa la hora del sistema.
type Real struct{}

// Now hora actual en UTC.
func (Real) Now() time.Time { return time.Now().UTC() }

// Fixed reloj controlable para tests.
type Fixed struct {
	mu      sync.Mutex
	current time.Time
}

// NewFixed crea un reloj detenido en t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{current: t}
}

// Now hora fijada.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Set fija la hora.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.current = t
	f.mu.Unlock()
}

// Advance adelanta el reloj d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.current = f.current.Add(d)
	f.mu.Unlock()
}
