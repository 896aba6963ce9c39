package domain

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock devolve sempre o mesmo instante; usado em testes e relatórios reprocessados.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// DateOnly normaliza um instante para a meia-noite UTC do mesmo dia civil.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
