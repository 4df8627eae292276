package sensor

import "errors"

// Fake is a test double that returns scripted temperatures.
type Fake struct {
	// Temps contains scripted values. Each call to Read consumes the next one;
	// once exhausted the last value repeats.
	Temps []float64

	index int

	// Reads counts calls to Read.
	Reads int

	// ReadError, if set, is returned by Read.
	ReadError error

	// FailAt, if > 0, makes the FailAt-th call (1-based) return ReadError
	// (or ErrRead when ReadError is nil) instead of a value.
	FailAt int
}

// NewFake creates a Fake with the given temperatures.
func NewFake(temps ...float64) *Fake {
	return &Fake{Temps: temps}
}

// Read returns the next scripted temperature.
func (f *Fake) Read() (float64, error) {
	f.Reads++
	if f.FailAt > 0 && f.Reads == f.FailAt {
		if f.ReadError != nil {
			return 0, f.ReadError
		}
		return 0, ErrRead
	}
	if f.FailAt == 0 && f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Temps) == 0 {
		return 0, errors.Join(ErrRead, errors.New("no temperatures configured"))
	}

	t := f.Temps[f.index]
	if f.index < len(f.Temps)-1 {
		f.index++
	}
	return t, nil
}
