package engine

// Options configures a search and the game driver around it.
type Options struct {
	// Plies searched below the root; must be >= 1.
	Depth int
	// Root branches evaluated in parallel. 1 searches depth-first on the
	// calling goroutine.
	Workers int
	// Discount applied to every score folded in from one ply deeper.
	Uncertainty float64
	// Weight of the mover's attacked material subtracted from every candidate.
	ThreatWeight float64
	// Plies the history store keeps below its retained root.
	Horizon int
	// Consult the opening catalog before searching.
	UseBook bool
	// Use 64-bit piece records instead of 32-bit ones.
	Wide bool
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{
		Depth:        3,
		Workers:      1,
		Uncertainty:  0.99,
		ThreatWeight: 0.1,
		Horizon:      6,
		UseBook:      true,
	}
}

// normalized fills zero values with their defaults.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Depth < 1 {
		o.Depth = d.Depth
	}
	if o.Workers < 1 {
		o.Workers = d.Workers
	}
	if o.Uncertainty <= 0 || o.Uncertainty > 1 {
		o.Uncertainty = d.Uncertainty
	}
	if o.ThreatWeight < 0 {
		o.ThreatWeight = d.ThreatWeight
	}
	if o.Horizon < 1 {
		o.Horizon = d.Horizon
	}
	return o
}
