package di

// resolveVisitor tracks the providers an injector is in the middle of resolving.
type resolveVisitor struct {
	trail []Key
}

// Enter records k as being resolved.
// It returns a [*CircularDependencyError] if k is already being resolved.
func (v *resolveVisitor) Enter(k Key) error {
	for i, r := range v.trail {
		if r.ID() != k.ID() {
			continue
		}

		chain := make([]string, 0, len(v.trail)-i+1)
		for _, c := range v.trail[i:] {
			chain = append(chain, providerName(c))
		}
		chain = append(chain, providerName(k))

		return &CircularDependencyError{Chain: chain}
	}

	v.trail = append(v.trail, k)
	return nil
}

// Leave removes the most recently entered provider.
func (v *resolveVisitor) Leave() {
	v.trail[len(v.trail)-1] = nil
	v.trail = v.trail[:len(v.trail)-1]
}

// Depth returns the number of providers being resolved.
func (v *resolveVisitor) Depth() int {
	return len(v.trail)
}
