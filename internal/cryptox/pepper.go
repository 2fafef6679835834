package cryptox

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/cmgshare/internal/common"
)

// Pepper is a server-side secret mixed into PIN hashes. It is never stored
// next to the credentials.
type Pepper struct {
	Version int
	Secret  []byte
}

// PepperLookup resolves a pepper by version.
type PepperLookup interface {
	Lookup(version int) (Pepper, error)
}

// PepperRing holds every pepper version the deployment knows about and
// marks the one used for new credentials. It is read-only after construction
// and safe for concurrent use.
type PepperRing struct {
	current int
	secrets map[int][]byte
}

// NewPepperRing builds a ring. The current version must be present.
func NewPepperRing(current int, secrets map[int][]byte) (*PepperRing, error) {
	r := &PepperRing{current: current, secrets: make(map[int][]byte, len(secrets))}
	for v, s := range secrets {
		if len(s) == 0 {
			continue
		}
		r.secrets[v] = append([]byte(nil), s...)
	}
	if _, ok := r.secrets[current]; !ok {
		return nil, fmt.Errorf("%w: no pepper configured for current version %d", common.ErrConfiguration, current)
	}
	return r, nil
}

// Current returns the pepper used for new credentials.
func (r *PepperRing) Current() Pepper {
	p, _ := r.Lookup(r.current)
	return p
}

// Lookup returns the pepper for version, or ErrConfiguration.
func (r *PepperRing) Lookup(version int) (Pepper, error) {
	s, ok := r.secrets[version]
	if !ok {
		return Pepper{}, fmt.Errorf("%w: pepper version %d is not configured", common.ErrConfiguration, version)
	}
	return Pepper{Version: version, Secret: s}, nil
}

// Versions lists the configured versions in ascending order.
func (r *PepperRing) Versions() []int {
	vs := make([]int, 0, len(r.secrets))
	for v := range r.secrets {
		vs = append(vs, v)
	}
	sort.Ints(vs)
	return vs
}
