// Package carrierprofile loads carrier profiles: the service-code tables and
// policies the shipment translator is parameterised with.
package carrierprofile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/erp/carrier-transport/internal/domain/shipping"
)

// DefaultProfile is the profile used when none is configured
const DefaultProfile = "postnord"

//go:embed profiles.yaml
var builtin []byte

// ErrUnknownProfile is returned when the named profile is not defined
var ErrUnknownProfile = errors.New("carrierprofile: unknown profile")

// Profiles is a set of carrier profiles by name
type Profiles map[string]shipping.CarrierProfile

// Builtin returns the profiles shipped with the binary
func Builtin() (Profiles, error) {
	return Parse(builtin)
}

// Parse decodes and validates a YAML profile document
func Parse(data []byte) (Profiles, error) {
	var profiles Profiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parsing carrier profiles: %w", err)
	}
	for name, p := range profiles {
		if p.Notifications == "" {
			p.Notifications = shipping.NotificationPolicyContact
			profiles[name] = p
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
	}
	return profiles, nil
}

// Load reads profiles from path, or the built-in set when path is empty.
// A file replaces the built-in set entirely.
func Load(path string) (Profiles, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Get returns the named profile, or the default when name is empty
func (p Profiles) Get(name string) (shipping.CarrierProfile, error) {
	if name == "" {
		name = DefaultProfile
	}
	profile, ok := p[name]
	if !ok {
		return shipping.CarrierProfile{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownProfile, name, p.Names())
	}
	return profile, nil
}

// Names returns the profile names in sorted order
func (p Profiles) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
