package carrierprofile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/carrier-transport/internal/domain/shipping"
	"github.com/erp/carrier-transport/internal/infrastructure/carrierprofile"
)

func TestBuiltin(t *testing.T) {
	profiles, err := carrierprofile.Builtin()
	require.NoError(t, err)
	assert.Equal(t, []string{"postnord", "postnord-flag"}, profiles.Names())

	p, err := profiles.Get("")
	require.NoError(t, err)
	assert.Equal(t, shipping.CarrierProfile{
		CarrierName: "Postnord",
		Namespace:   "PostnordTransport",
		HomeCountry: "DK",
		Services: shipping.ServiceCodes{
			PickupPoint:   "P19DK",
			Domestic:      "PDK17",
			International: "PDKBREVI",
		},
		Addons: shipping.AddonCodes{
			PickupPoint:       "PUPOPT",
			EmailNotification: "NOTEMAIL",
			SmsNotification:   "NOTSMS",
		},
		Notifications:    shipping.NotificationPolicyContact,
		CustomerNumber:   true,
		DefaultMedia:     "thermo-190",
		DefaultPrintType: "pdf",
	}, p)

	flag, err := profiles.Get("postnord-flag")
	require.NoError(t, err)
	assert.Equal(t, shipping.NotificationPolicyFlag, flag.Notifications)
	assert.Equal(t, p.Namespace, flag.Namespace)
}

func TestProfiles_GetUnknown(t *testing.T) {
	profiles, err := carrierprofile.Builtin()
	require.NoError(t, err)

	_, err = profiles.Get("gls")
	assert.ErrorIs(t, err, carrierprofile.ErrUnknownProfile)
	assert.Contains(t, err.Error(), "postnord")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		check   func(t *testing.T, p carrierprofile.Profiles)
	}{
		{
			name: "notification policy defaults to contact",
			yaml: `
bring:
  carrier_name: Bring
  namespace: BringTransport
  home_country: "NO"
  services: {pickup_point: "340", domestic: "5800", international: "PICKUP_PARCEL"}
`,
			check: func(t *testing.T, p carrierprofile.Profiles) {
				assert.Equal(t, shipping.NotificationPolicyContact, p["bring"].Notifications)
				assert.Equal(t, "NO", p["bring"].HomeCountry)
			},
		},
		{
			name: "missing service codes",
			yaml: `
broken:
  carrier_name: Broken
  namespace: BrokenTransport
  home_country: SE
`,
			wantErr: shipping.ErrProfileInvalid,
		},
		{
			name: "unknown policy",
			yaml: `
odd:
  carrier_name: Odd
  namespace: OddTransport
  home_country: SE
  services: {pickup_point: a, domestic: b, international: c}
  notifications: carrier-pigeon
`,
			wantErr: shipping.ErrProfileInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles, err := carrierprofile.Parse([]byte(tt.yaml))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, profiles)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := carrierprofile.Parse([]byte(`{{{invalid yaml`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing carrier profiles")
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses builtin", func(t *testing.T) {
		profiles, err := carrierprofile.Load("")
		require.NoError(t, err)
		assert.Contains(t, profiles, carrierprofile.DefaultProfile)
	})

	t.Run("file replaces builtin", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profiles.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
custom:
  carrier_name: Postnord
  namespace: PostnordTransport
  home_country: SE
  services: {pickup_point: P19, domestic: P15, international: PIN}
`), 0o644))

		profiles, err := carrierprofile.Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"custom"}, profiles.Names())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := carrierprofile.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
