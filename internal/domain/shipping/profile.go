package shipping

import (
	"fmt"
	"strings"
)

// NotificationPolicy decides what triggers the email and SMS notification add-ons
type NotificationPolicy string

const (
	// NotificationPolicyContact adds a notification when the receiver's contact has the channel
	NotificationPolicyContact NotificationPolicy = "contact"
	// NotificationPolicyFlag adds a notification when the shipment explicitly asks for it
	NotificationPolicyFlag NotificationPolicy = "flag"
)

// IsValid returns true if the policy is known
func (p NotificationPolicy) IsValid() bool {
	switch p {
	case NotificationPolicyContact, NotificationPolicyFlag:
		return true
	default:
		return false
	}
}

// ServiceCodes are the carrier's base service codes
type ServiceCodes struct {
	PickupPoint   string `yaml:"pickup_point"`
	Domestic      string `yaml:"domestic"`
	International string `yaml:"international"`
}

// AddonCodes are the carrier's add-on service codes
type AddonCodes struct {
	PickupPoint       string `yaml:"pickup_point"`
	EmailNotification string `yaml:"email_notification"`
	SmsNotification   string `yaml:"sms_notification"`
}

// CarrierProfile is the service-code table and policy set of one carrier variant
type CarrierProfile struct {
	// CarrierName is the name of the carrier record in the inventory system
	CarrierName string `yaml:"carrier_name"`
	// Namespace is the data-document key the setup is written under and read from.
	// It is also the source of posted messages.
	Namespace string `yaml:"namespace"`
	// HomeCountry is the ISO country code domestic shipments are delivered in
	HomeCountry string `yaml:"home_country"`
	// Services are the base service codes
	Services ServiceCodes `yaml:"services"`
	// Addons are the add-on codes
	Addons AddonCodes `yaml:"addons"`
	// Notifications selects what triggers email/SMS add-ons
	Notifications NotificationPolicy `yaml:"notifications"`
	// CustomerNumber annotates the receiver with the shipment's customer number
	CustomerNumber bool `yaml:"customer_number"`
	// DefaultMedia is used when the setup has no media
	DefaultMedia string `yaml:"default_media"`
	// DefaultPrintType is used when the setup has no print type
	DefaultPrintType string `yaml:"default_print_type"`
}

// Validate checks the profile is complete enough to translate shipments
func (p *CarrierProfile) Validate() error {
	var missing []string
	if p.CarrierName == "" {
		missing = append(missing, "carrier_name")
	}
	if p.Namespace == "" {
		missing = append(missing, "namespace")
	}
	if p.HomeCountry == "" {
		missing = append(missing, "home_country")
	}
	if p.Services.PickupPoint == "" {
		missing = append(missing, "services.pickup_point")
	}
	if p.Services.Domestic == "" {
		missing = append(missing, "services.domestic")
	}
	if p.Services.International == "" {
		missing = append(missing, "services.international")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s: missing %s", ErrProfileInvalid, p.CarrierName, strings.Join(missing, ", "))
	}
	if !p.Notifications.IsValid() {
		return fmt.Errorf("%w: %s: unknown notification policy %q", ErrProfileInvalid, p.CarrierName, p.Notifications)
	}
	return nil
}

// PrintType returns the setup's print type, falling back to the profile default
func (p *CarrierProfile) PrintType(setup *CarrierSetup) string {
	if setup != nil && setup.PrintType != "" {
		return setup.PrintType
	}
	if p.DefaultPrintType != "" {
		return p.DefaultPrintType
	}
	return "pdf"
}

// Media returns the setup's label media, falling back to the profile default
func (p *CarrierProfile) Media(setup *CarrierSetup) string {
	if setup != nil && setup.Media != "" {
		return setup.Media
	}
	return p.DefaultMedia
}

// LabelExtension returns the file extension of labels rendered with printType
func LabelExtension(printType string) string {
	switch t := strings.ToLower(printType); t {
	case "", "pdf":
		return "pdf"
	case "zpl", "zpl2":
		return "zpl"
	default:
		return t
	}
}
