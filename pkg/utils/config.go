// Package utils contains various common utils separate by utility types
package utils

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron"
)

// PersisterType is the type of persister to use.
type PersisterType int

const (
	// PersisterTypeInvalid is an invalid persister value
	PersisterTypeInvalid PersisterType = iota

	// PersisterTypeNone is a persister that does nothing but return default values
	PersisterTypeNone

	// PersisterTypePostgresql is a persister that uses PostgreSQL as the backend
	PersisterTypePostgresql
)

var (
	// PersisterNameToType maps valid persister names to the types above
	PersisterNameToType = map[string]PersisterType{
		"none":       PersisterTypeNone,
		"postgresql": PersisterTypePostgresql,
	}
)

const (
	envVarPrefix = "paywall"

	usageListFormat = `The paywall is configured via environment vars only. The following environment variables can be used:
{{range .}}
{{usage_key .}}
  description: {{usage_description .}}
  type:        {{usage_type .}}
  default:     {{usage_default .}}
  required:    {{usage_required .}}
{{end}}
`
)

// NOTE: After envconfig populates PaywallConfig with the environment vars,
// there is nothing preventing the PaywallConfig fields from being mutated.

// PaywallConfig is the master config for the paywall service derived from
// environment variables.
type PaywallConfig struct {
	EthAPIURL         string `envconfig:"eth_api_url" required:"true" desc:"Ethereum API address"`
	OracleTimeoutSecs int    `split_words:"true" default:"5" desc:"Per-lookup oracle timeout in seconds"`

	CronConfig         string `envconfig:"cron_config" desc:"Cron config string * * * * * for pending redemption retries"`
	PendingMaxAttempts int    `split_words:"true" default:"5" desc:"Max retries for a pending redemption"`
	PendingSweepLimit  int    `split_words:"true" default:"100" desc:"Max pending redemptions retried per sweep"`

	ServiceFee float64 `split_words:"true" desc:"Per-payment service fee in currency units, 0 uses the default"`
	ListingFee float64 `split_words:"true" desc:"Flat content creation fee in currency units, 0 uses the default"`

	ListingFeeRequired   bool `split_words:"true" desc:"Requires proof of the flat listing fee to create content"`
	RequireCreatorPayout bool `split_words:"true" desc:"Requires a creator payout record to verify payments"`
	EnablePublicListing  bool `split_words:"true" desc:"Serves ungated group listings. Bypasses the paywall; opt-in only"`

	PubSubProjectID        string `split_words:"true" desc:"Sets the Google Cloud project ID for payment events"`
	PubSubPaymentTopicName string `split_words:"true" desc:"Sets the pubsub topic for payment events"`

	PersisterType            PersisterType `ignored:"true"`
	PersisterTypeName        string        `split_words:"true" required:"true" desc:"Sets the persister type to use"`
	PersisterPostgresAddress string        `split_words:"true" desc:"If persister type is Postgresql, sets the address"`
	PersisterPostgresPort    int           `split_words:"true" desc:"If persister type is Postgresql, sets the port"`
	PersisterPostgresDbname  string        `split_words:"true" desc:"If persister type is Postgresql, sets the database name"`
	PersisterPostgresUser    string        `split_words:"true" desc:"If persister type is Postgresql, sets the database user"`
	PersisterPostgresPw      string        `split_words:"true" desc:"If persister type is Postgresql, sets the database password"`
}

// OutputUsage prints the usage string to os.Stdout
func (c *PaywallConfig) OutputUsage() {
	tabs := tabwriter.NewWriter(os.Stdout, 1, 0, 4, ' ', 0)
	_ = envconfig.Usagef(envVarPrefix, c, tabs, usageListFormat) // nolint: gosec
	_ = tabs.Flush()                                             // nolint: gosec
}

// PopulateFromEnv processes the environment vars, populates PaywallConfig
// with the respective values, and validates the values.
func (c *PaywallConfig) PopulateFromEnv() error {
	err := envconfig.Process(envVarPrefix, c)
	if err != nil {
		return err
	}

	err = c.validateCronConfig()
	if err != nil {
		return err
	}

	err = c.validateAPIURL()
	if err != nil {
		return err
	}

	err = c.validateFees()
	if err != nil {
		return err
	}

	err = c.populatePersisterType()
	if err != nil {
		return err
	}

	return c.validatePersister()
}

func (c *PaywallConfig) validateCronConfig() error {
	if c.CronConfig == "" {
		return nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(c.CronConfig)
	if err != nil {
		return fmt.Errorf("Invalid cron config: '%v'", c.CronConfig)
	}
	return nil
}

func (c *PaywallConfig) validateAPIURL() error {
	if c.EthAPIURL == "" || !isValidEthAPIURL(c.EthAPIURL) {
		return fmt.Errorf("Invalid eth API URL: '%v'", c.EthAPIURL)
	}
	return nil
}

func (c *PaywallConfig) validateFees() error {
	if c.ServiceFee < 0 || c.ListingFee < 0 {
		return errors.New("Fees must not be negative")
	}
	return nil
}

func (c *PaywallConfig) validatePersister() error {
	var err error
	if c.PersisterType == PersisterTypePostgresql {
		err = validatePostgresqlPersisterParams(
			c.PersisterPostgresAddress,
			c.PersisterPostgresPort,
			c.PersisterPostgresDbname,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *PaywallConfig) populatePersisterType() error {
	var err error
	c.PersisterType, err = persisterTypeFromName(c.PersisterTypeName)
	return err
}

func validatePostgresqlPersisterParams(address string, port int, dbname string) error {
	if address == "" {
		return errors.New("Postgresql address required")
	}
	if port == 0 {
		return errors.New("Postgresql port required")
	}
	if dbname == "" {
		return errors.New("Postgresql db name required")
	}
	return nil
}

func persisterTypeFromName(typeStr string) (PersisterType, error) {
	pType, ok := PersisterNameToType[typeStr]
	if !ok {
		validNames := make([]string, len(PersisterNameToType))
		index := 0
		for name := range PersisterNameToType {
			validNames[index] = name
			index++
		}
		return PersisterTypeInvalid,
			fmt.Errorf("Invalid persister value: %v; valid values are %v", typeStr, validNames)
	}
	return pType, nil
}

func isValidEthAPIURL(rawurl string) bool {
	parsed, err := url.Parse(rawurl)
	if err != nil {
		return false
	}
	switch parsed.Scheme {
	case "http", "https", "ws", "wss":
		return parsed.Host != ""
	}
	return false
}
