// Package helpers contains various common helper functions.
// Normally they are shared functions used by the cmds.
package helpers

import (
	"github.com/sazalo101/paywall/pkg/persistence"
	"github.com/sazalo101/paywall/pkg/utils"
)

// Persister is a helper function to return an interface{} that is an
// initialized persister type. The value implements all the model persister
// interfaces.
func Persister(config *utils.PaywallConfig) (interface{}, error) {
	if config.PersisterType == utils.PersisterTypePostgresql {
		return postgresPersister(config)
	}
	// Default to the NullPersister
	return &persistence.NullPersister{}, nil
}

func postgresPersister(config *utils.PaywallConfig) (*persistence.PostgresPersister, error) {
	persister, err := persistence.NewPostgresPersister(
		config.PersisterPostgresAddress,
		config.PersisterPostgresPort,
		config.PersisterPostgresUser,
		config.PersisterPostgresPw,
		config.PersisterPostgresDbname,
	)
	if err != nil {
		return nil, err
	}
	err = persister.CreateTables()
	if err != nil {
		return nil, err
	}
	err = persister.CreateIndices()
	if err != nil {
		return nil, err
	}
	return persister, nil
}
