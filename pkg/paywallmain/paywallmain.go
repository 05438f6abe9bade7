// Package paywallmain contains the shared logic to wire up and run the
// paywall service.
package paywallmain

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/golang/glog"

	cpubsub "github.com/joincivil/go-common/pkg/pubsub"

	"github.com/sazalo101/paywall/pkg/gate"
	"github.com/sazalo101/paywall/pkg/helpers"
	"github.com/sazalo101/paywall/pkg/model"
	"github.com/sazalo101/paywall/pkg/oracle"
	"github.com/sazalo101/paywall/pkg/pricing"
	"github.com/sazalo101/paywall/pkg/registry"
	"github.com/sazalo101/paywall/pkg/service"
	"github.com/sazalo101/paywall/pkg/utils"
	"github.com/sazalo101/paywall/pkg/verifier"
)

// InitializedPersisters contains initialized persisters needed to run the paywall
type InitializedPersisters struct {
	Content model.ContentPersister
	Creator model.CreatorPersister
	Payment model.PaymentPersister
	Pending model.PendingRedemptionPersister

	// Closer releases the underlying store connection, when there is one
	Closer io.Closer
}

// InitPersisters inits the persisters from the config
func InitPersisters(config *utils.PaywallConfig) (*InitializedPersisters, error) {
	p, err := helpers.Persister(config)
	if err != nil {
		log.Errorf("Error getting the persister: err: %v", err)
		return nil, err
	}
	persisters := &InitializedPersisters{
		Content: p.(model.ContentPersister),
		Creator: p.(model.CreatorPersister),
		Payment: p.(model.PaymentPersister),
		Pending: p.(model.PendingRedemptionPersister),
	}
	if closer, ok := p.(io.Closer); ok {
		persisters.Closer = closer
	}
	return persisters, nil
}

// SetupKillNotify closes the store connection when the process is killed
func SetupKillNotify(persisters *InitializedPersisters) {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigchan
		if persisters.Closer != nil {
			err := persisters.Closer.Close()
			if err != nil {
				log.Errorf("Error closing persister: err: %v", err)
			}
		}
		os.Exit(1)
	}()
}

// NewPaywallComponents builds the verifier, gate, registry and service from
// the config and persisters
func NewPaywallComponents(config *utils.PaywallConfig,
	persisters *InitializedPersisters) (*PaywallComponents, error) {
	client, err := ethclient.Dial(config.EthAPIURL)
	if err != nil {
		log.Errorf("Error connecting to eth API: err: %v", err)
		return nil, err
	}

	ethOracle := oracle.NewEthOracle(&oracle.NewEthOracleParams{
		Client:  client,
		Timeout: time.Duration(config.OracleTimeoutSecs) * time.Second,
	})
	policy := pricing.NewPolicy(config.ServiceFee, config.ListingFee)

	paymentVerifier := verifier.NewPaymentVerifier(&verifier.NewPaymentVerifierParams{
		Oracle:               ethOracle,
		ContentPersister:     persisters.Content,
		CreatorPersister:     persisters.Creator,
		PaymentPersister:     persisters.Payment,
		Pricing:              policy,
		RequireCreatorPayout: config.RequireCreatorPayout,
	})
	accessGate := gate.NewAccessGate(persisters.Content, persisters.Payment)
	contentRegistry := registry.NewContentRegistry(&registry.NewContentRegistryParams{
		ContentPersister:   persisters.Content,
		CreatorPersister:   persisters.Creator,
		Verifier:           paymentVerifier,
		Pricing:            policy,
		ListingFeeRequired: config.ListingFeeRequired,
	})

	ps, err := initPubSub(config)
	if err != nil {
		return nil, err
	}

	svc := service.NewService(&service.NewServiceParams{
		Registry:              contentRegistry,
		Verifier:              paymentVerifier,
		Gate:                  accessGate,
		ContentPersister:      persisters.Content,
		CreatorPersister:      persisters.Creator,
		PendingPersister:      persisters.Pending,
		GooglePubSub:          ps,
		GooglePubSubTopicName: config.PubSubPaymentTopicName,
		EnablePublicListing:   config.EnablePublicListing,
	})

	return &PaywallComponents{
		Verifier: paymentVerifier,
		Gate:     accessGate,
		Registry: contentRegistry,
		Service:  svc,
	}, nil
}

// PaywallComponents are the initialized core components of the paywall
type PaywallComponents struct {
	Verifier *verifier.PaymentVerifier
	Gate     *gate.AccessGate
	Registry *registry.ContentRegistry
	Service  *service.Service
}

// PaywallMain runs the paywall until killed. The transport layer serves the
// service from another process or an embedding binary; this process owns the
// pending-redemption reconciliation.
func PaywallMain(config *utils.PaywallConfig, persisters *InitializedPersisters) error {
	components, err := NewPaywallComponents(config, persisters)
	if err != nil {
		return err
	}

	if config.CronConfig != "" {
		ReconcilerCronMain(config, persisters, components.Verifier)
		return nil
	}

	log.Info("Pending redemption reconciliation disabled, no cron config")
	select {}
}

func initPubSub(config *utils.PaywallConfig) (*cpubsub.GooglePubSub, error) {
	// If no project ID, disable
	if config.PubSubProjectID == "" {
		return nil, nil
	}
	ps, err := cpubsub.NewGooglePubSub(config.PubSubProjectID)
	if err != nil {
		return nil, err
	}
	err = ps.StartPublishers()
	if err != nil {
		return nil, err
	}
	return ps, nil
}
