package paywallmain

import (
	"context"
	"time"

	log "github.com/golang/glog"
	"github.com/robfig/cron"

	ctime "github.com/joincivil/go-common/pkg/time"

	"github.com/sazalo101/paywall/pkg/model"
	"github.com/sazalo101/paywall/pkg/utils"
	"github.com/sazalo101/paywall/pkg/verifier"
)

const (
	checkRunSecs = 5
)

func checkCron(cr *cron.Cron) {
	entries := cr.Entries()
	for _, entry := range entries {
		log.Infof("Reconciler run times: prev: %v, next: %v\n", entry.Prev, entry.Next)
	}
}

// ReconcilerCronMain runs the pending-redemption reconciler on a cron schedule
func ReconcilerCronMain(config *utils.PaywallConfig, persisters *InitializedPersisters,
	paymentVerifier *verifier.PaymentVerifier) {
	cr := cron.New()
	err := cr.AddFunc(config.CronConfig, func() { runReconciler(config, persisters, paymentVerifier) })
	if err != nil {
		log.Errorf("Error starting: err: %v", err)
		return
	}
	cr.Start()

	// Blocks here while the cron process runs
	for range time.Tick(checkRunSecs * time.Second) {
		checkCron(cr)
	}
}

// runReconciler retries queued redemptions that failed on transient oracle
// outcomes. Re-invoking the verifier is safe: a retry either commits the one
// record or fails with a duplicate, never double-credits.
func runReconciler(config *utils.PaywallConfig, persisters *InitializedPersisters,
	paymentVerifier *verifier.PaymentVerifier) {
	pendings, err := persisters.Pending.PendingRedemptions(config.PendingSweepLimit)
	if err != nil {
		log.Errorf("Error retrieving pending redemptions: err: %v", err)
		return
	}

	for _, pending := range pendings {
		reconcileRedemption(config, persisters.Pending, paymentVerifier, pending)
	}

	if len(pendings) > 0 {
		log.Infof("Done reconciling %v pending redemptions", len(pendings))
	}
}

func reconcileRedemption(config *utils.PaywallConfig, pendingPersister model.PendingRedemptionPersister,
	paymentVerifier *verifier.PaymentVerifier, pending *model.PendingRedemption) {
	_, err := paymentVerifier.VerifyAndCommit(
		context.Background(),
		pending.ContentID(),
		pending.UserID(),
		pending.TxHash(),
	)

	switch {
	case err == nil || err == model.ErrDuplicateRedemption:
		// Committed now or previously, either way the queue entry is done
		log.Infof("Reconciled redemption for content %v queued at %v",
			pending.ContentID(), utils.SecsToTime(pending.CreatedDateTs()))
		deletePending(pendingPersister, pending)

	case model.IsErrTransient(err):
		attempts := pending.Attempts() + 1
		if attempts >= config.PendingMaxAttempts {
			log.Errorf("Giving up on redemption for content %v after %v attempts: err: %v",
				pending.ContentID(), attempts, err)
			deletePending(pendingPersister, pending)
			return
		}
		uerr := pendingPersister.UpdatePendingRedemptionAttempts(
			pending.PendingID(), attempts, ctime.CurrentEpochSecsInInt64())
		if uerr != nil {
			log.Errorf("Error updating pending redemption attempts: err: %v", uerr)
		}

	default:
		// Permanent failure, drop the queue entry
		log.Infof("Dropping redemption for content %v: err: %v", pending.ContentID(), err)
		deletePending(pendingPersister, pending)
	}
}

func deletePending(pendingPersister model.PendingRedemptionPersister, pending *model.PendingRedemption) {
	err := pendingPersister.DeletePendingRedemption(pending.PendingID())
	if err != nil {
		log.Errorf("Error deleting pending redemption %v: err: %v", pending.PendingID(), err)
	}
}
