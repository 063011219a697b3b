package collection

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/kbstack/internal/platform/aoss"
	"github.com/imamik/kbstack/internal/platform/awserr"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/util/poll"
)

// AwaitActive polls the collection until it is ACTIVE. FAILED is fatal.
func (p *Provisioner) AwaitActive(ctx *provisioning.Context) error {
	name := ctx.State.Names.Collection()
	var active *aoss.Collection

	check := func(c context.Context) (poll.Status, error) {
		col, err := ctx.Clients.Collections.GetCollection(c, name)
		if awserr.IsNotFound(err) {
			// Listing lags creation for a few seconds.
			return poll.Status{State: poll.Pending, Raw: "NOT_FOUND"}, nil
		}
		if err != nil {
			return poll.Status{}, err
		}
		return collectionStatus(col, &active), nil
	}

	ctx.Observer.Printf("[Collection] Waiting for %s to become ACTIVE...", name)
	if _, err := ctx.Wait(phase, name, ctx.Timeouts.CollectionPoll, ctx.Timeouts.Collection, check); err != nil {
		return fmt.Errorf("collection %s: %w", name, err)
	}

	if active.Endpoint == "" {
		return fmt.Errorf("collection %s is ACTIVE but has no endpoint", name)
	}
	ctx.State.Set(provisioning.KeyCollectionID, active.ID)
	ctx.State.Set(provisioning.KeyCollectionARN, active.ARN)
	ctx.State.Set(provisioning.KeyCollectionEndpoint, active.Endpoint)
	ctx.Observer.Printf("[Collection] %s is ACTIVE at %s", name, active.Endpoint)
	return nil
}

func collectionStatus(col *aoss.Collection, active **aoss.Collection) poll.Status {
	switch col.Status {
	case aoss.StatusActive:
		*active = col
		return poll.Status{State: poll.Ready, Raw: col.Status}
	case aoss.StatusFailed:
		var detail []string
		for _, s := range []string{col.FailureCode, col.FailureMessage} {
			if s != "" {
				detail = append(detail, s)
			}
		}
		return poll.Status{State: poll.Failed, Raw: col.Status, Detail: strings.Join(detail, ": ")}
	default:
		return poll.Status{State: poll.Pending, Raw: col.Status}
	}
}
