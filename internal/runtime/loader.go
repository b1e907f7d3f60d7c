package runtime

import (
	"context"
	"fmt"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// schedule starts a background fetch for every pending address that is not
// already loading or marked failed. Failed fetches are never rescheduled
// here; only Retry clears the failure.
func (c *Controller) schedule(sess *Session, pending []domain.Address) {
	if len(pending) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	for _, addr := range pending {
		key := addr.Key()
		if sess.loading[key] {
			continue
		}
		if _, failed := sess.failures[key]; failed {
			continue
		}
		sess.loading[key] = true
		c.wg.Add(1)
		go c.loadChildren(sess, addr)
	}
}

// loadChildren fetches the node at addr so its children become known.
// Concurrent loads of the same address share one request.
func (c *Controller) loadChildren(sess *Session, addr domain.Address) {
	defer c.wg.Done()

	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	v, err, _ := c.loads.Do(sess.ID+"\x00"+addr.Key(), func() (any, error) {
		node, _, err := c.resolve(ctx, sess, addr)
		return node, err
	})

	c.mu.Lock()
	delete(sess.loading, addr.Key())
	if c.sess != sess {
		c.mu.Unlock()
		return
	}
	if err != nil {
		if c.ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		err = fmt.Errorf("%w: %s: %w", domain.ErrRecoveryFailed, addr.Display(), err)
		sess.failures[addr.Key()] = failure{err: err}
		c.mu.Unlock()

		c.logger.Warn("children could not be loaded", "session_id", sess.ID, "path", addr.Display(), "err", err)
		c.emit(c.hooks.OnFailure, sess.ID, domain.EventFailure, addr, false, err)
		c.notify()
		return
	}

	c.commit(sess, v.(domain.TreeNode))
	tree := c.renderLocked(sess)
	c.mu.Unlock()

	c.emit(c.hooks.OnLoad, sess.ID, domain.EventLoad, addr, false, nil)
	c.notify()
	c.schedule(sess, tree.Pending)
}
