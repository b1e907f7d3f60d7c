package runtime

import (
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// expandVisible expands every visible collapsed node whose children are
// loaded. It runs once per session, in chunks of Policy.ChunkSize, releasing
// the session lock and yielding between chunks so commands issued meanwhile
// wait for at most one chunk.
func (c *Controller) expandVisible(sess *Session) {
	c.mu.Lock()
	if c.sess != sess {
		c.mu.Unlock()
		return
	}
	targets := collapsedVisible(c.renderLocked(sess), sess.Registry)
	c.mu.Unlock()

	if c.policy.CollapseCards {
		kept := targets[:0]
		for _, a := range targets {
			if _, gate := domain.KindOf(a).(domain.DealGateKind); !gate {
				kept = append(kept, a)
			}
		}
		targets = kept
	}
	if len(targets) == 0 {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for start := 0; start < len(targets); start += c.policy.ChunkSize {
			if c.ctx.Err() != nil {
				return
			}
			end := min(start+c.policy.ChunkSize, len(targets))

			c.mu.Lock()
			if c.sess != sess {
				c.mu.Unlock()
				return
			}
			for _, addr := range targets[start:end] {
				sess.Expansion.SetExpanded(addr, true, false)
			}
			tree := c.renderLocked(sess)
			c.mu.Unlock()

			c.notify()
			c.schedule(sess, tree.Pending)
			c.policy.Yield()
		}
		c.logger.Debug("visible tree expanded", "session_id", sess.ID, "nodes", len(targets))
	}()
}
