package holds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The sweeper must never reclaim units a settled purchase already paid for,
// even when the hold's expiry has passed. That exclusion is part of the
// candidate query itself, not a post-filter, so pin the clause here.
func TestSweepCandidateFilter_ExcludesPaidOrders(t *testing.T) {
	assert.Contains(t, sweepCandidateFilter,
		"order_id NOT IN (SELECT id FROM orders WHERE status = 'paid')")
	assert.Contains(t, sweepCandidateFilter, "order_id IS NULL OR",
		"holds that never reached checkout stay sweepable")
}

func TestSweepCandidateFilter_OnlyUnreleasedExpiredHolds(t *testing.T) {
	assert.Contains(t, sweepCandidateFilter, "released = false")
	assert.Contains(t, sweepCandidateFilter, "expires_at <= ?")
}
