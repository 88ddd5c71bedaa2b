package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultGap(t *testing.T) {
	assert.InDelta(t, 10.0, Result{Makespan: 44, LowerBound: 40}.Gap(), 1e-9)
	assert.Zero(t, Result{Makespan: 40, LowerBound: 40}.Gap())
	assert.Zero(t, Result{Makespan: 7}.Gap())
}
