package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"noteboard/errors"
)

func TestEntryGuard_RejectsNestedEntry(t *testing.T) {
	req := require.New(t)
	var g entryGuard

	req.NoError(g.enter())
	req.ErrorIs(g.enter(), errors.ErrReentrant)

	// The rejected entry must not have touched the lock: the in-flight
	// operation still exits normally and the guard is reusable.
	g.exit()
	req.NoError(g.enter())
	g.exit()
}
