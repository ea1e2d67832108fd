package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pytch/internal/actor"
	"github.com/roach88/pytch/internal/hooks"
	"github.com/roach88/pytch/internal/microbit"
)

func hooksWithOne(t *testing.T) *hooks.Registry {
	t.Helper()
	r := hooks.NewRegistry()
	tr, err := microbit.WhenButtonPressed("a")
	require.NoError(t, err)
	tr.Attach(r, func(ctx context.Context, self actor.Actor) error { return nil })
	return r
}
