package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	errx "github.com/smart-album/server/internal/core/error"
)

func TestNext_PlanningEarnsOneFallback(t *testing.T) {
	assert.Equal(t, StateFallback, Next(StatePlanning, errx.KindProvider))
	assert.Equal(t, StateFallback, Next(StatePlanning, errx.KindToolContract))
	// An error nobody classified is still a planning failure worth retrying
	// on the degraded path.
	assert.Equal(t, StateFallback, Next(StatePlanning, errx.KindUnknown))
}

func TestNext_StoreFailureIsTerminal(t *testing.T) {
	assert.Equal(t, StateDone, Next(StatePlanning, errx.KindStore))
}

func TestNext_InfrastructureFailuresAreTerminal(t *testing.T) {
	assert.Equal(t, StateDone, Next(StatePlanning, errx.KindRepo))
	assert.Equal(t, StateDone, Next(StatePlanning, errx.KindConfig))
}

func TestNext_NoWayBackFromFallback(t *testing.T) {
	kinds := []errx.Kind{
		errx.KindUnknown,
		errx.KindProvider,
		errx.KindStore,
		errx.KindToolContract,
		errx.KindConfig,
		errx.KindRepo,
	}
	for _, k := range kinds {
		assert.Equal(t, StateDone, Next(StateFallback, k))
		assert.Equal(t, StateDone, Next(StateDone, k))
	}
}
