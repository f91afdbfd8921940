package memory_test

import (
	"testing"

	"github.com/aretw0/swiftnote/internal/repotest"
	"github.com/aretw0/swiftnote/pkg/adapters/memory"
	"github.com/aretw0/swiftnote/pkg/core"
)

func TestRepositoryContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) core.Repository {
		return memory.NewRepository()
	})
}
