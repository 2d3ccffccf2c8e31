package userrepo_test

import (
	"testing"

	"github.com/sharetrip-app/sharetrip-api/internal/adapters/contracttest"
	"github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/userrepo"
	userrepoport "github.com/sharetrip-app/sharetrip-api/internal/ports/out/userrepo"
)

func TestUserRepoContract(t *testing.T) {
	t.Parallel()
	contracttest.RunUserRepo(t, func(t *testing.T) (userrepoport.Repository, contracttest.CleanupFunc) {
		return userrepo.NewRepo(), nil
	})
}
