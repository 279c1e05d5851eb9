package repositories

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"noteboard/domain"
)

func Test_LoadState_Before_First_Save(t *testing.T) {
	req := require.New(t)
	repository := NewStateRepository(openTestDB(t))

	_, _, found, err := repository.LoadState()
	req.NoError(err)
	req.False(found)
}

func Test_State_Roundtrip(t *testing.T) {
	req := require.New(t)
	repository := NewStateRepository(openTestDB(t))

	owner := domain.Address{0x01}
	fee := new(big.Int).Mul(big.NewInt(25), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	req.NoError(repository.SaveOwner(owner))
	req.NoError(repository.SaveFee(fee))

	loadedOwner, loadedFee, found, err := repository.LoadState()
	req.NoError(err)
	req.True(found)
	req.Equal(owner, loadedOwner)
	req.Zero(loadedFee.Cmp(fee))
}
