package repositories

import (
	"fmt"
	"math/big"

	"github.com/dgraph-io/badger/v4"

	"noteboard/domain"
)

const (
	ownerKey = "board:owner"
	feeKey   = "board:fee"
)

// StateRepository persists the mutable board state (owner and fee) so a
// restarted daemon resumes where it left off. Notes live in NoteRepository.
type StateRepository struct {
	db *badger.DB
}

func NewStateRepository(db *badger.DB) StateRepository {
	return StateRepository{db: db}
}

// LoadState returns the persisted owner and fee. found is false when the
// board has never been initialized in this database.
func (r StateRepository) LoadState() (domain.Address, *big.Int, bool, error) {
	var ownerHex, feeDec string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ownerKey))
		if err != nil {
			return err
		}
		if err = item.Value(func(val []byte) error {
			ownerHex = string(val)
			return nil
		}); err != nil {
			return err
		}
		item, err = txn.Get([]byte(feeKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			feeDec = string(val)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.ZeroAddress, nil, false, nil
	}
	if err != nil {
		return domain.ZeroAddress, nil, false, err
	}

	owner, err := domain.ParseAddress(ownerHex)
	if err != nil {
		return domain.ZeroAddress, nil, false, err
	}
	fee, ok := new(big.Int).SetString(feeDec, 10)
	if !ok {
		return domain.ZeroAddress, nil, false, fmt.Errorf("corrupt fee value %q", feeDec)
	}
	return owner, fee, true, nil
}

func (r StateRepository) SaveOwner(owner domain.Address) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ownerKey), []byte(owner.String()))
	})
}

func (r StateRepository) SaveFee(fee *big.Int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(feeKey), []byte(fee.Text(10)))
	})
}
