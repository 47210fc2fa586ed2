package journal

import (
	"boscoin.io/ballot/lib/ballot"
	"boscoin.io/ballot/lib/common"
	"boscoin.io/ballot/lib/common/keypair"
	"boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/storage"
)

const GenesisKey string = "genesis"

// Genesis is the bootstrap record of a ballot. It is written once and
// every journal replay starts from it.
type Genesis struct {
	Chairperson string   `json:"chairperson"`
	Proposals   []string `json:"proposals"`
	NetworkID   string   `json:"network_id"`
	Created     string   `json:"created"`
}

func NewGenesis(chairperson string, proposals []string, networkID []byte) Genesis {
	return Genesis{
		Chairperson: chairperson,
		Proposals:   proposals,
		NetworkID:   string(networkID),
		Created:     common.NowISO8601(),
	}
}

// NewState creates new empty ballot from genesis.
func (g Genesis) NewState() (*ballot.BallotState, error) {
	return ballot.New(g.Chairperson, g.Proposals)
}

func (g Genesis) IsWellFormed() error {
	if !keypair.IsValidAddress(g.Chairperson) {
		return errors.InvalidChairperson.Clone().SetData("chairperson", g.Chairperson)
	}
	if len(g.NetworkID) < 1 {
		return errors.BadRequestParameter.Clone().SetData("network_id", "empty")
	}

	_, err := g.NewState()
	return err
}

func SaveGenesis(st *storage.LevelDBBackend, g Genesis) error {
	if err := g.IsWellFormed(); err != nil {
		return err
	}

	if exists, err := st.Has(GenesisKey); err != nil {
		return err
	} else if exists {
		return errors.GenesisAlreadyExists
	}

	if err := st.New(GenesisKey, g); err != nil {
		return err
	}

	log.Debug("genesis saved", "chairperson", g.Chairperson, "proposals", len(g.Proposals))

	return nil
}

func GetGenesis(st *storage.LevelDBBackend) (g Genesis, err error) {
	if err = st.Get(GenesisKey, &g); err != nil {
		if errors.Is(err, errors.StorageRecordDoesNotExist) {
			err = errors.GenesisDoesNotExist
		}
		return
	}

	return
}
