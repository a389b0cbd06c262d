package data

import (
	"time"

	storm "github.com/asdine/storm/v3"
	log "github.com/sirupsen/logrus"

	"github.com/movedao/dao-node/pkg/errors"
	"github.com/movedao/dao-node/pkg/model"
)

// Store - persistence of the last-synced organization view, so short-lived
// callers can read without forcing a full resync
type Store interface {
	SaveOrganization(org model.Organization) error
	GetOrganization(id string) (model.Organization, error)
	ListOrganizations() ([]model.Organization, error)
}

type store struct {
	db *storm.DB
}

// DefaultStore returns a store backed by the shared database handle.
func DefaultStore() Store {
	return store{
		db: DB,
	}
}

func (s store) SaveOrganization(org model.Organization) error {
	return s.db.Save(&organizationDAO{
		ID:           org.ID,
		SyncedAt:     time.Now(),
		Organization: org,
	})
}

func (s store) GetOrganization(id string) (model.Organization, error) {
	dao := organizationDAO{}
	var err error
	if dbError := s.db.One("ID", id, &dao); dbError != nil {
		if dbError == storm.ErrNotFound {
			err = errors.ErrNotFound
		} else {
			log.Errorf("could not retrieve organization snapshot with id: %v due to error: %v", id, dbError)
			err = dbError
		}
	}

	return dao.Organization, err
}

func (s store) ListOrganizations() ([]model.Organization, error) {
	var daos []organizationDAO
	if err := s.db.AllByIndex("SyncedAt", &daos); err != nil {
		if err == storm.ErrNotFound {
			return nil, nil
		}
		log.Errorf("could not list organization snapshots due to error: %v", err)
		return nil, err
	}

	orgs := make([]model.Organization, 0, len(daos))
	for _, dao := range daos {
		orgs = append(orgs, dao.Organization)
	}
	return orgs, nil
}
