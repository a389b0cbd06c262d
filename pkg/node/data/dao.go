package data

import (
	"time"

	"github.com/movedao/dao-node/pkg/model"
)

type organizationDAO struct {
	ID           string
	SyncedAt     time.Time `storm:"index"`
	Organization model.Organization
}
