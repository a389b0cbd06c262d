package data

import (
	"fmt"

	storm "github.com/asdine/storm/v3"
	log "github.com/sirupsen/logrus"
)

// DB global store variable
var DB *storm.DB

// Init - initialization of bolt db
func Init(path string) func() {
	var err error
	DB, err = storm.Open(path)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}

	log.Info("Database connected. Checking buckets...")
	if err = initBuckets(); err != nil {
		log.Fatal("buckets initialization failed due to error: ", err)
	}

	return func() {
		log.Info("Disconnecting database")
		if err := DB.Close(); err != nil {
			log.Fatal("closing db failed due to error: ", err)
		}
		log.Debug("Database disconnected")
	}
}

func initBuckets() error {
	if err := DB.Init(&organizationDAO{}); err != nil {
		return fmt.Errorf("could not create organization bucket: %v", err)
	}

	return nil
}
