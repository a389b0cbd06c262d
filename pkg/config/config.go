package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
	yaml "gopkg.in/yaml.v2"

	"github.com/movedao/dao-node/pkg/model"
)

// Config - node's configuration model
type Config struct {
	NodeURL             string
	SignerURL           string
	RegistryID          string
	PackageID           string
	AdminCapType        string
	OrgCapType          string
	ClockID             string
	ClockInitialVersion uint64
	CallerAddress       string
	LowercaseAddresses  bool
	DatabasePath        string
	APIHost             string
	APIPort             uint16
}

// Canon returns the address normalization configured for this session.
func (c Config) Canon() model.AddressCanon {
	return model.AddressCanon{Lowercase: c.LowercaseAddresses}
}

const (
	appRootFolderName = ".dao-node"
	configFileName    = "dao-node-config.yml"
	databaseFileName  = "dao-node.db"

	defaultNodeURL = "https://fullnode.testnet.sui.io:443"
	// well-known system clock object, fixed by the ledger
	defaultClockID      = "0x6"
	defaultClockVersion = uint64(1)

	apiHost = "127.0.0.1"
	apiPort = uint16(6430)
)

// LoadConfig - load node's configuration from the config file and environment
func LoadConfig(local *bool) Config {
	var appRootFolderPath = ""
	if *local {
		dir, err := os.Getwd()
		if err != nil {
			processError("unable to retrieve working directory from which node is running", err)
		}
		appRootFolderPath = filepath.Join(dir, appRootFolderName)
	} else {
		homeDir, err := homedir.Dir()
		if err != nil {
			processError("unable to find home directory", err)
		}
		appRootFolderPath = filepath.Join(homeDir, appRootFolderName)
	}

	if _, err := os.Stat(appRootFolderPath); os.IsNotExist(err) {
		if errDir := os.Mkdir(appRootFolderPath, os.ModePerm); errDir != nil {
			processError("error creating dao-node root directory.", errDir)
		}
	}

	configFilePath := filepath.Join(appRootFolderPath, configFileName)
	confFile := configFile{
		NodeURL:            defaultNodeURL,
		LowercaseAddresses: true,
	}
	readConfigFile(configFilePath, &confFile)
	readEnv(&confFile)

	if confFile.RegistryID == "" || confFile.PackageID == "" {
		processError("incomplete configuration", fmt.Errorf("registry object id and package id must be set"))
	}

	return Config{
		NodeURL:             confFile.NodeURL,
		SignerURL:           confFile.SignerURL,
		RegistryID:          confFile.RegistryID,
		PackageID:           confFile.PackageID,
		AdminCapType:        confFile.AdminCapType,
		OrgCapType:          confFile.OrgCapType,
		ClockID:             defaultClockID,
		ClockInitialVersion: defaultClockVersion,
		CallerAddress:       confFile.CallerAddress,
		LowercaseAddresses:  confFile.LowercaseAddresses,
		DatabasePath:        filepath.Join(appRootFolderPath, databaseFileName),
		APIHost:             apiHost,
		APIPort:             apiPort,
	}
}

func readConfigFile(path string, conf *configFile) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("File containing config doesn't exist. Reading config from env variables...")
			return
		}
		processError("unable to open config file", err)
	}

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&conf)
	if err != nil {
		processError("unable to parse config file", err)
	}
}

func readEnv(cfg *configFile) {
	err := envconfig.Process("dao_node", cfg)
	if err != nil {
		processError("unable to read environment variables", err)
	}
}

func processError(message string, err error) {
	fmt.Println(message)
	fmt.Println(err)
	os.Exit(2)
}

type configFile struct {
	NodeURL            string `envconfig:"NODE_URL" yaml:"nodeUrl"`
	SignerURL          string `envconfig:"SIGNER_URL" yaml:"signerUrl"`
	RegistryID         string `envconfig:"REGISTRY_ID" yaml:"registryId"`
	PackageID          string `envconfig:"PACKAGE_ID" yaml:"packageId"`
	AdminCapType       string `envconfig:"ADMIN_CAP_TYPE" yaml:"adminCapType"`
	OrgCapType         string `envconfig:"ORG_CAP_TYPE" yaml:"orgCapType"`
	CallerAddress      string `envconfig:"CALLER_ADDRESS" yaml:"callerAddress"`
	LowercaseAddresses bool   `envconfig:"LOWERCASE_ADDRESSES" yaml:"lowercaseAddresses"`
}
