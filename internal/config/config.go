package config

import (
	"strings"
	"time"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	MemoryRegistry  = "memory"
	ZilliqaRegistry = "zilliqa"
)

type Config struct {
	Env         string
	Debug       bool
	LogPath     string
	ApiPort     string
	Registry    string
	GenesisPath string

	Marketplace   MarketplaceConfig
	Zilliqa       ZilliqaConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
	Cli           CliConfig
}

type MarketplaceConfig struct {
	Address         string
	ReentrancyGuard bool
}

type ZilliqaConfig struct {
	Url             string
	Debug           bool
	Timeout         int
	ChainId         int
	MsgVersion      int
	PrivateKey      string
	GasPrice        string
	GasLimit        string
	ConfirmAttempts int
	ConfirmInterval time.Duration
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	Index            string
	BulkPersistCount int
}

type AwsConfig struct {
	AccessKey string
	SecretKey string
	Token     string
	Region    string
	QueueUrl  string
}

type CliConfig struct {
	ApiUrl string
}

var v = newViper()

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "")
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("REGISTRY", MemoryRegistry)
	v.SetDefault("GENESIS_PATH", "")
	v.SetDefault("MARKETPLACE_ADDRESS", "0x00000000000000000000000000000000006d6b74")
	v.SetDefault("MARKETPLACE_REENTRANCY_GUARD", false)
	v.SetDefault("ZILLIQA_URL", "https://dev-api.zilliqa.com")
	v.SetDefault("ZILLIQA_TIMEOUT", 30)
	v.SetDefault("ZILLIQA_DEBUG", false)
	v.SetDefault("ZILLIQA_CHAIN_ID", 333)
	v.SetDefault("ZILLIQA_MSG_VERSION", 1)
	v.SetDefault("ZILLIQA_GAS_PRICE", "2000000000")
	v.SetDefault("ZILLIQA_GAS_LIMIT", "10000")
	v.SetDefault("ZILLIQA_CONFIRM_ATTEMPTS", 30)
	v.SetDefault("ZILLIQA_CONFIRM_INTERVAL", "2s")
	v.SetDefault("ELASTIC_SEARCH_HOSTS", "")
	v.SetDefault("ELASTIC_SEARCH_SNIFF", true)
	v.SetDefault("ELASTIC_SEARCH_HEALTH_CHECK", true)
	v.SetDefault("ELASTIC_SEARCH_DEBUG", false)
	v.SetDefault("ELASTIC_SEARCH_INDEX", "marketplace.events")
	v.SetDefault("ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("CLI_API_URL", "http://localhost:8080")

	return v
}

// Init loads .env into the environment and installs the logger. A missing .env is not
// an error, the environment alone can configure the daemon.
func Init() {
	if err := godotenv.Load(".env"); err != nil {
		zap.L().With(zap.Error(err)).Debug("Config: No .env file loaded")
	}

	initLogger()
}

func initLogger() {
	log.NewLogger(Get().LogPath, Get().Debug)
}

func Get() *Config {
	return &Config{
		Env:         v.GetString("ENV"),
		Debug:       v.GetBool("DEBUG"),
		LogPath:     v.GetString("LOG_PATH"),
		ApiPort:     v.GetString("API_PORT"),
		Registry:    strings.ToLower(v.GetString("REGISTRY")),
		GenesisPath: v.GetString("GENESIS_PATH"),
		Marketplace: MarketplaceConfig{
			Address:         v.GetString("MARKETPLACE_ADDRESS"),
			ReentrancyGuard: v.GetBool("MARKETPLACE_REENTRANCY_GUARD"),
		},
		Zilliqa: ZilliqaConfig{
			Url:             v.GetString("ZILLIQA_URL"),
			Timeout:         v.GetInt("ZILLIQA_TIMEOUT"),
			Debug:           v.GetBool("ZILLIQA_DEBUG"),
			ChainId:         v.GetInt("ZILLIQA_CHAIN_ID"),
			MsgVersion:      v.GetInt("ZILLIQA_MSG_VERSION"),
			PrivateKey:      v.GetString("ZILLIQA_PRIVATE_KEY"),
			GasPrice:        v.GetString("ZILLIQA_GAS_PRICE"),
			GasLimit:        v.GetString("ZILLIQA_GAS_LIMIT"),
			ConfirmAttempts: v.GetInt("ZILLIQA_CONFIRM_ATTEMPTS"),
			ConfirmInterval: v.GetDuration("ZILLIQA_CONFIRM_INTERVAL"),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice("ELASTIC_SEARCH_HOSTS", ","),
			Sniff:            v.GetBool("ELASTIC_SEARCH_SNIFF"),
			HealthCheck:      v.GetBool("ELASTIC_SEARCH_HEALTH_CHECK"),
			Debug:            v.GetBool("ELASTIC_SEARCH_DEBUG"),
			Username:         v.GetString("ELASTIC_SEARCH_USERNAME"),
			Password:         v.GetString("ELASTIC_SEARCH_PASSWORD"),
			Index:            v.GetString("ELASTIC_SEARCH_INDEX"),
			BulkPersistCount: v.GetInt("ELASTIC_SEARCH_BULK_PERSIST_COUNT"),
		},
		Aws: AwsConfig{
			AccessKey: v.GetString("AWS_ACCESS_KEY_ID"),
			SecretKey: v.GetString("AWS_SECRET_KEY_ID"),
			Token:     v.GetString("AWS_SESSION_TOKEN"),
			Region:    v.GetString("AWS_REGION"),
			QueueUrl:  v.GetString("SQS_QUEUE_URL"),
		},
		Cli: CliConfig{
			ApiUrl: v.GetString("CLI_API_URL"),
		},
	}
}

func getSlice(key string, sep string) []string {
	valStr := v.GetString(key)
	if valStr == "" {
		return make([]string, 0)
	}

	return strings.Split(valStr, sep)
}
