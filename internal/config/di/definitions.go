package di

import (
	"context"
	"time"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/api"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/archive"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/bank"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/genesis"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/messenger"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry/memory"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/zilliqa"
	"github.com/patrickmn/go-cache"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

const (
	ConfigDef      = "config"
	CacheDef       = "cache"
	RuntimeDef     = "runtime"
	LedgerDef      = "bank.ledger"
	MemoryDef      = "registry.memory"
	ProviderDef    = "zilliqa.provider"
	SignerDef      = "zilliqa.signer"
	CollectionsDef = "registry"
	EventsDef      = "event.manager"
	ArchiveDef     = "archive"
	MessengerDef   = "messenger"
	MarketplaceDef = "marketplace"
	ServerDef      = "api.server"
)

var Definitions = []di.Def{
	{
		Name: ConfigDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return config.Get(), nil
		},
	},
	{
		Name: CacheDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return cache.New(5*time.Minute, 10*time.Minute), nil
		},
	},
	{
		Name: RuntimeDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return state.NewRuntime(nil), nil
		},
	},
	{
		Name: LedgerDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return bank.NewLedger(ctn.Get(RuntimeDef).(*state.Runtime).Journal()), nil
		},
	},
	{
		Name: MemoryDef,
		Build: func(ctn di.Container) (interface{}, error) {
			runtime := ctn.Get(RuntimeDef).(*state.Runtime)
			ledger := ctn.Get(LedgerDef).(*bank.Ledger)
			reg := memory.NewRegistry(runtime.Journal())

			path := ctn.Get(ConfigDef).(*config.Config).GenesisPath
			if path == "" {
				return reg, nil
			}
			g, err := genesis.Load(path)
			if err != nil {
				return nil, err
			}
			if err := g.Apply(context.Background(), runtime, ledger, reg); err != nil {
				return nil, err
			}

			return reg, nil
		},
	},
	{
		Name: ProviderDef,
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get(ConfigDef).(*config.Config).Zilliqa
			client, err := zilliqa.NewClient(cfg.Url, cfg.Timeout, cfg.Debug)
			if err != nil {
				return nil, err
			}
			return zilliqa.NewProvider(client), nil
		},
	},
	{
		Name: SignerDef,
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get(ConfigDef).(*config.Config).Zilliqa
			return zilliqa.NewSigner(zilliqa.SignerConfig{
				Url:        cfg.Url,
				PrivateKey: cfg.PrivateKey,
				ChainId:    cfg.ChainId,
				MsgVersion: cfg.MsgVersion,
				GasPrice:   cfg.GasPrice,
				GasLimit:   cfg.GasLimit,
			})
		},
	},
	{
		Name: CollectionsDef,
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get(ConfigDef).(*config.Config)
			if cfg.Registry == config.ZilliqaRegistry {
				return zilliqa.NewRegistry(
					ctn.Get(ProviderDef).(*zilliqa.Provider),
					ctn.Get(SignerDef).(zilliqa.Signer),
					ctn.Get(CacheDef).(*cache.Cache),
					cfg.Zilliqa.ConfirmAttempts,
					cfg.Zilliqa.ConfirmInterval,
				), nil
			}

			return ctn.Get(MemoryDef).(*memory.Registry).For(marketplaceAddress(ctn)), nil
		},
	},
	{
		Name: EventsDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return event.NewManager(), nil
		},
		Close: func(obj interface{}) error {
			obj.(*event.Manager).Close()
			return nil
		},
	},
	{
		Name: ArchiveDef,
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get(ConfigDef).(*config.Config).ElasticSearch
			a, err := archive.New(archive.Config{
				Hosts:            cfg.Hosts,
				Sniff:            cfg.Sniff,
				HealthCheck:      cfg.HealthCheck,
				Debug:            cfg.Debug,
				Username:         cfg.Username,
				Password:         cfg.Password,
				Index:            cfg.Index,
				BulkPersistCount: cfg.BulkPersistCount,
			})
			if err != nil {
				zap.L().With(zap.Error(err)).Error("Failed to start ES")
				return nil, err
			}
			return a, nil
		},
	},
	{
		Name: MessengerDef,
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get(ConfigDef).(*config.Config).Aws
			return messenger.NewMessenger(messenger.Config{
				AccessKey: cfg.AccessKey,
				SecretKey: cfg.SecretKey,
				Token:     cfg.Token,
				Region:    cfg.Region,
				QueueUrl:  cfg.QueueUrl,
			})
		},
	},
	{
		Name: MarketplaceDef,
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get(ConfigDef).(*config.Config)

			opts := []marketplace.Option{marketplace.WithDispatcher(ctn.Get(EventsDef).(*event.Manager))}
			if cfg.Marketplace.ReentrancyGuard {
				opts = append(opts, marketplace.WithReentrancyGuard())
			}

			return marketplace.New(
				marketplaceAddress(ctn),
				ctn.Get(RuntimeDef).(*state.Runtime),
				ctn.Get(CollectionsDef).(registry.Collections),
				ctn.Get(LedgerDef).(*bank.Ledger),
				opts...,
			), nil
		},
	},
	{
		Name: ServerDef,
		Build: func(ctn di.Container) (interface{}, error) {
			m := ctn.Get(MarketplaceDef).(*marketplace.Marketplace)

			var dev *api.Dev
			if ctn.Get(ConfigDef).(*config.Config).Registry == config.MemoryRegistry {
				dev = api.NewDev(
					ctn.Get(RuntimeDef).(*state.Runtime),
					ctn.Get(MemoryDef).(*memory.Registry),
					ctn.Get(LedgerDef).(*bank.Ledger),
					m.Address(),
				)
			}

			return api.NewServer(m, dev), nil
		},
	},
}

// marketplaceAddress is the signer's account on a live network, the configured address otherwise.
func marketplaceAddress(ctn di.Container) entity.Address {
	cfg := ctn.Get(ConfigDef).(*config.Config)
	if cfg.Registry == config.ZilliqaRegistry {
		return ctn.Get(SignerDef).(zilliqa.Signer).Address()
	}

	return entity.MustParseAddress(cfg.Marketplace.Address)
}
