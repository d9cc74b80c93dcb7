package di

import (
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/api"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/archive"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/bank"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/messenger"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
	"github.com/sarulabs/di/v2"
)

// Container exposes typed getters over the definitions. Getters panic when a
// definition fails to build, as the daemon cannot run without it.
type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}
	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return &Container{ctn: builder.Build()}, nil
}

func (c *Container) GetConfig() *config.Config {
	return c.ctn.Get(ConfigDef).(*config.Config)
}

func (c *Container) GetRuntime() *state.Runtime {
	return c.ctn.Get(RuntimeDef).(*state.Runtime)
}

func (c *Container) GetLedger() *bank.Ledger {
	return c.ctn.Get(LedgerDef).(*bank.Ledger)
}

func (c *Container) GetEventManager() *event.Manager {
	return c.ctn.Get(EventsDef).(*event.Manager)
}

func (c *Container) GetMarketplace() *marketplace.Marketplace {
	return c.ctn.Get(MarketplaceDef).(*marketplace.Marketplace)
}

func (c *Container) GetServer() api.Server {
	return c.ctn.Get(ServerDef).(api.Server)
}

func (c *Container) GetArchive() (archive.Archive, error) {
	a, err := c.ctn.SafeGet(ArchiveDef)
	if err != nil {
		return nil, err
	}
	return a.(archive.Archive), nil
}

func (c *Container) GetMessenger() (messenger.MessageService, error) {
	m, err := c.ctn.SafeGet(MessengerDef)
	if err != nil {
		return nil, err
	}
	return m.(messenger.MessageService), nil
}

// Delete closes every built definition.
func (c *Container) Delete() error {
	return c.ctn.Delete()
}
