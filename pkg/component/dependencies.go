package component

import (
	"github.com/veesix-networks/vlanhal/pkg/config"
	"github.com/veesix-networks/vlanhal/pkg/confdb"
	"github.com/veesix-networks/vlanhal/pkg/events"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/southbound"
)

type Dependencies struct {
	EventBus  events.Bus
	HAL       *hal.HAL
	Store     confdb.Store
	Dataplane southbound.Dataplane
	Config    *config.Config
}
