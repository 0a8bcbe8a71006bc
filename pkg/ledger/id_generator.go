package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/klokku/pocketbudget/internal/utils"
)

type IDGenerator interface {
	NewID() string
}

// TimeUUIDGenerator produces ids of the form <unix millis>-<random uuid>.
type TimeUUIDGenerator struct {
	clock utils.Clock
}

func NewTimeUUIDGenerator(clock utils.Clock) *TimeUUIDGenerator {
	return &TimeUUIDGenerator{clock: clock}
}

func (g *TimeUUIDGenerator) NewID() string {
	return fmt.Sprintf("%d-%s", g.clock.Now().UnixMilli(), uuid.NewString())
}
