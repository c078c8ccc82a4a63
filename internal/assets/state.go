package assets

import (
	"fmt"
	"sync"

	"github.com/angelmondragon/gaspos-terminal/pkg/enums"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
)

var transitions = map[enums.AssetCacheState][]enums.AssetCacheState{
	enums.AssetStateIdle:       {enums.AssetStateInstalling},
	enums.AssetStateInstalling: {enums.AssetStateInstalled, enums.AssetStateRedundant},
	enums.AssetStateInstalled:  {enums.AssetStateActivating},
	enums.AssetStateActivating: {enums.AssetStateActive, enums.AssetStateRedundant},
	enums.AssetStateRedundant:  {enums.AssetStateInstalling},
}

type lifecycle struct {
	mu    sync.Mutex
	state enums.AssetCacheState
}

func (l *lifecycle) current() enums.AssetCacheState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *lifecycle) move(to enums.AssetCacheState) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, allowed := range transitions[l.state] {
		if allowed == to {
			l.state = to
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("asset cache cannot move from %s to %s", l.state, to))
}
