package graphql

import (
	"context"
	"sync"

	"github.com/slothpixel/sloth/internal/model"
)

// boosterScope fetches the booster snapshot at most once per boosters selection.
type boosterScope struct {
	fetch func(ctx context.Context) (*model.BoosterSnapshot, error)

	once     sync.Once
	snapshot *model.BoosterSnapshot
	err      error
}

func (s *boosterScope) get(ctx context.Context) (*model.BoosterSnapshot, error) {
	s.once.Do(func() {
		s.snapshot, s.err = s.fetch(ctx)
	})
	return s.snapshot, s.err
}

func (r *Resolver) boosterFields() fieldTable {
	t := fieldTable{"all": allBoosters}
	for _, game := range r.games {
		t[game] = gameBoosters(game)
	}
	return t
}

func allBoosters(ctx context.Context, parent interface{}, _ map[string]interface{}) (interface{}, error) {
	snapshot, err := parent.(*boosterScope).get(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]model.GameBoosters, len(snapshot.Boosters))
	copy(ret, snapshot.Boosters)
	return ret, nil
}

// gameBoosters resolves to null for games the snapshot does not mention.
func gameBoosters(game string) FieldFunc {
	return func(ctx context.Context, parent interface{}, _ map[string]interface{}) (interface{}, error) {
		snapshot, err := parent.(*boosterScope).get(ctx)
		if err != nil {
			return nil, err
		}
		boosters, ok := snapshot.ForGame(game)
		if !ok {
			return nil, nil
		}
		if boosters == nil {
			boosters = []model.Booster{}
		}
		return boosters, nil
	}
}
