package systems

import (
	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
)

type SystemManager struct {
	GeometrySystem *GeometrySystem
	JobSystem      *JobSystem
}

func NewSystemManager(cfg *config.Config) (*SystemManager, error) {
	workers := cfg.Assets.Workers
	if workers <= 0 {
		workers = 1
	}
	js, err := NewJobSystem(workers, 16)
	if err != nil {
		return nil, err
	}

	colour := cfg.Colours.Default
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		DefaultColour: math.NewVec4(colour[0], colour[1], colour[2], colour[3]),
	})
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}

	core.LogInfo("Systems initialized.")
	return &SystemManager{
		GeometrySystem: gs,
		JobSystem:      js,
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.GeometrySystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
