package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/multiview/engine/core"
)

/**
 * @brief Describes a job to be run by the job system.
 */
type JobTask struct {
	/** @brief A name used in logs. */
	Name string
	/** @brief The work itself. Runs on a worker goroutine. */
	OnStart func() error
	/** @brief Called after OnStart succeeded. */
	OnComplete func()
	/** @brief Called with the error returned by OnStart. */
	OnFailure func(err error)
	/** @brief Always called last, whatever the outcome. */
	OnCompletionCallback func()
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemStopped = errors.New("job system has been shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()

	core.LogDebug("Job system started with %d workers.", numWorkers)
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	if job.OnCompletionCallback != nil {
		defer job.OnCompletionCallback()
	}
	if job.OnStart == nil {
		return
	}
	if err := job.OnStart(); err != nil {
		core.LogError("job '%s' failed: %s", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

/**
 * @brief Shuts the job system down. Queued jobs still run; Shutdown waits for them.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.stopped {
		js.mu.Unlock()
		return nil
	}
	js.stopped = true
	close(js.jobQueue)
	js.mu.Unlock()

	js.wg.Wait()
	return nil
}

// AddWorkNonBlocking queues the job from a new goroutine and returns immediately.
func (js *JobSystem) AddWorkNonBlocking(jt JobTask) {
	go func() {
		if err := js.Submit(jt); err != nil {
			core.LogWarn("job '%s' dropped: %s", jt.Name, err)
		}
	}()
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the
 * queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.stopped {
		return ErrJobSystemStopped
	}
	js.jobQueue <- jt
	return nil
}
