package systems

import (
	"fmt"
	"sync"

	"github.com/kestrel3d/render-core/engine/core"
)

/** @brief Describes a type of job */
type JobType int

const (
	/**
	 * @brief A general job that does not have any specific thread requirements.
	 * This means it matters little which job thread this job runs on.
	 */
	JOB_TYPE_GENERAL JobType = 0x02
	/**
	 * @brief A resource loading job. Resources should always load on the same thread
	 * to avoid potential disk thrashing.
	 */
	JOB_TYPE_RESOURCE_LOAD JobType = 0x04
	/**
	 * @brief A job that uses GPU resources. The job system does not pin it to a thread;
	 * it runs on whichever worker takes it from the queue.
	 */
	JOB_TYPE_GPU_RESOURCE JobType = 0x08
)

/**
 * @brief Labels a job's urgency. The job system records it on the task but keeps a
 * single queue: workers take jobs in submission order whatever their priority.
 */
type JobPriority int

const (
	/** @brief The lowest-priority job, used for things that can wait to be done if need be, such as log flushing. */
	JOB_PRIORITY_LOW JobPriority = iota
	/** @brief A normal-priority job. Should be used for medium-priority tasks such as loading assets. */
	JOB_PRIORITY_NORMAL
	/** @brief The highest-priority job. Should be used sparingly, and only for time-critical operations.*/
	JOB_PRIORITY_HIGH
)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief The type of job. Recorded only; any worker runs a job of any type. */
	JobType JobType
	/** @brief InputParams is passed to OnStart. Priority is recorded only; it does not change the order jobs run in. */
	InputParams          interface{}
	Priority             JobPriority
	OnStart              func(params interface{}, output chan<- interface{}) error // Called when job starts
	OnComplete           func(paramsChan <-chan interface{})                       // Called when job completes successfully
	OnFailure            func(paramsChan <-chan interface{})                       // Called when job fails
	OnCompletionCallback func()                                                    // Optional callback after job completion
}

// The max number of job results that can be stored at once.
const MAX_JOB_RESULTS int = 512

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	jq := make(chan JobTask, channelSize)
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   jq,
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				paramsChan := make(chan interface{}, 1)
				// Run the job and handle potential errors
				err := job.OnStart(job.InputParams, paramsChan)
				if err != nil {
					core.LogError(err.Error())
					if job.OnFailure != nil {
						// TODO: refactor to take actual values
						job.OnFailure(paramsChan)
					}
				} else {
					if job.OnComplete != nil {
						// TODO: refactor to take actual values
						job.OnComplete(paramsChan)
					}
				}

				// Call the completion callback if set
				if job.OnCompletionCallback != nil {
					job.OnCompletionCallback()
				}
			}
		}()
	}
}

/**
 * @brief Shuts the job system down.
 */
func (js *JobSystem) Shutdown() error {
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle.
 */
func (js *JobSystem) Update() {}

// AddWorkNonBlocking submits jt from a new goroutine and returns immediately
func (js *JobSystem) AddWorkNonBlocking(jt JobTask) {
	go js.Submit(jt)
}

/**
 * @brief Submits the provided job to be queued for execution.
 * @param info The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) {
	js.jobQueue <- jt
}
