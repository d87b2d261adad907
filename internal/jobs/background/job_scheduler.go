package background

import (
	"context"
	"log"
	"sync"
	"time"

	"eventops/internal/jobs"
	"eventops/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages background jobs for the inventory service
type JobScheduler struct {
	scheduler gocron.Scheduler
	projection services.OnHandProjection
	alertSvc  *jobs.OnHandAlertService
	exportSvc services.ExportService
	jobJobs   map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(projection services.OnHandProjection, alertSvc *jobs.OnHandAlertService, exportSvc services.ExportService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		projection: projection,
		alertSvc:   alertSvc,
		exportSvc:  exportSvc,
		jobJobs:    make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Projection reconcile - every 5 minutes. The synchronous fold on post
	// keeps the projection current; this job repairs any drift.
	reconcileJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.reconcileProjection, context.Background()),
		gocron.WithName("onhand-reconcile"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create reconcile job: %v", err)
	} else {
		js.jobJobs["onhand-reconcile"] = reconcileJob
	}

	// Low on-hand alerts - every 15 minutes
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.alertSvc.ScheduledLowOnHandCheck, context.Background()),
		gocron.WithName("onhand-alerts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create alerts job: %v", err)
	} else {
		js.jobJobs["onhand-alerts"] = alertsJob
	}

	// Daily snapshot export to object storage
	exportJob, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.exportSnapshot, context.Background()),
		gocron.WithName("onhand-snapshot-export"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create export job: %v", err)
	} else {
		js.jobJobs["onhand-snapshot-export"] = exportJob
	}

	log.Printf("Registered %d background jobs", len(js.jobJobs))
}

// reconcileProjection rebuilds the on-hand projection from ledger sums
func (js *JobScheduler) reconcileProjection(ctx context.Context) error {
	log.Printf("Starting on-hand projection reconcile")

	if err := js.projection.Refresh(ctx); err != nil {
		log.Printf("Projection reconcile failed: %v", err)
		return err
	}

	log.Printf("Completed on-hand projection reconcile")
	return nil
}

// exportSnapshot writes the current projection to object storage
func (js *JobScheduler) exportSnapshot(ctx context.Context) error {
	objectName, err := js.exportSvc.ExportOnHandSnapshot(ctx)
	if err != nil {
		log.Printf("Snapshot export failed: %v", err)
		return err
	}

	log.Printf("Exported on-hand snapshot to %s", objectName)
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)

	if err != nil {
		return err
	}

	js.jobJobs[name] = job
	log.Printf("Added custom job: %s", name)
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobJobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobJobs, name)
		return err
	}

	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobJobs)
	jobs := make([]string, 0, len(js.jobJobs))

	for name := range js.jobJobs {
		jobs = append(jobs, name)
	}

	status["jobs"] = jobs

	return status
}
